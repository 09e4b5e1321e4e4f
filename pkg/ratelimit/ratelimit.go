// Copyright © 2021 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package ratelimit attaches rate limiters to contexts.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

type ctxKeyType struct{}

var ctxKey ctxKeyType

// New returns a new context with a rate limiter that allows limit events per
// second, with the given burst size.
func New(parent context.Context, limit rate.Limit, burst int) context.Context {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)
	return context.WithValue(parent, ctxKey, limiter)
}

// Wait blocks until the rate limit configuration permits an event to happen.
// It returns an error if the Context is canceled, or the expected wait time
// exceeds the Context's Deadline.
func Wait(ctx context.Context) (err error) {
	if limiter, ok := ctx.Value(ctxKey).(*rate.Limiter); ok {
		return limiter.Wait(ctx)
	}
	return nil
}

// Allow reports whether the rate limit configuration permits an event to
// happen now, without blocking.
func Allow(ctx context.Context) bool {
	if limiter, ok := ctx.Value(ctxKey).(*rate.Limiter); ok {
		return limiter.Allow()
	}
	return true
}

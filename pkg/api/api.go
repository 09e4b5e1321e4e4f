// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package api exposes a router over HTTP and websockets.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/TheThingsIndustries/topictree/pkg/log"
	"github.com/TheThingsIndustries/topictree/pkg/message"
	"github.com/TheThingsIndustries/topictree/pkg/ratelimit"
	"github.com/TheThingsIndustries/topictree/pkg/router"
	"github.com/TheThingsIndustries/topictree/pkg/topic"
)

// PublishBufferSize sets the size of subscriber channel buffers
var PublishBufferSize = 512

// Option for the handler
type Option func(h *Handler)

// WithIPLimits returns an option that sets limits on connections per IP
func WithIPLimits(max int) Option {
	return func(h *Handler) { h.ipLimits = newLimits(max) }
}

// Handler serves the publish and subscribe endpoints of a router
type Handler struct {
	ctx      context.Context
	router   *router.Router
	ipLimits *limits
}

// New returns an API handler for the router
func New(ctx context.Context, r *router.Router, option ...Option) *Handler {
	h := &Handler{ctx: ctx, router: r}
	for _, opt := range option {
		opt(h)
	}
	return h
}

// Publish returns an http.Handler that publishes JSON messages to the router.
func (h *Handler) Publish() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := ratelimit.Wait(h.ctx); err != nil {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		var body struct {
			Topic   string `json:"topic"`
			Payload []byte `json:"payload"`
			Retain  bool   `json:"retain"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := topic.ValidateTopic(body.Topic); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pub := message.New(body.Topic, body.Payload)
		pub.Retain = body.Retain
		h.router.Publish(pub)
		publishCounter.Inc()
		log.FromContext(h.ctx).WithFields(log.F{"topic": pub.Topic, "size": len(pub.Payload), "remote_addr": req.RemoteAddr}).Debug("Handle publish request")
		w.WriteHeader(http.StatusAccepted)
	})
}

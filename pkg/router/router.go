// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package router implements the publish/subscribe dispatch core.
//
// The router keeps a single trie that maps every active filter to the set of
// subscribers behind it, so one walk over the published topic finds all
// subscribers that should receive the message.
package router

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/TheThingsIndustries/topictree/pkg/log"
	"github.com/TheThingsIndustries/topictree/pkg/message"
	"github.com/TheThingsIndustries/topictree/pkg/retained"
	"github.com/TheThingsIndustries/topictree/pkg/subscription"
	"github.com/TheThingsIndustries/topictree/pkg/topic"
	"github.com/TheThingsIndustries/topictree/pkg/trie"
)

// Subscriber of routed messages
type Subscriber interface {
	// ID identifies the subscriber; subscribing again with the same ID
	// replaces the previous subscription for that filter.
	ID() string

	// Deliver the message to the subscriber. Implementations must not block.
	Deliver(pub *message.Publish)
}

type routeEntry struct {
	sub Subscriber
	qos byte
}

// route holds the subscribers of one filter, keyed by subscriber ID
type route struct {
	subs map[string]routeEntry
}

// Router maintains the filter index and fans published messages out to
// matching subscribers.
type Router struct {
	ctx      context.Context
	retained retained.Store

	mu           sync.RWMutex
	filters      *trie.Trie[*route]
	bySubscriber map[string]*subscription.List
}

// New returns a router
func New(ctx context.Context) *Router {
	return &Router{
		ctx:          ctx,
		retained:     retained.SimpleStore(ctx),
		filters:      trie.New[*route](),
		bySubscriber: make(map[string]*subscription.List),
	}
}

// Retained returns the retained message store of the router
func (r *Router) Retained() retained.Store {
	return r.retained
}

// Subscribe adds a subscription for the filter and delivers any retained
// messages that match it.
func (r *Router) Subscribe(sub Subscriber, filter string, qos byte) {
	r.mu.Lock()
	rt, ok := r.filters.Get(filter)
	if !ok {
		rt = &route{subs: make(map[string]routeEntry)}
		r.filters.Set(filter, rt)
		filtersGauge.Inc()
	}
	rt.subs[sub.ID()] = routeEntry{sub: sub, qos: qos}
	list := r.bySubscriber[sub.ID()]
	if list == nil {
		list = new(subscription.List)
		r.bySubscriber[sub.ID()] = list
	}
	list.Add(filter, qos)
	r.mu.Unlock()
	log.FromContext(r.ctx).WithFields(log.F{"filter": filter, "qos": qos, "subscriber": sub.ID()}).Debug("Subscribe")
	for _, pub := range r.retained.Get(filter) {
		sub.Deliver(pub)
	}
}

// Unsubscribe removes the subscription of the subscriber for the filter
func (r *Router) Unsubscribe(sub Subscriber, filter string) (removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if removed = r.unsubscribe(sub.ID(), filter); removed {
		log.FromContext(r.ctx).WithFields(log.F{"filter": filter, "subscriber": sub.ID()}).Debug("Unsubscribe")
	}
	return
}

func (r *Router) unsubscribe(id, filter string) bool {
	list := r.bySubscriber[id]
	if list == nil || !list.Remove(filter) {
		return false
	}
	if list.Count() == 0 {
		delete(r.bySubscriber, id)
	}
	if rt, ok := r.filters.Get(filter); ok {
		delete(rt.subs, id)
		if len(rt.subs) == 0 {
			r.filters.Delete(filter)
			filtersGauge.Dec()
		}
	}
	return true
}

// Disconnect removes all subscriptions of the subscriber
func (r *Router) Disconnect(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.bySubscriber[sub.ID()]
	if list == nil {
		return
	}
	for _, filter := range list.SubscriptionTopics() {
		r.unsubscribe(sub.ID(), filter)
	}
}

// Publish fans the message out to every subscriber with a matching filter.
// A subscriber with multiple matching filters receives the message once.
func (r *Router) Publish(pub *message.Publish) {
	r.retained.Retain(pub)
	if len(pub.TopicPath) == 0 {
		pub.TopicPath = topic.Split(pub.Topic)
	}
	targets := make(map[string]routeEntry)
	r.mu.RLock()
	r.filters.MatchPath(pub.TopicPath, func(rt *route) bool {
		for id, entry := range rt.subs {
			if existing, ok := targets[id]; !ok || entry.qos > existing.qos {
				targets[id] = entry
			}
		}
		return true
	})
	r.mu.RUnlock()
	if !pub.Received.IsZero() {
		publishLatency.Observe(time.Since(pub.Received).Seconds())
	}
	if len(targets) == 0 {
		return
	}
	log.FromContext(r.ctx).WithFields(log.F{"topic": pub.Topic, "size": len(pub.Payload), "subscribers": len(targets)}).Debug("Publish message")
	workers := runtime.NumCPU()
	if len(targets) < workers {
		workers = len(targets)
	}
	queue := make(chan func(), workers)
	for i := 0; i < workers; i++ {
		go func() {
			for deliver := range queue {
				deliver()
			}
		}()
	}
	for _, entry := range targets {
		entry := entry
		queue <- func() {
			entry.sub.Deliver(pub)
			deliveredCounter.Inc()
		}
	}
	close(queue)
}

// Filters returns the registered filters and the number of subscribers behind each
func (r *Router) Filters() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	filters := make(map[string]int, r.filters.Len())
	r.filters.Walk(func(filter string, rt *route) bool {
		filters[filter] = len(rt.subs)
		return true
	})
	return filters
}

// Count the registered filters
func (r *Router) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filters.Len()
}

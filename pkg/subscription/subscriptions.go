// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package subscription implements topic subscription lists.
package subscription

import (
	"sync"

	"github.com/TheThingsIndustries/topictree/pkg/topic"
	"github.com/TheThingsIndustries/topictree/pkg/trie"
)

type subscription struct {
	filter string
	qos    byte
}

// List of topic subscriptions, indexed by filter
type List struct {
	mu      sync.RWMutex
	filters *trie.Trie[subscription]
}

// Add a subscription to the list
func (s *List) Add(filter string, qos byte) (added bool) {
	if len(filter) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filters == nil {
		s.filters = trie.New[subscription]()
	}
	_, exists := s.filters.Get(filter)
	s.filters.Set(filter, subscription{filter: filter, qos: qos})
	if exists {
		return
	}
	subscriptionsGauge.Inc()
	return true
}

// Remove a subscription from the list
func (s *List) Remove(filter string) (removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filters == nil || s.filters.Delete(filter) != nil {
		return
	}
	subscriptionsGauge.Dec()
	return true
}

// Clear the subscription list
func (s *List) Clear() {
	s.mu.Lock()
	if s.filters != nil {
		subscriptionsGauge.Sub(float64(s.filters.Len()))
		s.filters = nil
	}
	s.mu.Unlock()
}

// Match the topic to the subscriptions and return the maximum QoS
func (s *List) Match(t ...string) (qos byte, found bool) {
	switch len(t) {
	case 0:
		return
	case 1:
		t = topic.Split(t[0])
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.filters == nil {
		return
	}
	s.filters.MatchPath(t, func(sub subscription) bool {
		found = true
		if sub.qos > qos {
			qos = sub.qos
		}
		return true
	})
	return
}

// Matches returns the filters that match the topic
func (s *List) Matches(t ...string) (matches []string) {
	switch len(t) {
	case 0:
		return
	case 1:
		t = topic.Split(t[0])
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.filters == nil {
		return
	}
	s.filters.MatchPath(t, func(sub subscription) bool {
		matches = append(matches, sub.filter)
		return true
	})
	return
}

// Count the subscriptions
func (s *List) Count() (count int) {
	s.mu.RLock()
	if s.filters != nil {
		count = s.filters.Len()
	}
	s.mu.RUnlock()
	return
}

// Subscriptions returns the subscriptions in the list
func (s *List) Subscriptions() map[string]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subscriptions := make(map[string]byte)
	if s.filters != nil {
		s.filters.Walk(func(filter string, sub subscription) bool {
			subscriptions[filter] = sub.qos
			return true
		})
	}
	return subscriptions
}

// SubscriptionTopics returns the filters in the list
func (s *List) SubscriptionTopics() (topics []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.filters == nil {
		return
	}
	s.filters.Walk(func(filter string, _ subscription) bool {
		topics = append(topics, filter)
		return true
	})
	return
}

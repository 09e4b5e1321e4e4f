// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package retained implements a store for retained messages.
package retained

import (
	"context"
	"sync"

	"github.com/TheThingsIndustries/topictree/pkg/log"
	"github.com/TheThingsIndustries/topictree/pkg/message"
	"github.com/TheThingsIndustries/topictree/pkg/topic"
)

// Store for retained messages
type Store interface {
	// Retain the message if the Retain flag is set
	Retain(*message.Publish)

	// Get all currently retained messages that match the filters
	Get(filter ...string) []*message.Publish

	// All retained messages
	All() []*message.Publish
}

// SimpleStore returns a simple store for retained messages
func SimpleStore(ctx context.Context) Store {
	return &retainedMessages{
		ctx:      ctx,
		messages: make(map[string]*message.Publish),
	}
}

type retainedMessages struct {
	mu       sync.RWMutex
	ctx      context.Context
	messages map[string]*message.Publish
}

func (r *retainedMessages) Retain(pub *message.Publish) {
	if !pub.Retain {
		return
	}
	pub.Retain = false // Unset retain flag on original message
	logger := log.FromContext(r.ctx).WithField("topic", pub.Topic)
	r.mu.Lock()
	_, exists := r.messages[pub.Topic]
	if len(pub.Payload) > 0 {
		retained := *pub
		retained.Retain = true // Set retain flag on message copy
		r.messages[pub.Topic] = &retained
		if !exists {
			retainedGauge.Inc()
		}
		logger.Debug("Retain message")
	} else if exists {
		delete(r.messages, pub.Topic)
		retainedGauge.Dec()
		logger.Debug("Clear retained message")
	}
	r.mu.Unlock()
}

func (r *retainedMessages) Get(filter ...string) (messages []*message.Publish) {
	filterPaths := make([][]string, len(filter))
	for i, filter := range filter {
		filterPaths[i] = topic.Split(filter)
	}
nextRetained:
	for _, pub := range r.All() {
		for _, filterPath := range filterPaths {
			if topic.MatchPath(pub.TopicPath, filterPath) {
				messages = append(messages, pub)
				continue nextRetained
			}
		}
	}
	return
}

func (r *retainedMessages) All() []*message.Publish {
	r.mu.RLock()
	defer r.mu.RUnlock()
	messages := make([]*message.Publish, 0, len(r.messages))
	for _, pub := range r.messages {
		messages = append(messages, pub)
	}
	return messages
}

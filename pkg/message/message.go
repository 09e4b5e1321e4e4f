// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package message defines the publish messages exchanged through the router.
package message

import (
	"time"

	"github.com/TheThingsIndustries/topictree/pkg/topic"
)

// Publish message
type Publish struct {
	Received  time.Time `json:"-"`
	Topic     string    `json:"topic"`
	TopicPath []string  `json:"-"`
	Payload   []byte    `json:"payload,omitempty"`
	Retain    bool      `json:"retain,omitempty"`
}

// New returns a Publish message for the topic, with the topic path pre-split
func New(topicName string, payload []byte) *Publish {
	return &Publish{
		Received:  time.Now(),
		Topic:     topicName,
		TopicPath: topic.Split(topicName),
		Payload:   payload,
	}
}

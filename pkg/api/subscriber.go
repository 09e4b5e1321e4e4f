// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

package api

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/TheThingsIndustries/topictree/pkg/log"
	"github.com/TheThingsIndustries/topictree/pkg/message"
)

var subscriberCounter uint64

type subscriber struct {
	ctx     context.Context
	id      string
	publish chan *message.Publish
}

func newSubscriber(ctx context.Context, remoteAddr string) *subscriber {
	return &subscriber{
		ctx:     ctx,
		id:      fmt.Sprintf("%s#%d", remoteAddr, atomic.AddUint64(&subscriberCounter, 1)),
		publish: make(chan *message.Publish, PublishBufferSize),
	}
}

func (s *subscriber) ID() string { return s.id }

func (s *subscriber) Deliver(pub *message.Publish) {
	select {
	case s.publish <- pub:
	default:
		droppedCounter.Inc()
		log.FromContext(s.ctx).WithFields(log.F{"topic": pub.Topic, "subscriber": s.id}).Warn("Drop message for slow subscriber")
	}
}

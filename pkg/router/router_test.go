// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

package router

import (
	"context"
	"testing"
	"time"

	"github.com/TheThingsIndustries/topictree/pkg/message"
	"github.com/smartystreets/assertions"
	"github.com/smartystreets/assertions/should"
)

type testSubscriber struct {
	id       string
	messages chan *message.Publish
}

func newTestSubscriber(id string) *testSubscriber {
	return &testSubscriber{id: id, messages: make(chan *message.Publish, 16)}
}

func (s *testSubscriber) ID() string { return s.id }

func (s *testSubscriber) Deliver(pub *message.Publish) {
	s.messages <- pub
}

func (s *testSubscriber) next(t *testing.T) *message.Publish {
	t.Helper()
	select {
	case pub := <-s.messages:
		return pub
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for delivery")
		return nil
	}
}

func (s *testSubscriber) none(t *testing.T) {
	t.Helper()
	select {
	case pub := <-s.messages:
		t.Fatalf("Unexpected delivery on topic %s", pub.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRouter(t *testing.T) {
	a := assertions.New(t)
	r := New(context.Background())

	sub1 := newTestSubscriber("sub1")
	sub2 := newTestSubscriber("sub2")

	r.Subscribe(sub1, "home/+/temperature", 0)
	r.Subscribe(sub2, "home/kitchen/#", 0)
	a.So(r.Count(), should.Equal, 2)

	r.Publish(message.New("home/kitchen/temperature", []byte("21.5")))
	a.So(sub1.next(t).Topic, should.Equal, "home/kitchen/temperature")
	a.So(sub2.next(t).Topic, should.Equal, "home/kitchen/temperature")

	r.Publish(message.New("home/kitchen/humidity/current", []byte("64")))
	a.So(sub2.next(t).Topic, should.Equal, "home/kitchen/humidity/current")
	sub1.none(t)

	r.Publish(message.New("garage/door", []byte("open")))
	sub1.none(t)
	sub2.none(t)
}

func TestRouterDeduplicates(t *testing.T) {
	a := assertions.New(t)
	r := New(context.Background())

	sub := newTestSubscriber("sub")
	r.Subscribe(sub, "a/b", 0)
	r.Subscribe(sub, "a/+", 1)
	r.Subscribe(sub, "a/#", 0)
	a.So(r.Count(), should.Equal, 3)

	r.Publish(message.New("a/b", nil))
	sub.next(t)
	sub.none(t)
}

func TestRouterUnsubscribe(t *testing.T) {
	a := assertions.New(t)
	r := New(context.Background())

	sub1 := newTestSubscriber("sub1")
	sub2 := newTestSubscriber("sub2")
	r.Subscribe(sub1, "a/+", 0)
	r.Subscribe(sub2, "a/+", 0)
	a.So(r.Count(), should.Equal, 1)

	// the filter stays registered while it has other subscribers
	a.So(r.Unsubscribe(sub1, "a/+"), should.BeTrue)
	a.So(r.Count(), should.Equal, 1)

	r.Publish(message.New("a/b", nil))
	sub2.next(t)
	sub1.none(t)

	a.So(r.Unsubscribe(sub2, "a/+"), should.BeTrue)
	a.So(r.Count(), should.Equal, 0)
	a.So(r.Unsubscribe(sub2, "a/+"), should.BeFalse)
	a.So(r.Unsubscribe(sub2, "never/subscribed"), should.BeFalse)
}

func TestRouterDisconnect(t *testing.T) {
	a := assertions.New(t)
	r := New(context.Background())

	sub := newTestSubscriber("sub")
	r.Subscribe(sub, "a/+", 0)
	r.Subscribe(sub, "b/#", 0)
	a.So(r.Filters(), should.Resemble, map[string]int{"a/+": 1, "b/#": 1})

	r.Disconnect(sub)
	a.So(r.Count(), should.Equal, 0)

	r.Publish(message.New("a/b", nil))
	sub.none(t)
}

func TestRouterRetained(t *testing.T) {
	a := assertions.New(t)
	r := New(context.Background())

	pub := message.New("sensors/livingroom", []byte("20.1"))
	pub.Retain = true
	r.Publish(pub)

	// a late subscriber receives the retained message on subscribe
	sub := newTestSubscriber("late")
	r.Subscribe(sub, "sensors/#", 0)
	received := sub.next(t)
	a.So(received.Topic, should.Equal, "sensors/livingroom")
	a.So(received.Retain, should.BeTrue)
}

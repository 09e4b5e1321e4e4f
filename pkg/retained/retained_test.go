// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

package retained

import (
	"context"
	"testing"

	"github.com/TheThingsIndustries/topictree/pkg/message"
	"github.com/smartystreets/assertions"
	"github.com/smartystreets/assertions/should"
)

func retain(s Store, topicName string, payload []byte) {
	pub := message.New(topicName, payload)
	pub.Retain = true
	s.Retain(pub)
}

func TestRetained(t *testing.T) {
	a := assertions.New(t)
	s := SimpleStore(context.Background())

	a.So(s.Get("#"), should.HaveLength, 0)

	retain(s, "foo", []byte("foo"))
	retain(s, "bar", []byte("bar"))

	a.So(s.Get("#"), should.HaveLength, 2)
	a.So(s.Get("foo"), should.HaveLength, 1)
	a.So(s.Get("+"), should.HaveLength, 2)
	a.So(s.Get("foo/bar"), should.HaveLength, 0)

	// replacing keeps a single message per topic
	retain(s, "foo", []byte("foo2"))
	a.So(s.Get("foo"), should.HaveLength, 1)
	a.So(string(s.Get("foo")[0].Payload), should.Equal, "foo2")

	// the stored copy keeps the retain flag
	a.So(s.Get("foo")[0].Retain, should.BeTrue)

	// an empty payload clears the retained message
	retain(s, "bar", nil)
	a.So(s.Get("#"), should.HaveLength, 1)

	// messages without the retain flag are ignored
	s.Retain(message.New("baz", []byte("baz")))
	a.So(s.All(), should.HaveLength, 1)
}

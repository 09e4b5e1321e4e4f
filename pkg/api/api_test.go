// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/TheThingsIndustries/topictree/pkg/message"
	"github.com/TheThingsIndustries/topictree/pkg/router"
	"github.com/smartystreets/assertions"
	"github.com/smartystreets/assertions/should"
)

func TestPublishEndpoint(t *testing.T) {
	a := assertions.New(t)
	r := router.New(context.Background())
	h := New(context.Background(), r)

	srv := httptest.NewServer(h.Publish())
	defer srv.Close()

	sub := newSubscriber(context.Background(), "test")
	r.Subscribe(sub, "a/#", 0)

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"topic":"a/b","payload":"aGVsbG8="}`))
	a.So(err, should.BeNil)
	a.So(resp.StatusCode, should.Equal, http.StatusAccepted)

	select {
	case pub := <-sub.publish:
		a.So(pub.Topic, should.Equal, "a/b")
		a.So(string(pub.Payload), should.Equal, "hello")
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for delivery")
	}

	resp, err = http.Post(srv.URL, "application/json", strings.NewReader(`{"topic":"a/+"}`))
	a.So(err, should.BeNil)
	a.So(resp.StatusCode, should.Equal, http.StatusBadRequest)

	resp, err = http.Post(srv.URL, "application/json", strings.NewReader(`not json`))
	a.So(err, should.BeNil)
	a.So(resp.StatusCode, should.Equal, http.StatusBadRequest)

	resp, err = http.Get(srv.URL)
	a.So(err, should.BeNil)
	a.So(resp.StatusCode, should.Equal, http.StatusMethodNotAllowed)
}

func TestSubscribeEndpoint(t *testing.T) {
	a := assertions.New(t)
	r := router.New(context.Background())
	h := New(context.Background(), r)

	srv := httptest.NewServer(h.Subscribe())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?filter=a/%2B"
	ws, err := websocket.Dial(url, "", "http://localhost/")
	a.So(err, should.BeNil)
	defer ws.Close()

	for i := 0; i < 100 && r.Count() == 0; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	a.So(r.Count(), should.Equal, 1)

	r.Publish(message.New("a/b", []byte("hi")))

	ws.SetDeadline(time.Now().Add(time.Second))
	var pub message.Publish
	err = websocket.JSON.Receive(ws, &pub)
	a.So(err, should.BeNil)
	a.So(pub.Topic, should.Equal, "a/b")
	a.So(string(pub.Payload), should.Equal, "hi")
}

func TestSubscriberDropsWhenSlow(t *testing.T) {
	a := assertions.New(t)
	sub := newSubscriber(context.Background(), "slow")
	for i := 0; i < PublishBufferSize+10; i++ {
		sub.Deliver(message.New("a", nil))
	}
	a.So(len(sub.publish), should.Equal, PublishBufferSize)
}

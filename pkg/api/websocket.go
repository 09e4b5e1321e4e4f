// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

package api

import (
	"io"
	"net"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/TheThingsIndustries/topictree/pkg/log"
	"github.com/TheThingsIndustries/topictree/pkg/topic"
)

// Subscribe returns an http.Handler that streams messages matching the
// "filter" query parameters over a websocket, one JSON object per message.
func (h *Handler) Subscribe() http.Handler {
	return websocket.Server{
		Handshake: func(config *websocket.Config, req *http.Request) (err error) {
			config.Origin, err = websocket.Origin(config, req)
			return err
		},
		Handler: func(ws *websocket.Conn) {
			h.handle(ws)
		},
	}
}

func (h *Handler) handle(ws *websocket.Conn) {
	req := ws.Request()
	remoteAddr := req.RemoteAddr

	logger := log.FromContext(h.ctx).WithField("remote_addr", remoteAddr)

	logger.Debug("Open connection")
	conns.Inc()
	defer func() {
		logger.Debug("Close connection")
		conns.Dec()
		ws.Close()
	}()

	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		ip = remoteAddr
	}
	if err := h.ipLimits.connect(ip); err != nil {
		logger.WithError(err).Warn("Refuse connection")
		return
	}
	defer h.ipLimits.disconnect(ip)

	filters := req.URL.Query()["filter"]
	if len(filters) == 0 {
		logger.Warn("Refuse connection without filters")
		return
	}
	for _, filter := range filters {
		if err := topic.ValidateFilter(filter); err != nil {
			logger.WithError(err).WithField("filter", filter).Warn("Refuse invalid filter")
			return
		}
	}

	sub := newSubscriber(h.ctx, remoteAddr)
	defer h.router.Disconnect(sub)
	for _, filter := range filters {
		h.router.Subscribe(sub, filter, 0)
	}

	readErr := make(chan error, 1)
	go func() {
		for {
			// subscribers only read; receive to detect the close
			var buf []byte
			if err := websocket.Message.Receive(ws, &buf); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case err := <-readErr:
			if err != io.EOF {
				logger.WithError(err).Debug("Read error")
			}
			return
		case pub := <-sub.publish:
			if err := websocket.JSON.Send(ws, pub); err != nil {
				logger.WithError(err).Warn("Could not send message")
				return
			}
		}
	}
}

// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// The Topictree Server is a simple topic-routing publish/subscribe server.
//
//	Usage: topictree-server [options]
//
//	Options:
//	-d, --debug                      Print debug logs
//	    --limits.ip int              Maximum number of subscriber connections per IP address (0 is unlimited)
//	    --listen.http string         TCP address for the HTTP+websocket server to listen on (default ":1880")
//	    --listen.https string        TLS address for the HTTP+websocket server to listen on (default ":1443")
//	    --listen.status string       Address for status server to listen on (default ":9383")
//	    --publish.burst int          Publish rate limit burst size (default 1)
//	    --publish.pattern string     URL pattern of the publish endpoint (default "/publish")
//	    --publish.rate float         Publish rate limit in messages per second (0 is unlimited)
//	    --subscribe.pattern string   URL pattern of the subscribe endpoint (default "/subscribe")
//	    --tls.cert string            Location of the TLS certificate
//	    --tls.key string             Location of the TLS key
package main

import (
	_ "net/http/pprof" // Add pprof handlers to the default http mux

	"github.com/TheThingsIndustries/topictree"
	"github.com/TheThingsIndustries/topictree/pkg/router"
)

func main() {
	topictree.Configure("topictree-server")
	r := router.New(topictree.Context())
	topictree.RunServer(r)
}

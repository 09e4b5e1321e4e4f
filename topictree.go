// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package topictree implements a topic-routing publish/subscribe server.
// See the cmd package for the main executables.
package topictree

import (
	"context"
	"crypto/sha1"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/TheThingsIndustries/topictree/pkg/apex"
	"github.com/TheThingsIndustries/topictree/pkg/api"
	"github.com/TheThingsIndustries/topictree/pkg/inspect"
	"github.com/TheThingsIndustries/topictree/pkg/log"
	"github.com/TheThingsIndustries/topictree/pkg/ratelimit"
	"github.com/TheThingsIndustries/topictree/pkg/router"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

var (
	ctx        = context.Background()
	logger     = apex.Log
	configured = false
)

// Context returns the global context
func Context() context.Context {
	if !configured {
		panic("topictree.Configure() was not called")
	}
	return ctx
}

// Configure the binary
func Configure(binaryName string) {
	pflag.BoolP("debug", "d", false, "Print debug logs")
	pflag.String("listen.http", ":1880", "TCP address for the HTTP+websocket server to listen on")
	pflag.String("listen.https", ":1443", "TLS address for the HTTP+websocket server to listen on")
	pflag.String("listen.status", ":9383", "Address for status server to listen on")
	pflag.String("publish.pattern", "/publish", "URL pattern of the publish endpoint")
	pflag.String("subscribe.pattern", "/subscribe", "URL pattern of the subscribe endpoint")
	pflag.Float64("publish.rate", 0, "Publish rate limit in messages per second (0 is unlimited)")
	pflag.Int("publish.burst", 1, "Publish rate limit burst size")
	pflag.Int("limits.ip", 0, "Maximum number of subscriber connections per IP address (0 is unlimited)")
	pflag.String("tls.cert", "", "Location of the TLS certificate")
	pflag.String("tls.key", "", "Location of the TLS key")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", binaryName)
		fmt.Fprintln(os.Stderr, "Options:")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if viper.GetBool("debug") {
		apex.SetLevelFromString("debug")
	}
	ctx = log.NewContext(ctx, logger)

	if limit := viper.GetFloat64("publish.rate"); limit > 0 {
		ctx = ratelimit.New(ctx, rate.Limit(limit), viper.GetInt("publish.burst"))
	}

	configured = true
}

var certificateExpiry = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "tls",
	Name:      "certificate_expiry_seconds",
	Help:      "Expiry date of the TLS certificate.",
}, []string{"fingerprint"})

func init() {
	prometheus.MustRegister(certificateExpiry)
}

func TLSConfig(certFile, keyFile string) (tlsConfig *tls.Config) {
	var (
		cert   *tls.Certificate
		certMu sync.RWMutex
	)

	readCert := func() error {
		newCert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return fmt.Errorf("Could not load X509 keypair: %s", err)
		}
		newCert.Leaf, err = x509.ParseCertificate(newCert.Certificate[0])
		if err != nil {
			logger.WithError(err).Warn("Could not parse leaf certificate")
		}

		sum := sha1.Sum(newCert.Leaf.Raw)

		certMu.Lock()
		cert = &newCert
		certificateExpiry.Reset()
		certificateExpiry.WithLabelValues(hex.EncodeToString(sum[:])).Set(float64(newCert.Leaf.NotAfter.Unix()))
		certMu.Unlock()

		return nil
	}

	if err := readCert(); err != nil {
		logger.WithError(err).Fatal("Could not set up TLS")
	}

	if watcher, err := fsnotify.NewWatcher(); err == nil {
		if watcher.Add(certFile) == nil && watcher.Add(keyFile) == nil {
			update := make(chan bool, 1)
			go func() {
				for {
					select {
					case event := <-watcher.Events:
						if event.Op&fsnotify.Write == fsnotify.Write {
							select {
							case update <- true:
								logger.Info("Detected certificate change. Scheduling update...")
								time.AfterFunc(5*time.Second, func() {
									logger.Info("Updating TLS certificate...")
									if err := readCert(); err != nil {
										logger.WithError(err).Error("Could not update TLS certificate")
									} else {
										logger.Info("Updated TLS certificate")
									}
									<-update
								})
							default:
								// Debounce
							}
						}
					case err := <-watcher.Errors:
						logger.WithError(err).Warn("Error watching file")
					}
				}
			}()
		}
	}

	return &tls.Config{
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			certMu.RLock()
			currentCert := cert
			certMu.RUnlock()
			return currentCert, nil
		},
	}
}

// RunServer runs the publish/subscribe server for the router
func RunServer(r *router.Router) {
	var opts []api.Option
	if max := viper.GetInt("limits.ip"); max > 0 {
		opts = append(opts, api.WithIPLimits(max))
	}
	h := api.New(ctx, r, opts...)

	var tlsConfig *tls.Config
	certFile, keyFile := viper.GetString("tls.cert"), viper.GetString("tls.key")
	if certFile != "" && keyFile != "" {
		tlsConfig = TLSConfig(certFile, keyFile)
	}

	if listen := viper.GetString("listen.status"); listen != "" {
		http.Handle("/metrics", promhttp.Handler())
		http.Handle("/debug/filters", inspect.Filters(r))
		http.Handle("/debug/retained", inspect.Retained(r.Retained()))
		logger.WithField("address", listen).Info("Starting status+debug+metrics server")
		go func() {
			err := http.ListenAndServe(listen, nil)
			if err != nil {
				logger.WithError(err).Fatal("Could not start status+debug+metrics server")
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle(viper.GetString("publish.pattern"), h.Publish())
	mux.Handle(viper.GetString("subscribe.pattern"), h.Subscribe())

	if listen := viper.GetString("listen.http"); listen != "" {
		logger.WithField("address", listen).Info("Starting HTTP+ws server")
		lis, err := net.Listen("tcp", listen)
		if err != nil {
			logger.WithError(err).Fatal("Could not start HTTP+ws server")
		}
		defer lis.Close()

		go func() {
			err := http.Serve(lis, mux)
			if err != nil {
				logger.WithError(err).Error("Could not serve HTTP+ws")
			}
		}()
	}

	if listen := viper.GetString("listen.https"); listen != "" {
		if tlsConfig != nil {
			logger.WithField("address", listen).Info("Starting HTTPS+wss server")
			tlsLis, err := tls.Listen("tcp", listen, tlsConfig)
			if err != nil {
				logger.WithError(err).Fatal("Could not start HTTPS+wss server")
			}
			defer tlsLis.Close()

			go func() {
				err := http.Serve(tlsLis, mux)
				if err != nil {
					logger.WithError(err).Error("Could not serve HTTPS+wss")
				}
			}()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	signal := (<-sigChan).String()
	logger.WithField("signal", signal).Info("Signal received")
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/tokenfarm/api/doc"
	"github.com/vechain/tokenfarm/api/farm"
	"github.com/vechain/tokenfarm/api/feeds"
	"github.com/vechain/tokenfarm/api/logs"
	"github.com/vechain/tokenfarm/api/node"
	"github.com/vechain/tokenfarm/api/subscriptions"
	"github.com/vechain/tokenfarm/api/tokens"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/log"
)

var logger = log.WithContext("pkg", "api")

// VersionHeader carries the version of the api in every response.
const VersionHeader = "x-farm-api-ver"

type Options struct {
	AllowedOrigins  string
	BacktraceLimit  uint64
	LogsLimit       uint64
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router
func New(l *ledger.Ledger, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	// to serve the open api spec
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/farm.yaml", http.StatusTemporaryRedirect)
		})

	tokens.New(l).
		Mount(router, "/tokens")
	farm.New(l).
		Mount(router, "/farm")
	feeds.New(l).
		Mount(router, "/feeds")
	logs.New(l.LogDB(), opts.LogsLimit).
		Mount(router, "/logs")
	node.New(l).
		Mount(router, "/node")
	subs := subscriptions.New(l, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	router.Use(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set(VersionHeader, doc.Version())
			h.ServeHTTP(w, req)
		})
	})

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{VersionHeader}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}

// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/lockstake/lockstake/api/records"
	"github.com/lockstake/lockstake/api/staking"
	"github.com/lockstake/lockstake/api/subscriptions"
	"github.com/lockstake/lockstake/ledger"
	"github.com/lockstake/lockstake/log"
	"github.com/lockstake/lockstake/recorddb"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	RecordsLimit    uint64
	EnableReqLogger bool
	EnableMetrics   bool
}

// New returns the api handler and a closer for hijacked websocket
// connections. The subscriptions endpoint is registered as a ledger
// sink before the handler is returned.
func New(l *ledger.Ledger, recordDB *recorddb.RecordDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(l).
		Mount(router, "/staking")
	records.New(recordDB, opts.RecordsLimit).
		Mount(router, "/records")
	subs := subscriptions.New(origins)
	subs.Mount(router, "/subscriptions")
	l.AddSink(subs)

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close
}

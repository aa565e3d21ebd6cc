// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/meterio/sealed-auction/api/accounts"
	"github.com/meterio/sealed-auction/api/auction"
	"github.com/meterio/sealed-auction/api/events"
	"github.com/meterio/sealed-auction/api/subscriptions"
	"github.com/meterio/sealed-auction/api/transactions"
	"github.com/meterio/sealed-auction/api/transfers"
	"github.com/meterio/sealed-auction/api/utils"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/logdb"
	"github.com/meterio/sealed-auction/packer"
	"github.com/meterio/sealed-auction/script"
	"github.com/meterio/sealed-auction/state"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ParseOrigins splits a comma separated origin list.
func ParseOrigins(allowedOrigins string) []string {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	return origins
}

// New return api router
func New(
	chain *chain.Chain,
	stateCreator *state.Creator,
	se *script.ScriptEngine,
	packer *packer.Packer,
	logDB *logdb.LogDB,
	allowedOrigins string,
) (http.HandlerFunc, func()) {
	origins := ParseOrigins(allowedOrigins)

	router := mux.NewRouter()

	auction.New(stateCreator, se.BlindAuction()).
		Mount(router, "/auction")
	accounts.New(stateCreator, se).
		Mount(router, "/accounts")
	transactions.New(chain, packer).
		Mount(router, "/transactions")
	events.New(logDB).
		Mount(router, "/logs/event")
	transfers.New(logDB).
		Mount(router, "/logs/transfer")
	subs := subscriptions.New(chain, origins)
	subs.Mount(router, "/subscriptions")

	router.Path("/metrics").Methods("GET").Handler(promhttp.Handler())

	return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedHeaders([]string{"content-type", strings.ToLower(utils.RequestIDHeader)}),
			handlers.ExposedHeaders([]string{utils.RequestIDHeader}))(utils.RequestID(router)).ServeHTTP,
		subs.Close // subscriptions handles hijacked conns, which need to be closed
}

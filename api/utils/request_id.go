// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/meterio/sealed-auction/meter"
)

// RequestIDHeader carries the id of a request, generated unless the client sent one.
const RequestIDHeader = "X-Request-Id"

// RequestID tags every request with an id, echoes it in the response and
// logs the request under it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("api request", "id", id, "method", r.Method, "path", r.URL.Path, "elapsed", meter.PrettyDuration(time.Since(start)))
	})
}

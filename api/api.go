// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the HTTP surface of the accounting engine.
package api

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/ekmixon/batchmint/ledger"
	"github.com/ekmixon/batchmint/minter"
	"github.com/ekmixon/batchmint/state"
)

// New returns the api handler. All state-changing routes share one
// lock so operations serialize the way the chain host would serialize
// them, and every successful operation is committed to disk before the
// response is written.
func New(
	m *minter.Minter,
	led *ledger.Ledger,
	st *state.State,
	allowedOrigins string,
) http.Handler {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	var lock sync.RWMutex

	router := mux.NewRouter()
	newMinterAPI(m, st, &lock).Mount(router, "/minter")
	newLedgerAPI(led, &lock).Mount(router, "/ledger")

	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(router)
}

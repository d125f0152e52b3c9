// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/ekmixon/batchmint/api/utils"
	"github.com/ekmixon/batchmint/ledger"
)

// LedgerAPI exposes read-only balance and issuance queries.
type LedgerAPI struct {
	ledger *ledger.Ledger
	lock   *sync.RWMutex
}

func newLedgerAPI(led *ledger.Ledger, lock *sync.RWMutex) *LedgerAPI {
	return &LedgerAPI{led, lock}
}

func parseAssetVar(req *http.Request) (ledger.Asset, error) {
	asset, err := ledger.ParseAsset(mux.Vars(req)["asset"])
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "asset"))
	}
	return asset, nil
}

func (a *LedgerAPI) handleGetIssuance(w http.ResponseWriter, req *http.Request) error {
	asset, err := parseAssetVar(req)
	if err != nil {
		return err
	}

	a.lock.RLock()
	defer a.lock.RUnlock()

	total, err := a.ledger.TotalIssuance(asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &IssuanceResponse{
		Asset:         asset.String(),
		TotalIssuance: (*math.HexOrDecimal256)(total),
	})
}

func (a *LedgerAPI) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	asset, err := parseAssetVar(req)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(mux.Vars(req)["address"]) {
		return utils.BadRequest(errors.New("address: invalid"))
	}
	addr := common.HexToAddress(mux.Vars(req)["address"])

	a.lock.RLock()
	defer a.lock.RUnlock()

	bal, err := a.ledger.BalanceOf(asset, addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &BalanceResponse{
		Asset:   asset.String(),
		Address: addr,
		Balance: (*math.HexOrDecimal256)(bal),
	})
}

// Mount attaches the ledger routes under pathPrefix.
func (a *LedgerAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{asset}/issuance").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetIssuance))
	sub.Path("/{asset}/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetBalance))
}

// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"math/big"
	"net/http"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/ekmixon/batchmint/api/utils"
	"github.com/ekmixon/batchmint/authority"
	"github.com/ekmixon/batchmint/ledger"
	"github.com/ekmixon/batchmint/minter"
	"github.com/ekmixon/batchmint/state"
)

// MinterAPI exposes the four minter operations and the read-only
// queries over HTTP. State-changing calls are serialized by the shared
// lock and flushed to disk on success, standing in for the transactional
// boundary a chain host would provide.
type MinterAPI struct {
	minter *minter.Minter
	state  *state.State
	lock   *sync.RWMutex
}

func newMinterAPI(m *minter.Minter, st *state.State, lock *sync.RWMutex) *MinterAPI {
	return &MinterAPI{m, st, lock}
}

// convertMinterError maps typed core errors onto http statuses.
func convertMinterError(err error) error {
	switch {
	case errors.Is(err, authority.ErrUnauthorized):
		return utils.Forbidden(err)
	case errors.Is(err, minter.ErrStashNotConfigured),
		errors.Is(err, minter.ErrInvalidStakedCurrencyTotalIssuance),
		errors.Is(err, minter.ErrLiquidCurrencyNotIssuedForThisBatch),
		errors.Is(err, minter.ErrArithmeticOverflow),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrAmountOutOfRange):
		return utils.BadRequest(err)
	}
	return err
}

func parseBatch(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "batch"))
	}
	return uint32(n), nil
}

func (a *MinterAPI) handleCommit(w http.ResponseWriter, req *http.Request) error {
	var body CommitRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	batch, err := a.minter.CurrentBatch()
	if err != nil {
		return err
	}
	if err := a.minter.Commit(body.Caller, (*big.Int)(body.Amount)); err != nil {
		return convertMinterError(err)
	}
	if err := a.state.Commit(); err != nil {
		return err
	}
	return utils.WriteJSON(w, &CommitResponse{Batch: batch})
}

func (a *MinterAPI) handleClose(w http.ResponseWriter, req *http.Request) error {
	var body CloseRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	batch, err := a.minter.CurrentBatch()
	if err != nil {
		return err
	}
	if err := a.minter.Close(body.Caller, (*big.Int)(body.StakingTotal)); err != nil {
		return convertMinterError(err)
	}
	if err := a.state.Commit(); err != nil {
		return err
	}
	snap, err := a.minter.BatchSnapshot(batch)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &CloseResponse{
		ClosedBatch:  batch,
		StakingTotal: (*math.HexOrDecimal256)(snap.StakingTotal),
		LiquidTotal:  (*math.HexOrDecimal256)(snap.LiquidTotal),
	})
}

func (a *MinterAPI) handleRedeem(w http.ResponseWriter, req *http.Request) error {
	var body RedeemRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	minted, err := a.minter.Redeem(body.Who, body.Batch)
	if err != nil {
		return convertMinterError(err)
	}
	if err := a.state.Commit(); err != nil {
		return err
	}
	return utils.WriteJSON(w, &RedeemResponse{
		Batch:  body.Batch,
		Minted: (*math.HexOrDecimal256)(minted),
	})
}

func (a *MinterAPI) handleSetStash(w http.ResponseWriter, req *http.Request) error {
	var body StashRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	if err := a.minter.SetStashDestination(body.Caller, body.NewAccount); err != nil {
		return convertMinterError(err)
	}
	if err := a.state.Commit(); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"stash": body.NewAccount})
}

func (a *MinterAPI) handleGetPending(w http.ResponseWriter, req *http.Request) error {
	batch, err := parseBatch(mux.Vars(req)["batch"])
	if err != nil {
		return err
	}
	if !common.IsHexAddress(mux.Vars(req)["address"]) {
		return utils.BadRequest(errors.New("address: invalid"))
	}
	addr := common.HexToAddress(mux.Vars(req)["address"])

	a.lock.RLock()
	defer a.lock.RUnlock()

	amount, err := a.minter.PendingAmount(batch, addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &PendingResponse{
		Batch:   batch,
		Address: addr,
		Amount:  (*math.HexOrDecimal256)(amount),
	})
}

func (a *MinterAPI) handleGetCurrentBatch(w http.ResponseWriter, req *http.Request) error {
	a.lock.RLock()
	defer a.lock.RUnlock()

	batch, err := a.minter.CurrentBatch()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"batch": batch})
}

func (a *MinterAPI) handleGetBatch(w http.ResponseWriter, req *http.Request) error {
	batch, err := parseBatch(mux.Vars(req)["batch"])
	if err != nil {
		return err
	}

	a.lock.RLock()
	defer a.lock.RUnlock()

	snap, err := a.minter.BatchSnapshot(batch)
	if err != nil {
		return err
	}
	resp := &BatchResponse{Batch: batch}
	if snap != nil {
		resp.Closed = true
		resp.StakingTotal = (*math.HexOrDecimal256)(snap.StakingTotal)
		resp.LiquidTotal = (*math.HexOrDecimal256)(snap.LiquidTotal)
	}
	return utils.WriteJSON(w, resp)
}

func (a *MinterAPI) handleGetStash(w http.ResponseWriter, req *http.Request) error {
	a.lock.RLock()
	defer a.lock.RUnlock()

	stash, found, err := a.minter.StashDestination()
	if err != nil {
		return err
	}
	if !found {
		return utils.WriteJSON(w, utils.M{"stash": nil})
	}
	return utils.WriteJSON(w, utils.M{"stash": stash})
}

// Mount attaches the minter routes under pathPrefix.
func (a *MinterAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/commit").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleCommit))
	sub.Path("/close").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleClose))
	sub.Path("/redeem").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleRedeem))
	sub.Path("/stash").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleSetStash))
	sub.Path("/stash").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetStash))
	sub.Path("/pending/{batch}/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetPending))
	sub.Path("/batches/current").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetCurrentBatch))
	sub.Path("/batches/{batch}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetBatch))
}

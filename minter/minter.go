// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package minter implements the batch accounting state machine: users
// commit staking currency to the open batch, the issuer closes a batch
// by snapshotting total issuance, and users redeem closed batches for
// liquid currency at the batch's fixed exchange rate.
package minter

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/ekmixon/batchmint/authority"
	"github.com/ekmixon/batchmint/events"
	"github.com/ekmixon/batchmint/ledger"
	"github.com/ekmixon/batchmint/metrics"
	"github.com/ekmixon/batchmint/state"
)

var logger = log15.New("pkg", "minter")

var (
	// ErrStashNotConfigured is returned by Commit before governance has
	// set a stash destination.
	ErrStashNotConfigured = errors.New("stash destination not configured")
	// ErrInvalidStakedCurrencyTotalIssuance is returned by Close for a
	// zero staking total.
	ErrInvalidStakedCurrencyTotalIssuance = errors.New("staking currency total issuance must be more than zero")
	// ErrLiquidCurrencyNotIssuedForThisBatch is returned by Redeem
	// against a batch that is still open or unknown.
	ErrLiquidCurrencyNotIssuedForThisBatch = errors.New("liquid currency not issued for this batch")
	// ErrArithmeticOverflow is returned when the mint amount exceeds the
	// balance representation.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)

var (
	currentBatchKey = crypto.Keccak256Hash([]byte("current-batch"))
	stashKey        = crypto.Keccak256Hash([]byte("stash-destination"))

	metricCommits         = metrics.LazyLoadCounter("commit_count")
	metricCloses          = metrics.LazyLoadCounter("close_count")
	metricRedeems         = metrics.LazyLoadCounter("redeem_count")
	metricCloseMismatches = metrics.LazyLoadCounter("close_total_mismatch_count")
)

// balances are capped at the 256-bit representation
const maxAmountBits = 256

func batchBytes(batch uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], batch)
	return b[:]
}

func pendingKey(batch uint32, user common.Address) common.Hash {
	return crypto.Keccak256Hash([]byte("pending"), batchBytes(batch), user.Bytes())
}

func snapshotKey(batch uint32) common.Hash {
	return crypto.Keccak256Hash([]byte("batch-issuance"), batchBytes(batch))
}

func committedKey(batch uint32) common.Hash {
	return crypto.Keccak256Hash([]byte("batch-committed"), batchBytes(batch))
}

// Snapshot records the total issuance of both currencies at the moment
// a batch was closed. It is the exchange-rate basis for that batch and
// is never mutated once written.
type Snapshot struct {
	StakingTotal *big.Int
	LiquidTotal  *big.Int
}

// Minter ties together the pending ledger, the batch cursor and the
// issuance snapshots. All persistent entries live as structured storage
// under the minter's account address.
type Minter struct {
	addr   common.Address
	state  *state.State
	ledger *ledger.Ledger
	auth   authority.Checker
	sink   events.Sink
}

// New creates a minter instance.
func New(addr common.Address, st *state.State, led *ledger.Ledger, auth authority.Checker, sink events.Sink) *Minter {
	return &Minter{addr, st, led, auth, sink}
}

//
// Queries - no state change
//

// CurrentBatch returns the id of the batch currently accepting commits.
func (m *Minter) CurrentBatch() (uint32, error) {
	var batch uint32
	if _, err := m.state.GetStorage(m.addr, currentBatchKey, &batch); err != nil {
		return 0, err
	}
	return batch, nil
}

// PendingAmount returns the amount of staking currency the user has
// committed to the given batch and not yet redeemed. Absent entries
// read as zero.
func (m *Minter) PendingAmount(batch uint32, user common.Address) (*big.Int, error) {
	var amount big.Int
	if _, err := m.state.GetStorage(m.addr, pendingKey(batch, user), &amount); err != nil {
		return nil, err
	}
	return &amount, nil
}

// BatchSnapshot returns the issuance snapshot of the given batch, or
// nil if the batch has not been closed.
func (m *Minter) BatchSnapshot(batch uint32) (*Snapshot, error) {
	var snap Snapshot
	found, err := m.state.GetStorage(m.addr, snapshotKey(batch), &snap)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &snap, nil
}

// StashDestination returns the configured custodial account, if any.
func (m *Minter) StashDestination() (common.Address, bool, error) {
	var stash common.Address
	found, err := m.state.GetStorage(m.addr, stashKey, &stash)
	if err != nil {
		return common.Address{}, false, err
	}
	return stash, found, nil
}

// CommittedTotal returns the running sum of commits recorded for the
// given batch. It is bookkeeping used to cross-check the issuer-attested
// staking total at close time.
func (m *Minter) CommittedTotal(batch uint32) (*big.Int, error) {
	var total big.Int
	if _, err := m.state.GetStorage(m.addr, committedKey(batch), &total); err != nil {
		return nil, err
	}
	return &total, nil
}

//
// Operations
//

// Commit locks amount of the caller's staking currency into the
// currently open batch. The amount is transferred to the stash
// destination and recorded in the pending ledger; the exchange happens
// later, once the batch is closed and the caller redeems.
func (m *Minter) Commit(caller common.Address, amount *big.Int) error {
	cp := m.state.NewCheckpoint()
	if err := m.commit(caller, amount); err != nil {
		m.state.RevertTo(cp)
		return err
	}
	return nil
}

func (m *Minter) commit(caller common.Address, amount *big.Int) error {
	stash, found, err := m.StashDestination()
	if err != nil {
		return err
	}
	if !found {
		return ErrStashNotConfigured
	}

	batch, err := m.CurrentBatch()
	if err != nil {
		return err
	}

	// TODO: forward the stash balance to the custodial chain once the
	// cross-chain transfer is implemented.
	if err := m.ledger.Transfer(ledger.Staking, caller, stash, amount); err != nil {
		return err
	}

	pending, err := m.PendingAmount(batch, caller)
	if err != nil {
		return err
	}
	pending.Add(pending, amount)
	if pending.BitLen() > maxAmountBits {
		// the stash balance would have overflowed first; a broken
		// precondition elsewhere, not a user error
		panic("pending amount overflow")
	}
	if err := m.state.SetStorage(m.addr, pendingKey(batch, caller), pending); err != nil {
		return err
	}

	committed, err := m.CommittedTotal(batch)
	if err != nil {
		return err
	}
	committed.Add(committed, amount)
	if err := m.state.SetStorage(m.addr, committedKey(batch), committed); err != nil {
		return err
	}

	m.sink.Emit(events.MintRequested(batch, caller, amount))
	metricCommits().Add(1)
	logger.Debug("commit", "batch", batch, "user", caller, "amount", amount)
	return nil
}

// Close snapshots the issuance totals for the currently open batch and
// advances the batch cursor, opening the next batch. Only the issuer
// capability may close; stakingTotal is issuer-attested.
func (m *Minter) Close(caller common.Address, stakingTotal *big.Int) error {
	cp := m.state.NewCheckpoint()
	if err := m.close(caller, stakingTotal); err != nil {
		m.state.RevertTo(cp)
		return err
	}
	return nil
}

func (m *Minter) close(caller common.Address, stakingTotal *big.Int) error {
	if err := m.auth.Check(caller, authority.Issuer); err != nil {
		return err
	}
	if stakingTotal == nil || stakingTotal.Sign() <= 0 {
		return ErrInvalidStakedCurrencyTotalIssuance
	}

	batch, err := m.CurrentBatch()
	if err != nil {
		return err
	}

	liquidTotal, err := m.ledger.TotalIssuance(ledger.Liquid)
	if err != nil {
		return err
	}

	// the attested total is trusted, but a drift from our own
	// bookkeeping is worth surfacing
	committed, err := m.CommittedTotal(batch)
	if err != nil {
		return err
	}
	if committed.Cmp(stakingTotal) != 0 {
		metricCloseMismatches().Add(1)
		logger.Warn("attested staking total differs from recorded commits",
			"batch", batch, "attested", stakingTotal, "recorded", committed)
	}

	snap := &Snapshot{
		StakingTotal: stakingTotal,
		LiquidTotal:  liquidTotal,
	}
	if err := m.state.SetStorage(m.addr, snapshotKey(batch), snap); err != nil {
		return err
	}

	if batch == math.MaxUint32 {
		// batch ids are expected never to exhaust the counter
		panic("batch cursor overflow")
	}
	if err := m.state.SetStorage(m.addr, currentBatchKey, batch+1); err != nil {
		return err
	}

	m.sink.Emit(events.BatchProcessed(batch, stakingTotal, liquidTotal))
	metricCloses().Add(1)
	logger.Debug("batch closed", "batch", batch, "stakingTotal", stakingTotal, "liquidTotal", liquidTotal)
	return nil
}

// Redeem converts who's pending commitment in the given closed batch
// into liquid currency at the batch's fixed rate, returning the minted
// amount. Anyone may redeem on behalf of who. Redeeming with no pending
// entry mints zero.
func (m *Minter) Redeem(who common.Address, batch uint32) (*big.Int, error) {
	cp := m.state.NewCheckpoint()
	minted, err := m.redeem(who, batch)
	if err != nil {
		m.state.RevertTo(cp)
		return nil, err
	}
	return minted, nil
}

func (m *Minter) redeem(who common.Address, batch uint32) (*big.Int, error) {
	snap, err := m.BatchSnapshot(batch)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrLiquidCurrencyNotIssuedForThisBatch
	}

	staked, err := m.PendingAmount(batch, who)
	if err != nil {
		return nil, err
	}

	// liquidToMint = staked * liquidTotal / stakingTotal, rounded
	// toward zero. stakingTotal is non-zero by the close invariant.
	liquidToMint := new(big.Int).Mul(staked, snap.LiquidTotal)
	liquidToMint.Quo(liquidToMint, snap.StakingTotal)
	if liquidToMint.BitLen() > maxAmountBits {
		return nil, ErrArithmeticOverflow
	}

	if err := m.ledger.Deposit(ledger.Liquid, who, liquidToMint); err != nil {
		return nil, err
	}
	m.state.DeleteStorage(m.addr, pendingKey(batch, who))

	m.sink.Emit(events.LiquidCurrencyClaimed(batch, who, liquidToMint))
	metricRedeems().Add(1)
	logger.Debug("claimed", "batch", batch, "user", who, "amount", liquidToMint)
	return liquidToMint, nil
}

// SetStashDestination overwrites the custodial account committed
// staking currency is transferred to. Only the governance capability
// may call it.
func (m *Minter) SetStashDestination(caller common.Address, newAccount common.Address) error {
	cp := m.state.NewCheckpoint()
	if err := m.setStashDestination(caller, newAccount); err != nil {
		m.state.RevertTo(cp)
		return err
	}
	return nil
}

func (m *Minter) setStashDestination(caller common.Address, newAccount common.Address) error {
	if err := m.auth.Check(caller, authority.Governance); err != nil {
		return err
	}
	if err := m.state.SetStorage(m.addr, stashKey, newAccount); err != nil {
		return err
	}
	m.sink.Emit(events.StashDestinationUpdated(newAccount))
	logger.Debug("stash destination updated", "account", newAccount)
	return nil
}

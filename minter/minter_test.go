// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package minter

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekmixon/batchmint/authority"
	"github.com/ekmixon/batchmint/events"
	"github.com/ekmixon/batchmint/kv"
	"github.com/ekmixon/batchmint/ledger"
	"github.com/ekmixon/batchmint/state"
)

var (
	issuer = common.BytesToAddress([]byte("issuer"))
	gov    = common.BytesToAddress([]byte("gov"))
	stash  = common.BytesToAddress([]byte("stash"))
	u1     = common.BytesToAddress([]byte("u1"))
	u2     = common.BytesToAddress([]byte("u2"))
)

type testEnv struct {
	minter *Minter
	ledger *ledger.Ledger
	sink   *events.MemSink
	state  *state.State
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := kv.NewMem()
	require.Nil(t, err)
	st := state.New(db)

	led := ledger.New(common.BytesToAddress([]byte("ledger")), st)
	auth := authority.New(common.BytesToAddress([]byte("authority")), st)
	require.Nil(t, auth.SetHolder(authority.Issuer, issuer))
	require.Nil(t, auth.SetHolder(authority.Governance, gov))

	sink := &events.MemSink{}
	m := New(common.BytesToAddress([]byte("minter")), st, led, auth, sink)
	return &testEnv{minter: m, ledger: led, sink: sink, state: st}
}

func (env *testEnv) fund(t *testing.T, addr common.Address, amount int64) {
	require.Nil(t, env.ledger.Deposit(ledger.Staking, addr, big.NewInt(amount)))
}

func (env *testEnv) setStash(t *testing.T) {
	require.Nil(t, env.minter.SetStashDestination(gov, stash))
}

func TestCommitRequiresStash(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, u1, 1000)

	assert.Equal(t, ErrStashNotConfigured, env.minter.Commit(u1, big.NewInt(1)))

	// nothing recorded
	pending, _ := env.minter.PendingAmount(0, u1)
	assert.Equal(t, &big.Int{}, pending)
	assert.Empty(t, env.sink.Events())
}

func TestCommitTransfersToStash(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 1000)

	assert.Nil(t, env.minter.Commit(u1, big.NewInt(400)))
	assert.Nil(t, env.minter.Commit(u1, big.NewInt(100)))

	stashBal, _ := env.ledger.BalanceOf(ledger.Staking, stash)
	assert.Equal(t, big.NewInt(500), stashBal)
	userBal, _ := env.ledger.BalanceOf(ledger.Staking, u1)
	assert.Equal(t, big.NewInt(500), userBal)

	// pending accumulates across commits within the same batch
	pending, _ := env.minter.PendingAmount(0, u1)
	assert.Equal(t, big.NewInt(500), pending)

	committed, _ := env.minter.CommittedTotal(0)
	assert.Equal(t, big.NewInt(500), committed)
}

func TestCommitInsufficientBalanceLeavesNoState(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 10)

	assert.Equal(t, ledger.ErrInsufficientBalance, env.minter.Commit(u1, big.NewInt(11)))

	pending, _ := env.minter.PendingAmount(0, u1)
	assert.Equal(t, &big.Int{}, pending)
	stashBal, _ := env.ledger.BalanceOf(ledger.Staking, stash)
	assert.Equal(t, &big.Int{}, stashBal)

	// only the stash update event, nothing from the failed commit
	evs := env.sink.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.NameStashDestinationUpdated, evs[0].Name)
}

func TestCloseAuthorization(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, authority.ErrUnauthorized, env.minter.Close(u1, big.NewInt(1)))
}

func TestCloseZeroTotalRejected(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, ErrInvalidStakedCurrencyTotalIssuance, env.minter.Close(issuer, &big.Int{}))

	// no snapshot written, cursor unchanged
	batch, _ := env.minter.CurrentBatch()
	assert.Equal(t, uint32(0), batch)
	snap, _ := env.minter.BatchSnapshot(0)
	assert.Nil(t, snap)
}

func TestCloseAdvancesCursor(t *testing.T) {
	env := newTestEnv(t)

	for i := uint32(0); i < 5; i++ {
		batch, _ := env.minter.CurrentBatch()
		assert.Equal(t, i, batch)

		assert.Nil(t, env.minter.Close(issuer, big.NewInt(1)))

		// the snapshot belongs to the batch that was open before the
		// cursor advanced
		snap, _ := env.minter.BatchSnapshot(i)
		require.NotNil(t, snap)
		assert.Equal(t, big.NewInt(1), snap.StakingTotal)

		// no snapshot exists for the newly opened batch
		snap, _ = env.minter.BatchSnapshot(i + 1)
		assert.Nil(t, snap)
	}
}

func TestCloseSnapshotsLiquidIssuance(t *testing.T) {
	env := newTestEnv(t)
	require.Nil(t, env.ledger.Deposit(ledger.Liquid, u2, big.NewInt(500)))

	assert.Nil(t, env.minter.Close(issuer, big.NewInt(1000)))

	snap, _ := env.minter.BatchSnapshot(0)
	require.NotNil(t, snap)
	assert.Equal(t, big.NewInt(1000), snap.StakingTotal)
	assert.Equal(t, big.NewInt(500), snap.LiquidTotal)
}

func TestRedeemBeforeCloseRejected(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.minter.Redeem(u1, 0)
	assert.Equal(t, ErrLiquidCurrencyNotIssuedForThisBatch, err)
	_, err = env.minter.Redeem(u1, 1)
	assert.Equal(t, ErrLiquidCurrencyNotIssuedForThisBatch, err)
}

func TestRedeemSingleUser(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 1000)
	// pre-existing liquid supply
	require.Nil(t, env.ledger.Deposit(ledger.Liquid, u2, big.NewInt(500)))

	require.Nil(t, env.minter.Commit(u1, big.NewInt(1000)))
	require.Nil(t, env.minter.Close(issuer, big.NewInt(1000)))

	minted, err := env.minter.Redeem(u1, 0)
	assert.Nil(t, err)

	// 1000 * 500 / 1000 = 500
	assert.Equal(t, big.NewInt(500), minted)
	liq, _ := env.ledger.BalanceOf(ledger.Liquid, u1)
	assert.Equal(t, big.NewInt(500), liq)

	// pending entry removed
	pending, _ := env.minter.PendingAmount(0, u1)
	assert.Equal(t, &big.Int{}, pending)
}

func TestRedeemSharedRate(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 300)
	env.fund(t, u2, 700)
	liquidHolder := common.BytesToAddress([]byte("holder"))
	require.Nil(t, env.ledger.Deposit(ledger.Liquid, liquidHolder, big.NewInt(2000)))

	require.Nil(t, env.minter.Commit(u1, big.NewInt(300)))
	require.Nil(t, env.minter.Commit(u2, big.NewInt(700)))
	require.Nil(t, env.minter.Close(issuer, big.NewInt(1000)))

	minted1, err := env.minter.Redeem(u1, 0)
	assert.Nil(t, err)
	minted2, err := env.minter.Redeem(u2, 0)
	assert.Nil(t, err)

	// rate 2000/1000 is shared by all participants of the batch
	assert.Equal(t, big.NewInt(600), minted1)
	assert.Equal(t, big.NewInt(1400), minted2)
	liq1, _ := env.ledger.BalanceOf(ledger.Liquid, u1)
	liq2, _ := env.ledger.BalanceOf(ledger.Liquid, u2)
	assert.Equal(t, big.NewInt(600), liq1)
	assert.Equal(t, big.NewInt(1400), liq2)
}

func TestRedeemTruncatesTowardZero(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 10)
	require.Nil(t, env.ledger.Deposit(ledger.Liquid, u2, big.NewInt(5)))

	require.Nil(t, env.minter.Commit(u1, big.NewInt(10)))
	require.Nil(t, env.minter.Close(issuer, big.NewInt(3)))

	// 10 * 5 / 3 = 16.66.. -> 16
	minted, err := env.minter.Redeem(u1, 0)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(16), minted)
	liq, _ := env.ledger.BalanceOf(ledger.Liquid, u1)
	assert.Equal(t, big.NewInt(16), liq)
}

func TestRedeemOverflowLeavesPending(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 4)
	// liquid supply near the representation cap
	hugeLiquid := new(big.Int).Lsh(big.NewInt(1), 255)
	require.Nil(t, env.ledger.Deposit(ledger.Liquid, u2, hugeLiquid))

	require.Nil(t, env.minter.Commit(u1, big.NewInt(4)))
	require.Nil(t, env.minter.Close(issuer, big.NewInt(1)))

	// 4 * 2^255 / 1 does not fit in 256 bits
	_, err := env.minter.Redeem(u1, 0)
	assert.Equal(t, ErrArithmeticOverflow, err)

	// the failed redeem keeps the pending entry and mints nothing
	pending, _ := env.minter.PendingAmount(0, u1)
	assert.Equal(t, big.NewInt(4), pending)
	liq, _ := env.ledger.BalanceOf(ledger.Liquid, u1)
	assert.Equal(t, &big.Int{}, liq)
	total, _ := env.ledger.TotalIssuance(ledger.Liquid)
	assert.Equal(t, hugeLiquid, total)
}

func TestRedeemZeroPending(t *testing.T) {
	env := newTestEnv(t)
	require.Nil(t, env.minter.Close(issuer, big.NewInt(1000)))

	minted, err := env.minter.Redeem(u1, 0)
	assert.Nil(t, err)
	assert.Equal(t, &big.Int{}, minted)

	liq, _ := env.ledger.BalanceOf(ledger.Liquid, u1)
	assert.Equal(t, &big.Int{}, liq)
	total, _ := env.ledger.TotalIssuance(ledger.Liquid)
	assert.Equal(t, &big.Int{}, total)
}

func TestRedeemTwiceMintsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 100)
	require.Nil(t, env.ledger.Deposit(ledger.Liquid, u2, big.NewInt(100)))

	require.Nil(t, env.minter.Commit(u1, big.NewInt(100)))
	require.Nil(t, env.minter.Close(issuer, big.NewInt(100)))

	minted, err := env.minter.Redeem(u1, 0)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(100), minted)

	// the second claim finds no pending entry and mints zero
	minted, err = env.minter.Redeem(u1, 0)
	assert.Nil(t, err)
	assert.Equal(t, &big.Int{}, minted)

	liq, _ := env.ledger.BalanceOf(ledger.Liquid, u1)
	assert.Equal(t, big.NewInt(100), liq)
}

func TestRedeemLateBatch(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 100)
	require.Nil(t, env.ledger.Deposit(ledger.Liquid, u2, big.NewInt(100)))

	require.Nil(t, env.minter.Commit(u1, big.NewInt(100)))
	require.Nil(t, env.minter.Close(issuer, big.NewInt(100)))

	// several more batches pass; the old snapshot still prices batch 0
	for i := 0; i < 3; i++ {
		require.Nil(t, env.minter.Close(issuer, big.NewInt(1)))
	}

	minted, err := env.minter.Redeem(u1, 0)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(100), minted)
	liq, _ := env.ledger.BalanceOf(ledger.Liquid, u1)
	assert.Equal(t, big.NewInt(100), liq)
}

func TestCommitAfterCloseTargetsNextBatch(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 200)

	require.Nil(t, env.minter.Commit(u1, big.NewInt(50)))
	require.Nil(t, env.minter.Close(issuer, big.NewInt(50)))
	require.Nil(t, env.minter.Commit(u1, big.NewInt(70)))

	p0, _ := env.minter.PendingAmount(0, u1)
	p1, _ := env.minter.PendingAmount(1, u1)
	assert.Equal(t, big.NewInt(50), p0)
	assert.Equal(t, big.NewInt(70), p1)
}

func TestSetStashDestination(t *testing.T) {
	env := newTestEnv(t)

	_, found, _ := env.minter.StashDestination()
	assert.False(t, found)

	assert.Equal(t, authority.ErrUnauthorized, env.minter.SetStashDestination(u1, stash))

	assert.Nil(t, env.minter.SetStashDestination(gov, stash))
	got, found, _ := env.minter.StashDestination()
	assert.True(t, found)
	assert.Equal(t, stash, got)

	// governance may overwrite unconditionally
	other := common.BytesToAddress([]byte("other"))
	assert.Nil(t, env.minter.SetStashDestination(gov, other))
	got, _, _ = env.minter.StashDestination()
	assert.Equal(t, other, got)
}

func TestEventsEmittedInOrder(t *testing.T) {
	env := newTestEnv(t)
	env.setStash(t)
	env.fund(t, u1, 100)
	require.Nil(t, env.ledger.Deposit(ledger.Liquid, u2, big.NewInt(100)))

	require.Nil(t, env.minter.Commit(u1, big.NewInt(100)))
	require.Nil(t, env.minter.Close(issuer, big.NewInt(100)))
	_, err := env.minter.Redeem(u1, 0)
	require.Nil(t, err)

	evs := env.sink.Events()
	require.Len(t, evs, 4) // stash update + commit + close + redeem

	assert.Equal(t, events.NameStashDestinationUpdated, evs[0].Name)
	assert.Equal(t, stash, *evs[0].Account)

	assert.Equal(t, events.NameMintRequested, evs[1].Name)
	assert.Equal(t, uint32(0), evs[1].Batch)
	assert.Equal(t, u1, *evs[1].Account)
	assert.Equal(t, big.NewInt(100), evs[1].Amounts[0])

	assert.Equal(t, events.NameBatchProcessed, evs[2].Name)
	assert.Equal(t, []*big.Int{big.NewInt(100), big.NewInt(100)}, evs[2].Amounts)

	assert.Equal(t, events.NameLiquidCurrencyClaimed, evs[3].Name)
	assert.Equal(t, u1, *evs[3].Account)
	assert.Equal(t, big.NewInt(100), evs[3].Amounts[0])
}

func TestStatePersistsAcrossCommit(t *testing.T) {
	db, err := kv.NewMem()
	require.Nil(t, err)
	st := state.New(db)

	ledgerAddr := common.BytesToAddress([]byte("ledger"))
	authAddr := common.BytesToAddress([]byte("authority"))
	minterAddr := common.BytesToAddress([]byte("minter"))

	led := ledger.New(ledgerAddr, st)
	auth := authority.New(authAddr, st)
	require.Nil(t, auth.SetHolder(authority.Issuer, issuer))
	require.Nil(t, auth.SetHolder(authority.Governance, gov))
	m := New(minterAddr, st, led, auth, &events.MemSink{})

	require.Nil(t, m.SetStashDestination(gov, stash))
	require.Nil(t, led.Deposit(ledger.Staking, u1, big.NewInt(100)))
	require.Nil(t, m.Commit(u1, big.NewInt(60)))
	require.Nil(t, m.Close(issuer, big.NewInt(60)))
	require.Nil(t, st.Commit())

	// a restart: fresh state over the same db
	st2 := state.New(db)
	m2 := New(minterAddr, st2, ledger.New(ledgerAddr, st2), authority.New(authAddr, st2), &events.MemSink{})

	batch, _ := m2.CurrentBatch()
	assert.Equal(t, uint32(1), batch)
	pending, _ := m2.PendingAmount(0, u1)
	assert.Equal(t, big.NewInt(60), pending)
	snap, _ := m2.BatchSnapshot(0)
	require.NotNil(t, snap)
	assert.Equal(t, big.NewInt(60), snap.StakingTotal)
}

// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/ekmixon/batchmint/kv"
	"github.com/ekmixon/batchmint/state"
)

func newTestLedger() *Ledger {
	db, _ := kv.NewMem()
	st := state.New(db)
	return New(common.BytesToAddress([]byte("ledger")), st)
}

func TestDepositAndIssuance(t *testing.T) {
	led := newTestLedger()
	acc := common.BytesToAddress([]byte("a1"))

	total, err := led.TotalIssuance(Liquid)
	assert.Nil(t, err)
	assert.Equal(t, &big.Int{}, total)

	assert.Nil(t, led.Deposit(Liquid, acc, big.NewInt(500)))

	bal, _ := led.BalanceOf(Liquid, acc)
	assert.Equal(t, big.NewInt(500), bal)

	total, _ = led.TotalIssuance(Liquid)
	assert.Equal(t, big.NewInt(500), total)

	// depositing staking does not affect liquid issuance
	assert.Nil(t, led.Deposit(Staking, acc, big.NewInt(7)))
	total, _ = led.TotalIssuance(Liquid)
	assert.Equal(t, big.NewInt(500), total)
}

func TestTransfer(t *testing.T) {
	led := newTestLedger()
	a1 := common.BytesToAddress([]byte("a1"))
	a2 := common.BytesToAddress([]byte("a2"))

	assert.Nil(t, led.Deposit(Staking, a1, big.NewInt(100)))

	assert.Nil(t, led.Transfer(Staking, a1, a2, big.NewInt(40)))
	b1, _ := led.BalanceOf(Staking, a1)
	b2, _ := led.BalanceOf(Staking, a2)
	assert.Equal(t, big.NewInt(60), b1)
	assert.Equal(t, big.NewInt(40), b2)

	// transfers do not move total issuance
	total, _ := led.TotalIssuance(Staking)
	assert.Equal(t, big.NewInt(100), total)

	assert.Equal(t, ErrInsufficientBalance, led.Transfer(Staking, a1, a2, big.NewInt(61)))
}

func TestInvalidAmounts(t *testing.T) {
	led := newTestLedger()
	acc := common.BytesToAddress([]byte("a1"))

	assert.Equal(t, ErrInvalidAmount, led.Deposit(Staking, acc, nil))
	assert.Equal(t, ErrInvalidAmount, led.Transfer(Staking, acc, acc, big.NewInt(-1)))
}

func TestAssetNames(t *testing.T) {
	assert.Equal(t, "staking", Staking.String())
	assert.Equal(t, "liquid", Liquid.String())

	a, err := ParseAsset("liquid")
	assert.Nil(t, err)
	assert.Equal(t, Liquid, a)

	_, err = ParseAsset("bogus")
	assert.Error(t, err)
}

// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the multi-asset currency ledger consumed by
// the minter: balance transfers, deposits (minting) and total issuance
// reads for the staking and liquid assets.
package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/ekmixon/batchmint/state"
)

// Asset identifies a currency managed by the ledger.
type Asset byte

const (
	// Staking is the asset users commit to batches.
	Staking Asset = iota
	// Liquid is the derivative asset minted against closed batches.
	Liquid
)

func (a Asset) String() string {
	switch a {
	case Staking:
		return "staking"
	case Liquid:
		return "liquid"
	}
	return "unknown"
}

// ParseAsset parses an asset name.
func ParseAsset(s string) (Asset, error) {
	switch s {
	case "staking":
		return Staking, nil
	case "liquid":
		return Liquid, nil
	}
	return 0, errors.New("unknown asset")
}

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the
	// sender's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount is returned for nil or negative amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountOutOfRange is returned when a balance or issuance would
	// exceed the 256-bit representation.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

var (
	stakingIssuanceKey = crypto.Keccak256Hash([]byte("staking-total-issuance"))
	liquidIssuanceKey  = crypto.Keccak256Hash([]byte("liquid-total-issuance"))
)

const maxBalanceBits = 256

// Ledger provides balance bookkeeping of both assets over the state.
// Issuance totals are kept as structured storage under the ledger's
// own account address.
type Ledger struct {
	addr  common.Address
	state *state.State
}

// New creates a ledger instance bound to addr.
func New(addr common.Address, st *state.State) *Ledger {
	return &Ledger{addr, st}
}

func (l *Ledger) issuanceKey(asset Asset) common.Hash {
	if asset == Liquid {
		return liquidIssuanceKey
	}
	return stakingIssuanceKey
}

func (l *Ledger) balance(asset Asset, addr common.Address) (*big.Int, error) {
	if asset == Liquid {
		return l.state.GetLiquid(addr)
	}
	return l.state.GetBalance(addr)
}

func (l *Ledger) setBalance(asset Asset, addr common.Address, bal *big.Int) error {
	if asset == Liquid {
		return l.state.SetLiquid(addr, bal)
	}
	return l.state.SetBalance(addr, bal)
}

// BalanceOf returns the balance of the given asset held by addr.
func (l *Ledger) BalanceOf(asset Asset, addr common.Address) (*big.Int, error) {
	return l.balance(asset, addr)
}

// TotalIssuance returns the total circulating supply of the given asset.
// It is a pure read with no side effects.
func (l *Ledger) TotalIssuance(asset Asset) (*big.Int, error) {
	var total big.Int
	if _, err := l.state.GetStorage(l.addr, l.issuanceKey(asset), &total); err != nil {
		return nil, err
	}
	return &total, nil
}

func (l *Ledger) setTotalIssuance(asset Asset, total *big.Int) error {
	return l.state.SetStorage(l.addr, l.issuanceKey(asset), total)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Transfer moves amount of asset from one account to another.
// It fails with ErrInsufficientBalance when the sender's balance is too low.
func (l *Ledger) Transfer(asset Asset, from, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	fromBal, err := l.balance(asset, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	toBal, err := l.balance(asset, to)
	if err != nil {
		return err
	}
	newToBal := new(big.Int).Add(toBal, amount)
	if newToBal.BitLen() > maxBalanceBits {
		return ErrAmountOutOfRange
	}
	if err := l.setBalance(asset, from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return l.setBalance(asset, to, newToBal)
}

// Deposit mints amount of asset into the given account, increasing the
// asset's total issuance accordingly.
func (l *Ledger) Deposit(asset Asset, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	bal, err := l.balance(asset, to)
	if err != nil {
		return err
	}
	newBal := new(big.Int).Add(bal, amount)
	total, err := l.TotalIssuance(asset)
	if err != nil {
		return err
	}
	newTotal := new(big.Int).Add(total, amount)
	if newBal.BitLen() > maxBalanceBits || newTotal.BitLen() > maxBalanceBits {
		return ErrAmountOutOfRange
	}
	if err := l.setBalance(asset, to, newBal); err != nil {
		return err
	}
	return l.setTotalIssuance(asset, newTotal)
}

// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis bootstraps a fresh database: well-known contract
// addresses, the capability holders, the optional stash destination and
// initial balances.
package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/ekmixon/batchmint/authority"
	"github.com/ekmixon/batchmint/events"
	"github.com/ekmixon/batchmint/ledger"
	"github.com/ekmixon/batchmint/minter"
	"github.com/ekmixon/batchmint/state"
)

// Well-known contract addresses, fixed for the lifetime of a database.
var (
	MinterAddress    = common.BytesToAddress([]byte("batchmint.minter"))
	LedgerAddress    = common.BytesToAddress([]byte("batchmint.ledger"))
	AuthorityAddress = common.BytesToAddress([]byte("batchmint.authority"))
)

// Allocation is an initial balance grant.
type Allocation struct {
	Address common.Address        `json:"address"`
	Staking *math.HexOrDecimal256 `json:"staking"`
	Liquid  *math.HexOrDecimal256 `json:"liquid"`
}

// Genesis describes the initial chain-off state of the accounting engine.
type Genesis struct {
	Issuer     common.Address  `json:"issuer"`
	Governance common.Address  `json:"governance"`
	Stash      *common.Address `json:"stash,omitempty"`
	Alloc      []Allocation    `json:"alloc,omitempty"`
}

// Applied reports whether genesis has already been applied to the state,
// detected by the presence of the issuer capability holder.
func Applied(st *state.State) (bool, error) {
	auth := authority.New(AuthorityAddress, st)
	_, found, err := auth.Holder(authority.Issuer)
	return found, err
}

// Apply writes the genesis allocation into the state. The caller is
// expected to call state.Commit afterwards.
func (g *Genesis) Apply(st *state.State) error {
	if g.Issuer == (common.Address{}) || g.Governance == (common.Address{}) {
		return errors.New("genesis: issuer and governance accounts are required")
	}

	auth := authority.New(AuthorityAddress, st)
	if err := auth.SetHolder(authority.Issuer, g.Issuer); err != nil {
		return err
	}
	if err := auth.SetHolder(authority.Governance, g.Governance); err != nil {
		return err
	}

	led := ledger.New(LedgerAddress, st)
	if g.Stash != nil {
		m := minter.New(MinterAddress, st, led, auth, &events.MemSink{})
		if err := m.SetStashDestination(g.Governance, *g.Stash); err != nil {
			return err
		}
	}

	for _, alloc := range g.Alloc {
		if alloc.Staking != nil {
			if err := led.Deposit(ledger.Staking, alloc.Address, (*big.Int)(alloc.Staking)); err != nil {
				return errors.WithMessage(err, "genesis: staking alloc")
			}
		}
		if alloc.Liquid != nil {
			if err := led.Deposit(ledger.Liquid, alloc.Address, (*big.Int)(alloc.Liquid)); err != nil {
				return errors.WithMessage(err, "genesis: liquid alloc")
			}
		}
	}
	return nil
}

// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority implements the capability checks gating privileged
// minter operations: the issuer capability gates batch close, the
// governance capability gates stash configuration.
package authority

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/ekmixon/batchmint/state"
)

// Capability names a privileged role.
type Capability byte

const (
	// Issuer may close batches.
	Issuer Capability = iota
	// Governance may reconfigure the stash destination.
	Governance
)

func (c Capability) String() string {
	switch c {
	case Issuer:
		return "issuer"
	case Governance:
		return "governance"
	}
	return "unknown"
}

// ErrUnauthorized is returned when a caller lacks the required capability.
var ErrUnauthorized = errors.New("unauthorized")

// Checker resolves a caller to a capability or ErrUnauthorized.
// It is injected into the minter so alternate authorization backends
// can be substituted.
type Checker interface {
	Check(caller common.Address, c Capability) error
}

var (
	issuerKey     = crypto.Keccak256Hash([]byte("issuer-account"))
	governanceKey = crypto.Keccak256Hash([]byte("governance-account"))
)

// Authority is the state-backed Checker. The authorized addresses are
// stored under the authority's account address so they survive restarts.
type Authority struct {
	addr  common.Address
	state *state.State
}

var _ Checker = (*Authority)(nil)

// New creates an authority instance bound to addr.
func New(addr common.Address, st *state.State) *Authority {
	return &Authority{addr, st}
}

func (a *Authority) key(c Capability) common.Hash {
	if c == Governance {
		return governanceKey
	}
	return issuerKey
}

// Holder returns the address holding the given capability.
// The second return value is false when it was never set.
func (a *Authority) Holder(c Capability) (common.Address, bool, error) {
	var holder common.Address
	found, err := a.state.GetStorage(a.addr, a.key(c), &holder)
	if err != nil {
		return common.Address{}, false, err
	}
	return holder, found, nil
}

// SetHolder assigns the given capability to addr.
func (a *Authority) SetHolder(c Capability, addr common.Address) error {
	return a.state.SetStorage(a.addr, a.key(c), addr)
}

// Check returns nil iff caller holds the given capability.
func (a *Authority) Check(caller common.Address, c Capability) error {
	holder, found, err := a.Holder(c)
	if err != nil {
		return err
	}
	if !found || holder != caller {
		return ErrUnauthorized
	}
	return nil
}

// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events defines the notification sink the accounting core
// emits to. Emission is fire-and-forget; ordering within one operation
// is call order.
package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event names emitted by the minter.
const (
	NameMintRequested           = "MintRequested"
	NameBatchProcessed          = "BatchProcessed"
	NameLiquidCurrencyClaimed   = "LiquidCurrencyClaimed"
	NameStashDestinationUpdated = "StashDestinationUpdated"
)

// Event is one notification record.
type Event struct {
	Name    string
	Batch   uint32
	Account *common.Address
	Amounts []*big.Int
}

// Sink is an append-only event emission target. Emit never fails.
type Sink interface {
	Emit(ev *Event)
}

// MemSink collects emitted events in order, mainly for tests.
type MemSink struct {
	events []*Event
}

func (s *MemSink) Emit(ev *Event) {
	s.events = append(s.events, ev)
}

// Events returns all collected events in emission order.
func (s *MemSink) Events() []*Event {
	return s.events
}

// Reset drops all collected events.
func (s *MemSink) Reset() {
	s.events = nil
}

// MintRequested builds the event recording a commit of amount by user
// into the open batch.
func MintRequested(batch uint32, user common.Address, amount *big.Int) *Event {
	return &Event{
		Name:    NameMintRequested,
		Batch:   batch,
		Account: &user,
		Amounts: []*big.Int{amount},
	}
}

// BatchProcessed builds the event recording a batch close with its
// issuance snapshot.
func BatchProcessed(batch uint32, stakingTotal, liquidTotal *big.Int) *Event {
	return &Event{
		Name:    NameBatchProcessed,
		Batch:   batch,
		Amounts: []*big.Int{stakingTotal, liquidTotal},
	}
}

// LiquidCurrencyClaimed builds the event recording a redemption.
func LiquidCurrencyClaimed(batch uint32, user common.Address, amount *big.Int) *Event {
	return &Event{
		Name:    NameLiquidCurrencyClaimed,
		Batch:   batch,
		Account: &user,
		Amounts: []*big.Int{amount},
	}
}

// StashDestinationUpdated builds the event recording a stash change.
func StashDestinationUpdated(newAccount common.Address) *Event {
	return &Event{
		Name:    NameStashDestinationUpdated,
		Account: &newAccount,
	}
}

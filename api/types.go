// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// CommitRequest is the body of POST /minter/commit.
type CommitRequest struct {
	Caller common.Address        `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// CloseRequest is the body of POST /minter/close.
type CloseRequest struct {
	Caller       common.Address        `json:"caller"`
	StakingTotal *math.HexOrDecimal256 `json:"stakingTotal"`
}

// RedeemRequest is the body of POST /minter/redeem.
type RedeemRequest struct {
	Who   common.Address `json:"who"`
	Batch uint32         `json:"batch"`
}

// StashRequest is the body of POST /minter/stash.
type StashRequest struct {
	Caller     common.Address `json:"caller"`
	NewAccount common.Address `json:"newAccount"`
}

// CommitResponse reports the batch a commit landed in.
type CommitResponse struct {
	Batch uint32 `json:"batch"`
}

// CloseResponse reports the snapshot fixed for the closed batch.
type CloseResponse struct {
	ClosedBatch  uint32                `json:"closedBatch"`
	StakingTotal *math.HexOrDecimal256 `json:"stakingTotal"`
	LiquidTotal  *math.HexOrDecimal256 `json:"liquidTotal"`
}

// RedeemResponse reports the amount of liquid currency minted.
type RedeemResponse struct {
	Batch  uint32                `json:"batch"`
	Minted *math.HexOrDecimal256 `json:"minted"`
}

// PendingResponse is the payload of GET /minter/pending/{batch}/{address}.
type PendingResponse struct {
	Batch   uint32                `json:"batch"`
	Address common.Address        `json:"address"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

// BatchResponse is the payload of GET /minter/batches/{batch}.
// StakingTotal and LiquidTotal are only present for closed batches.
type BatchResponse struct {
	Batch        uint32                `json:"batch"`
	Closed       bool                  `json:"closed"`
	StakingTotal *math.HexOrDecimal256 `json:"stakingTotal,omitempty"`
	LiquidTotal  *math.HexOrDecimal256 `json:"liquidTotal,omitempty"`
}

// BalanceResponse is the payload of GET /ledger/{asset}/{address}.
type BalanceResponse struct {
	Asset   string                `json:"asset"`
	Address common.Address        `json:"address"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

// IssuanceResponse is the payload of GET /ledger/{asset}/issuance.
type IssuanceResponse struct {
	Asset         string                `json:"asset"`
	TotalIssuance *math.HexOrDecimal256 `json:"totalIssuance"`
}

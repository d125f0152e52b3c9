// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ekmixon/batchmint/kv"
)

// Account is the persistent record of an account.
// It holds the balances of both assets managed by the currency ledger.
type Account struct {
	Staking *big.Int
	Liquid  *big.Int
}

// IsEmpty returns if an account is empty.
// An empty account is not committed to storage.
func (a *Account) IsEmpty() bool {
	return a.Staking.Sign() == 0 && a.Liquid.Sign() == 0
}

func emptyAccount() *Account {
	return &Account{Staking: &big.Int{}, Liquid: &big.Int{}}
}

// loadAccount loads an account by address from the kv store.
// An empty account is returned if the address is unknown.
func loadAccount(db kv.Getter, key []byte) (*Account, error) {
	data, err := db.Get(key)
	if err != nil {
		if db.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the persistent world state: per-account asset
// balances plus structured storage entries, with checkpoint/revert
// revisions so that each operation applies atomically or not at all.
package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ekmixon/batchmint/kv"
	"github.com/ekmixon/batchmint/stackedmap"
)

const (
	accountPrefix = "a"
	storagePrefix = "s"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// State manages the world state.
type State struct {
	db kv.GetPutter
	sm *stackedmap.StackedMap // keeps uncommitted revisions of the state
}

// New creates a state object backed by the given kv store.
func New(db kv.GetPutter) *State {
	state := State{db: db}
	state.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return state.srcGetter(key)
	})
	// the base level holds uncommitted writes and is never popped
	state.sm.Push()
	return &state
}

type storageKey struct {
	addr common.Address
	key  common.Hash
}

func accountDBKey(addr common.Address) []byte {
	return append([]byte(accountPrefix), addr.Bytes()...)
}

func storageDBKey(addr common.Address, key common.Hash) []byte {
	k := append([]byte(storagePrefix), addr.Bytes()...)
	return append(k, key.Bytes()...)
}

// srcGetter implements stackedmap.MapGetter, sourcing values from the kv store.
func (s *State) srcGetter(key interface{}) (interface{}, bool, error) {
	switch k := key.(type) {
	case common.Address: // get account
		acc, err := loadAccount(s.db, accountDBKey(k))
		if err != nil {
			return nil, false, err
		}
		return acc, true, nil
	case storageKey: // get raw storage
		data, err := s.db.Get(storageDBKey(k.addr, k.key))
		if err != nil {
			if s.db.IsNotFound(err) {
				return rlp.RawValue(nil), true, nil
			}
			return nil, false, err
		}
		return rlp.RawValue(data), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// getAccount gets the account by address. The returned account must not be modified.
func (s *State) getAccount(addr common.Address) (*Account, error) {
	v, _, err := s.sm.Get(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return v.(*Account), nil
}

// getAccountCopy gets a copy of the account by address.
func (s *State) getAccountCopy(addr common.Address) (Account, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return Account{}, err
	}
	return *acc, nil
}

func (s *State) updateAccount(addr common.Address, acc *Account) {
	s.sm.Put(addr, acc)
}

// GetBalance returns the staking asset balance for the given address.
func (s *State) GetBalance(addr common.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Staking, nil
}

// SetBalance sets the staking asset balance for the given address.
func (s *State) SetBalance(addr common.Address, balance *big.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return err
	}
	cpy.Staking = balance
	s.updateAccount(addr, &cpy)
	return nil
}

// GetLiquid returns the liquid asset balance for the given address.
func (s *State) GetLiquid(addr common.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Liquid, nil
}

// SetLiquid sets the liquid asset balance for the given address.
func (s *State) SetLiquid(addr common.Address, balance *big.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return err
	}
	cpy.Liquid = balance
	s.updateAccount(addr, &cpy)
	return nil
}

// GetRawStorage returns the storage value in rlp raw for the given address and key.
func (s *State) GetRawStorage(addr common.Address, key common.Hash) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage sets the storage value in rlp raw. Nil raw deletes the entry.
func (s *State) SetRawStorage(addr common.Address, key common.Hash, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage gets and decodes the structured storage value at (addr, key) into val.
// It returns false and leaves val untouched if the entry is absent.
func (s *State) GetStorage(addr common.Address, key common.Hash, val interface{}) (bool, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(raw, val); err != nil {
		return false, &Error{err}
	}
	return true, nil
}

// SetStorage encodes val and stores it at (addr, key).
func (s *State) SetStorage(addr common.Address, key common.Hash, val interface{}) error {
	raw, err := rlp.EncodeToBytes(val)
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DeleteStorage removes the entry at (addr, key).
func (s *State) DeleteStorage(addr common.Address, key common.Hash) {
	s.SetRawStorage(addr, key, nil)
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns the revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts to the checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit flushes all uncommitted writes into the kv store through one
// atomic batch, then resets the revision stack.
func (s *State) Commit() error {
	accounts := make(map[common.Address]*Account)
	storages := make(map[storageKey]rlp.RawValue)

	s.sm.Journal(func(k, v interface{}) bool {
		switch key := k.(type) {
		case common.Address:
			accounts[key] = v.(*Account)
		case storageKey:
			storages[key] = v.(rlp.RawValue)
		}
		return true
	})

	batch := s.db.NewBatch()
	for addr, acc := range accounts {
		if acc.IsEmpty() {
			if err := batch.Delete(accountDBKey(addr)); err != nil {
				return &Error{err}
			}
			continue
		}
		data, err := rlp.EncodeToBytes(acc)
		if err != nil {
			return &Error{err}
		}
		if err := batch.Put(accountDBKey(addr), data); err != nil {
			return &Error{err}
		}
	}
	for key, raw := range storages {
		if len(raw) == 0 {
			if err := batch.Delete(storageDBKey(key.addr, key.key)); err != nil {
				return &Error{err}
			}
			continue
		}
		if err := batch.Put(storageDBKey(key.addr, key.key), raw); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	s.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return s.srcGetter(key)
	})
	s.sm.Push()
	return nil
}

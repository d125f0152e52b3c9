// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/ekmixon/batchmint/kv"
)

func TestStateBalances(t *testing.T) {
	db, _ := kv.NewMem()
	st := New(db)

	addr := common.BytesToAddress([]byte("a1"))

	bal, err := st.GetBalance(addr)
	assert.Nil(t, err)
	assert.Equal(t, &big.Int{}, bal)

	assert.Nil(t, st.SetBalance(addr, big.NewInt(10)))
	assert.Nil(t, st.SetLiquid(addr, big.NewInt(20)))

	bal, _ = st.GetBalance(addr)
	assert.Equal(t, big.NewInt(10), bal)
	liq, _ := st.GetLiquid(addr)
	assert.Equal(t, big.NewInt(20), liq)
}

func TestStateStorage(t *testing.T) {
	db, _ := kv.NewMem()
	st := New(db)

	addr := common.BytesToAddress([]byte("c1"))
	key := common.BytesToHash([]byte("k1"))

	var v uint32
	found, err := st.GetStorage(addr, key, &v)
	assert.Nil(t, err)
	assert.False(t, found)

	assert.Nil(t, st.SetStorage(addr, key, uint32(42)))
	found, err = st.GetStorage(addr, key, &v)
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, uint32(42), v)

	st.DeleteStorage(addr, key)
	found, _ = st.GetStorage(addr, key, &v)
	assert.False(t, found)
}

func TestStateRevert(t *testing.T) {
	db, _ := kv.NewMem()
	st := New(db)

	addr := common.BytesToAddress([]byte("a1"))
	key := common.BytesToHash([]byte("k1"))

	st.SetBalance(addr, big.NewInt(1))

	cp := st.NewCheckpoint()
	st.SetBalance(addr, big.NewInt(100))
	st.SetStorage(addr, key, uint32(7))
	st.RevertTo(cp)

	bal, _ := st.GetBalance(addr)
	assert.Equal(t, big.NewInt(1), bal)

	var v uint32
	found, _ := st.GetStorage(addr, key, &v)
	assert.False(t, found)
}

func TestStateCommit(t *testing.T) {
	db, _ := kv.NewMem()
	st := New(db)

	addr := common.BytesToAddress([]byte("a1"))
	key := common.BytesToHash([]byte("k1"))

	st.SetBalance(addr, big.NewInt(5))
	st.SetStorage(addr, key, big.NewInt(9))
	assert.Nil(t, st.Commit())

	// a fresh state over the same db sees the committed values
	st2 := New(db)
	bal, _ := st2.GetBalance(addr)
	assert.Equal(t, big.NewInt(5), bal)

	var v big.Int
	found, _ := st2.GetStorage(addr, key, &v)
	assert.True(t, found)
	assert.Equal(t, big.NewInt(9), &v)
}

func TestStateCommitDropsEmptyAccount(t *testing.T) {
	db, _ := kv.NewMem()
	st := New(db)

	addr := common.BytesToAddress([]byte("a1"))
	st.SetBalance(addr, big.NewInt(5))
	assert.Nil(t, st.Commit())

	st.SetBalance(addr, &big.Int{})
	assert.Nil(t, st.Commit())

	has, _ := db.Has(append([]byte("a"), addr.Bytes()...))
	assert.False(t, has)
}

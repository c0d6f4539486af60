// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package recorddb

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstake/lockstake/ledger"
	"github.com/lockstake/lockstake/lockstake"
)

var (
	alice = lockstake.BytesToAddress([]byte("alice"))
	bob   = lockstake.BytesToAddress([]byte("bob"))
)

func newDB(t *testing.T) *RecordDB {
	t.Helper()
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestInsertAndQuery(t *testing.T) {
	db := newDB(t)

	require.NoError(t, db.Insert(100, &ledger.StakeRecord{
		Participant: alice,
		StakedAt:    0,
		PeriodCode:  6,
		Amount:      big.NewInt(1000),
		NewTotal:    big.NewInt(1000),
	}))
	require.NoError(t, db.Insert(200, &ledger.HarvestRecord{
		Participant: alice,
		Periods:     2,
		Amount:      big.NewInt(10),
	}))
	require.NoError(t, db.Insert(300, &ledger.WithdrawRecord{
		Participant: bob,
		Amount:      big.NewInt(500),
	}))

	all, err := db.Query(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(100), all[0].CreatedAt)
	assert.Equal(t, ledger.KindStake, all[0].Kind)

	var stake ledger.StakeRecord
	require.NoError(t, json.Unmarshal(all[0].Payload, &stake))
	assert.Equal(t, alice, stake.Participant)
	assert.Equal(t, int64(1000), stake.Amount.Int64())
}

func TestQueryFilters(t *testing.T) {
	db := newDB(t)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, db.Insert(uint64(i), &ledger.HarvestRecord{
			Participant: alice,
			Periods:     1,
			Amount:      big.NewInt(i),
		}))
	}
	require.NoError(t, db.Insert(6, &ledger.WithdrawRecord{
		Participant: bob,
		Amount:      big.NewInt(9),
	}))

	byAccount, err := db.Query(context.Background(), &Filter{Account: &bob})
	require.NoError(t, err)
	require.Len(t, byAccount, 1)
	assert.Equal(t, ledger.KindWithdraw, byAccount[0].Kind)

	byKind, err := db.Query(context.Background(), &Filter{Kind: ledger.KindHarvest})
	require.NoError(t, err)
	assert.Len(t, byKind, 5)

	paged, err := db.Query(context.Background(), &Filter{
		Account: &alice,
		Order:   DESC,
		Offset:  1,
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Greater(t, paged[0].Seq, paged[1].Seq)
	assert.Equal(t, uint64(4), paged[0].CreatedAt)
}

func TestSinkDelivers(t *testing.T) {
	db := newDB(t)

	db.Sink().Deliver(&ledger.RewardPoolRecord{
		Funder:     alice,
		Amount:     big.NewInt(7),
		NewBalance: big.NewInt(7),
	})

	all, err := db.Query(context.Background(), &Filter{Kind: ledger.KindRewardPoolUpdated})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, alice, all[0].Account)
}

// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstake/lockstake/bank"
	"github.com/lockstake/lockstake/kv"
	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/state"
)

func newBank() *bank.Bank {
	st := state.New(kv.NewMem())
	return bank.New(lockstake.BytesToAddress([]byte("bank")), st)
}

func TestBankMintAndBalance(t *testing.T) {
	b := newBank()
	alice := lockstake.BytesToAddress([]byte("alice"))

	bal, err := b.Balance(lockstake.AssetPrincipal, alice)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	require.NoError(t, b.Mint(lockstake.AssetPrincipal, alice, big.NewInt(100)))
	bal, err = b.Balance(lockstake.AssetPrincipal, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal.Int64())

	// assets are independent
	bal, err = b.Balance(lockstake.AssetReward, alice)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())
}

func TestBankTransfer(t *testing.T) {
	b := newBank()
	alice := lockstake.BytesToAddress([]byte("alice"))
	bob := lockstake.BytesToAddress([]byte("bob"))

	require.NoError(t, b.Mint(lockstake.AssetPrincipal, alice, big.NewInt(100)))
	require.NoError(t, b.Transfer(lockstake.AssetPrincipal, alice, bob, big.NewInt(30)))

	aliceBal, _ := b.Balance(lockstake.AssetPrincipal, alice)
	bobBal, _ := b.Balance(lockstake.AssetPrincipal, bob)
	assert.Equal(t, int64(70), aliceBal.Int64())
	assert.Equal(t, int64(30), bobBal.Int64())
}

func TestBankTransferInsufficient(t *testing.T) {
	b := newBank()
	alice := lockstake.BytesToAddress([]byte("alice"))
	bob := lockstake.BytesToAddress([]byte("bob"))

	require.NoError(t, b.Mint(lockstake.AssetPrincipal, alice, big.NewInt(10)))

	err := b.Transfer(lockstake.AssetPrincipal, alice, bob, big.NewInt(11))
	assert.ErrorIs(t, err, bank.ErrInsufficientBalance)

	// balances untouched
	aliceBal, _ := b.Balance(lockstake.AssetPrincipal, alice)
	bobBal, _ := b.Balance(lockstake.AssetPrincipal, bob)
	assert.Equal(t, int64(10), aliceBal.Int64())
	assert.Zero(t, bobBal.Sign())
}

// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/state"
)

// ErrInsufficientBalance is returned when a transfer exceeds the sender's balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Bank keeps per-asset account balances and moves value between accounts.
// It lives in the same state as the ledger, so a reverted operation also
// reverts any transfers it issued.
type Bank struct {
	addr  lockstake.Address
	state *state.State
}

// New creates a bank instance rooted at addr's storage space.
func New(addr lockstake.Address, state *state.State) *Bank {
	return &Bank{addr, state}
}

func balanceKey(asset lockstake.Asset, owner lockstake.Address) lockstake.Bytes32 {
	return lockstake.Blake2b(asset.Bytes(), owner.Bytes())
}

// Balance returns the balance of owner in the given asset.
func (b *Bank) Balance(asset lockstake.Asset, owner lockstake.Address) (*big.Int, error) {
	bal := new(big.Int)
	if err := b.state.GetStructuredStorage(b.addr, balanceKey(asset, owner), bal); err != nil {
		return nil, errors.Wrap(err, "get balance")
	}
	return bal, nil
}

func (b *Bank) setBalance(asset lockstake.Asset, owner lockstake.Address, bal *big.Int) error {
	key := balanceKey(asset, owner)
	if bal.Sign() == 0 {
		b.state.SetRawStorage(b.addr, key, nil)
		return nil
	}
	return b.state.SetStructuredStorage(b.addr, key, bal)
}

// Mint credits owner with amount out of thin air. Used by genesis prefunding.
func (b *Bank) Mint(asset lockstake.Asset, owner lockstake.Address, amount *big.Int) error {
	bal, err := b.Balance(asset, owner)
	if err != nil {
		return err
	}
	return b.setBalance(asset, owner, bal.Add(bal, amount))
}

// Transfer moves amount of asset from one account to another.
// It fails with ErrInsufficientBalance without touching either balance
// if the sender cannot cover the amount.
func (b *Bank) Transfer(asset lockstake.Asset, from, to lockstake.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	fromBal, err := b.Balance(asset, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBal, err := b.Balance(asset, to)
	if err != nil {
		return err
	}
	if err := b.setBalance(asset, from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	return b.setBalance(asset, to, toBal.Add(toBal, amount))
}

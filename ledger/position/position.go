// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/state"
)

// Position is a participant's single locked-principal record.
// A zero Amount means the position is logically empty regardless of the
// other fields.
type Position struct {
	Amount      *big.Int
	StartedAt   uint64
	PeriodCode  uint32
	ActiveUntil uint64
}

var (
	_ state.StorageEncoder = (*Position)(nil)
	_ state.StorageDecoder = (*Position)(nil)
)

// Encode implements state.StorageEncoder.
func (p *Position) Encode() ([]byte, error) {
	if p.IsEmpty() && p.StartedAt == 0 && p.PeriodCode == 0 && p.ActiveUntil == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(p)
}

// Decode implements state.StorageDecoder.
func (p *Position) Decode(raw []byte) error {
	if len(raw) == 0 {
		*p = Position{Amount: &big.Int{}}
		return nil
	}
	return rlp.DecodeBytes(raw, p)
}

// IsEmpty returns whether the position holds no principal.
func (p *Position) IsEmpty() bool {
	return p.Amount == nil || p.Amount.Sign() == 0
}

// PeriodDays returns the configured lock length in whole days.
func (p *Position) PeriodDays() uint64 {
	if p.ActiveUntil < p.StartedAt {
		return 0
	}
	return (p.ActiveUntil - p.StartedAt) / lockstake.RewardPeriod
}

// Matured returns whether the lock has passed its maturity instant.
func (p *Position) Matured(now uint64) bool {
	return p.ActiveUntil < now
}

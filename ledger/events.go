// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/lockstake/lockstake/lockstake"
)

// Record kinds.
const (
	KindStake             = "stake"
	KindWithdraw          = "withdraw"
	KindHarvest           = "harvest"
	KindRewardPoolUpdated = "reward_pool_updated"
)

// Record is a fact about a committed operation. Records are delivered to
// sinks only after the state change is durable.
type Record interface {
	Kind() string
	Account() lockstake.Address
}

// Sink receives records of committed operations.
type Sink interface {
	Deliver(Record)
}

// StakeRecord reports a position create, top-up or prolongation
// (a prolongation carries a zero Amount).
type StakeRecord struct {
	Participant lockstake.Address `json:"participant"`
	StakedAt    uint64            `json:"stakedAt"`
	PeriodCode  uint32            `json:"periodCode"`
	Amount      *big.Int          `json:"amount"`
	NewTotal    *big.Int          `json:"newTotal"`
}

func (r *StakeRecord) Kind() string               { return KindStake }
func (r *StakeRecord) Account() lockstake.Address { return r.Participant }

// WithdrawRecord reports a full principal withdrawal.
type WithdrawRecord struct {
	Participant lockstake.Address `json:"participant"`
	Amount      *big.Int          `json:"amount"`
	IsEarly     bool              `json:"isEarly"`
}

func (r *WithdrawRecord) Kind() string               { return KindWithdraw }
func (r *WithdrawRecord) Account() lockstake.Address { return r.Participant }

// HarvestRecord reports a reward settlement.
type HarvestRecord struct {
	Participant lockstake.Address `json:"participant"`
	Periods     uint32            `json:"periods"`
	Amount      *big.Int          `json:"amount"`
}

func (r *HarvestRecord) Kind() string               { return KindHarvest }
func (r *HarvestRecord) Account() lockstake.Address { return r.Participant }

// RewardPoolRecord reports a reward pool top-up.
type RewardPoolRecord struct {
	Funder     lockstake.Address `json:"funder"`
	Amount     *big.Int          `json:"amount"`
	NewBalance *big.Int          `json:"newBalance"`
}

func (r *RewardPoolRecord) Kind() string               { return KindRewardPoolUpdated }
func (r *RewardPoolRecord) Account() lockstake.Address { return r.Funder }

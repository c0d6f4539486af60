// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lockstake/lockstake/ledger"
	"github.com/lockstake/lockstake/lockstake"
)

// StakeRequest is the body of a stake call.
type StakeRequest struct {
	PeriodCode uint32                `json:"periodCode"`
	Amount     *math.HexOrDecimal256 `json:"amount"`
}

// ProlongRequest is the body of a prolong call.
type ProlongRequest struct {
	PeriodCode uint32 `json:"periodCode"`
}

// FundRequest is the body of a reward pool funding call.
type FundRequest struct {
	Funder lockstake.Address     `json:"funder"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// StakeInfo is the response view of a position.
type StakeInfo struct {
	Amount            *math.HexOrDecimal256 `json:"amount"`
	StartedAt         uint64                `json:"startedAt"`
	PeriodCode        uint32                `json:"periodCode"`
	ActiveUntil       uint64                `json:"activeUntil"`
	PendingPeriods    uint32                `json:"pendingPeriods"`
	PendingReward     *math.HexOrDecimal256 `json:"pendingReward"`
	NextRewardInstant uint64                `json:"nextRewardInstant"`
}

func convertStakeInfo(info *ledger.StakeInfo) *StakeInfo {
	return &StakeInfo{
		Amount:            (*math.HexOrDecimal256)(info.Amount),
		StartedAt:         info.StartedAt,
		PeriodCode:        info.PeriodCode,
		ActiveUntil:       info.ActiveUntil,
		PendingPeriods:    info.PendingPeriods,
		PendingReward:     (*math.HexOrDecimal256)(info.PendingReward),
		NextRewardInstant: info.NextRewardInstant,
	}
}

// Rewards is the response view of pending accrual.
type Rewards struct {
	AvailableRewards  *math.HexOrDecimal256 `json:"availableRewards"`
	PassedPeriods     uint32                `json:"passedPeriods"`
	NextRewardDate    uint64                `json:"nextRewardDate"`
	StakingPeriodDays uint64                `json:"stakingPeriodDays"`
}

// PoolInfo is the response view of the pool singleton.
type PoolInfo struct {
	TotalStaked      *math.HexOrDecimal256 `json:"totalStaked"`
	RewardsBalance   *math.HexOrDecimal256 `json:"rewardsBalance"`
	RewardRate       uint64                `json:"rewardRate"`
	EarlyWithdrawFee uint64                `json:"earlyWithdrawFee"`
	ConversionRate   uint64                `json:"conversionRate"`
	AvailablePeriods []uint32              `json:"availablePeriods"`
}

func convertPoolInfo(info *ledger.PoolInfo) *PoolInfo {
	return &PoolInfo{
		TotalStaked:      (*math.HexOrDecimal256)(info.TotalStaked),
		RewardsBalance:   (*math.HexOrDecimal256)(info.RewardsBalance),
		RewardRate:       info.RewardRate,
		EarlyWithdrawFee: info.EarlyWithdrawFee,
		ConversionRate:   info.ConversionRate,
		AvailablePeriods: info.AvailablePeriods,
	}
}

func amountValue(amount *math.HexOrDecimal256) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	return (*big.Int)(amount)
}

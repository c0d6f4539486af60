// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/lockstake/lockstake/ledger/reverts"
	"github.com/lockstake/lockstake/lockstake"
)

// StakeInfo is the full view of a participant's position.
type StakeInfo struct {
	Amount            *big.Int `json:"amount"`
	StartedAt         uint64   `json:"startedAt"`
	PeriodCode        uint32   `json:"periodCode"`
	ActiveUntil       uint64   `json:"activeUntil"`
	PendingPeriods    uint32   `json:"pendingPeriods"`
	PendingReward     *big.Int `json:"pendingReward"`
	NextRewardInstant uint64   `json:"nextRewardInstant"`
}

// PoolInfo is the view of the pool singleton.
type PoolInfo struct {
	TotalStaked      *big.Int `json:"totalStaked"`
	RewardsBalance   *big.Int `json:"rewardsBalance"`
	RewardRate       uint64   `json:"rewardRate"`
	EarlyWithdrawFee uint64   `json:"earlyWithdrawFee"`
	ConversionRate   uint64   `json:"conversionRate"`
	AvailablePeriods []uint32 `json:"availablePeriods"`
}

// StakingPeriodDays returns the configured lock length of the staker's
// position in whole days.
func (l *Ledger) StakingPeriodDays(staker lockstake.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, err := l.positions.Get(staker)
	if err != nil {
		return 0, err
	}
	if pos.IsEmpty() {
		return 0, reverts.ErrNoActiveStake
	}
	return pos.PeriodDays(), nil
}

// AvailableRewards returns the reward pending settlement at the given
// instant. A staker without a position gets zero, not an error.
func (l *Ledger) AvailableRewards(staker lockstake.Address, now uint64) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rate, err := l.pool.RewardRate()
	if err != nil {
		return nil, err
	}
	_, reward, err := l.positions.RewardAmount(staker, now, rate)
	return reward, err
}

// PassedRewardPeriods returns the whole reward periods pending
// settlement at the given instant.
func (l *Ledger) PassedRewardPeriods(staker lockstake.Address, now uint64) (uint32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rate, err := l.pool.RewardRate()
	if err != nil {
		return 0, err
	}
	periods, _, err := l.positions.RewardAmount(staker, now, rate)
	return periods, err
}

// NextRewardDate returns the instant completing the staker's next reward
// period, or 0 when the staker never settled rewards.
func (l *Ledger) NextRewardDate(staker lockstake.Address, now uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.positions.NextRewardInstant(staker, now)
}

// AllStakeInfo returns the full position view of the staker.
func (l *Ledger) AllStakeInfo(staker lockstake.Address, now uint64) (*StakeInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, err := l.positions.Get(staker)
	if err != nil {
		return nil, err
	}
	if pos.IsEmpty() {
		return nil, reverts.ErrNoActiveStake
	}
	rate, err := l.pool.RewardRate()
	if err != nil {
		return nil, err
	}
	periods, reward, err := l.positions.RewardAmount(staker, now, rate)
	if err != nil {
		return nil, err
	}
	next, err := l.positions.NextRewardInstant(staker, now)
	if err != nil {
		return nil, err
	}
	return &StakeInfo{
		Amount:            pos.Amount,
		StartedAt:         pos.StartedAt,
		PeriodCode:        pos.PeriodCode,
		ActiveUntil:       pos.ActiveUntil,
		PendingPeriods:    periods,
		PendingReward:     reward,
		NextRewardInstant: next,
	}, nil
}

// PoolInfo returns the pool view.
func (l *Ledger) PoolInfo() (*PoolInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	total, err := l.pool.TotalStaked()
	if err != nil {
		return nil, err
	}
	rewards, err := l.pool.RewardsBalance()
	if err != nil {
		return nil, err
	}
	rate, err := l.pool.RewardRate()
	if err != nil {
		return nil, err
	}
	fee, err := l.pool.EarlyWithdrawFee()
	if err != nil {
		return nil, err
	}
	conv, err := l.pool.ConversionRate()
	if err != nil {
		return nil, err
	}
	periods, err := l.pool.AvailablePeriods()
	if err != nil {
		return nil, err
	}
	return &PoolInfo{
		TotalStaked:      total,
		RewardsBalance:   rewards,
		RewardRate:       rate,
		EarlyWithdrawFee: fee,
		ConversionRate:   conv,
		AvailablePeriods: periods,
	}, nil
}

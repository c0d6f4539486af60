// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"

	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/state"
)

// Service exposes position reads/writes and the reward accrual math.
//
// The reward clock of a participant is the instant up to which rewards
// have been settled. An absent clock reads as instant 0, so a position's
// first settlement accrues from the epoch origin.
type Service struct {
	repo *Storage
}

func New(st *state.State, addr lockstake.Address) *Service {
	return &Service{repo: NewStorage(st, addr)}
}

// Get returns the position of owner. A never-staked owner yields an
// empty position, not an error.
func (s *Service) Get(owner lockstake.Address) (*Position, error) {
	return s.repo.getPosition(owner)
}

// Set stores the position of owner.
func (s *Service) Set(owner lockstake.Address, pos *Position) error {
	return s.repo.setPosition(owner, pos)
}

// LastClaim returns the reward clock of owner and whether one was ever
// recorded.
func (s *Service) LastClaim(owner lockstake.Address) (uint64, bool, error) {
	return s.repo.getClaim(owner)
}

// AdvanceClaim moves the reward clock of owner forward by the given
// number of whole reward periods.
func (s *Service) AdvanceClaim(owner lockstake.Address, periods uint32) error {
	last, _, err := s.repo.getClaim(owner)
	if err != nil {
		return err
	}
	return s.repo.setClaim(owner, last+uint64(periods)*lockstake.RewardPeriod)
}

// RewardAmount computes the whole reward periods elapsed since the
// owner's reward clock and the reward they entitle to, at the given
// per-period rate. Accrual stops at the position's maturity instant.
// An empty position accrues nothing.
func (s *Service) RewardAmount(owner lockstake.Address, now uint64, rate uint64) (uint32, *big.Int, error) {
	pos, err := s.repo.getPosition(owner)
	if err != nil {
		return 0, nil, err
	}
	if pos.IsEmpty() {
		return 0, new(big.Int), nil
	}

	effective := now
	if effective > pos.ActiveUntil {
		effective = pos.ActiveUntil
	}
	last, _, err := s.repo.getClaim(owner)
	if err != nil {
		return 0, nil, err
	}
	if effective <= last {
		return 0, new(big.Int), nil
	}
	periods := (effective - last) / lockstake.RewardPeriod
	if periods == 0 {
		return 0, new(big.Int), nil
	}

	// amount * rate * periods * 100 / 36000
	reward := new(big.Int).Set(pos.Amount)
	reward.Mul(reward, new(big.Int).SetUint64(rate))
	reward.Mul(reward, new(big.Int).SetUint64(periods))
	reward.Mul(reward, new(big.Int).SetUint64(lockstake.RewardRateMul))
	reward.Div(reward, new(big.Int).SetUint64(lockstake.RewardRateDiv))
	return uint32(periods), reward, nil
}

// NextRewardInstant returns the instant at which the owner's next reward
// period completes, or 0 when the owner never settled rewards or holds
// no position. Past maturity, the maturity instant itself is returned.
func (s *Service) NextRewardInstant(owner lockstake.Address, now uint64) (uint64, error) {
	_, found, err := s.repo.getClaim(owner)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	pos, err := s.repo.getPosition(owner)
	if err != nil {
		return 0, err
	}
	if pos.IsEmpty() {
		return 0, nil
	}
	if now > pos.ActiveUntil {
		return pos.ActiveUntil, nil
	}
	if now < pos.StartedAt {
		return pos.StartedAt + lockstake.RewardPeriod, nil
	}
	elapsed := (now - pos.StartedAt) / lockstake.RewardPeriod
	return pos.StartedAt + (elapsed+1)*lockstake.RewardPeriod, nil
}

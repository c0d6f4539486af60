// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/state"
)

// Config holds the pool parameters set at initialization.
type Config struct {
	RewardRate       uint64
	EarlyWithdrawFee uint64
	ConversionRate   uint64
	AvailablePeriods []uint32
}

// DefaultConfig returns the protocol default parameters.
func DefaultConfig() Config {
	return Config{
		RewardRate:       lockstake.DefaultRewardRate,
		EarlyWithdrawFee: lockstake.DefaultEarlyWithdrawFee,
		ConversionRate:   lockstake.DefaultConversionRate,
		AvailablePeriods: append([]uint32(nil), lockstake.DefaultAvailablePeriods...),
	}
}

// Service manages the pool singleton: aggregate principal, the reward
// balance and the immutable-after-init parameters.
type Service struct {
	repo storage
}

func New(st *state.State, addr lockstake.Address) *Service {
	return &Service{repo: storage{state: st, addr: addr}}
}

// Initialized reports whether Init already ran against this state.
func (s *Service) Initialized() (bool, error) {
	v, err := s.repo.getUint64(slotInitialized)
	return v != 0, err
}

// Init stores the pool parameters. It is a no-op when the pool was
// already initialized, so restarts keep the original parameters.
func (s *Service) Init(cfg Config) error {
	done, err := s.Initialized()
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	if len(cfg.AvailablePeriods) == 0 {
		return errors.New("no available periods configured")
	}
	if err := s.repo.setUint64(slotRewardRate, cfg.RewardRate); err != nil {
		return err
	}
	if err := s.repo.setUint64(slotEarlyWithdrawFee, cfg.EarlyWithdrawFee); err != nil {
		return err
	}
	if err := s.repo.setUint64(slotConversionRate, cfg.ConversionRate); err != nil {
		return err
	}
	if err := s.repo.setPeriods(cfg.AvailablePeriods); err != nil {
		return err
	}
	return s.repo.setUint64(slotInitialized, 1)
}

func (s *Service) TotalStaked() (*big.Int, error) {
	return s.repo.getBig(slotTotalStaked)
}

// AddTotalStaked applies a signed delta to the aggregate principal.
func (s *Service) AddTotalStaked(delta *big.Int) error {
	total, err := s.repo.getBig(slotTotalStaked)
	if err != nil {
		return err
	}
	total.Add(total, delta)
	if total.Sign() < 0 {
		return errors.New("total staked underflow")
	}
	return s.repo.setBig(slotTotalStaked, total)
}

func (s *Service) RewardsBalance() (*big.Int, error) {
	return s.repo.getBig(slotRewardsBalance)
}

// CreditRewards grows the reward balance.
func (s *Service) CreditRewards(amount *big.Int) error {
	bal, err := s.repo.getBig(slotRewardsBalance)
	if err != nil {
		return err
	}
	bal.Add(bal, amount)
	return s.repo.setBig(slotRewardsBalance, bal)
}

// DebitRewards shrinks the reward balance. It returns false, leaving the
// balance untouched, when it does not cover the amount.
func (s *Service) DebitRewards(amount *big.Int) (bool, error) {
	bal, err := s.repo.getBig(slotRewardsBalance)
	if err != nil {
		return false, err
	}
	if bal.Cmp(amount) < 0 {
		return false, nil
	}
	bal.Sub(bal, amount)
	if err := s.repo.setBig(slotRewardsBalance, bal); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) RewardRate() (uint64, error) {
	return s.repo.getUint64(slotRewardRate)
}

func (s *Service) EarlyWithdrawFee() (uint64, error) {
	return s.repo.getUint64(slotEarlyWithdrawFee)
}

func (s *Service) ConversionRate() (uint64, error) {
	return s.repo.getUint64(slotConversionRate)
}

func (s *Service) AvailablePeriods() ([]uint32, error) {
	return s.repo.getPeriods()
}

// IsPeriodAvailable reports whether the period code is accepted for
// new or refreshed locks.
func (s *Service) IsPeriodAvailable(code uint32) (bool, error) {
	periods, err := s.repo.getPeriods()
	if err != nil {
		return false, err
	}
	for _, p := range periods {
		if p == code {
			return true, nil
		}
	}
	return false, nil
}

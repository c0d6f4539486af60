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

// Singleton slots of the pool.
var (
	slotInitialized      = lockstake.BytesToBytes32([]byte("pool-initialized"))
	slotTotalStaked      = lockstake.BytesToBytes32([]byte("total-staked"))
	slotRewardsBalance   = lockstake.BytesToBytes32([]byte("rewards-balance"))
	slotRewardRate       = lockstake.BytesToBytes32([]byte("reward-rate"))
	slotEarlyWithdrawFee = lockstake.BytesToBytes32([]byte("early-withdraw-fee"))
	slotConversionRate   = lockstake.BytesToBytes32([]byte("conversion-rate"))
	slotPeriods          = lockstake.BytesToBytes32([]byte("available-periods"))
)

type storage struct {
	state *state.State
	addr  lockstake.Address
}

func (s *storage) getBig(slot lockstake.Bytes32) (*big.Int, error) {
	v := new(big.Int)
	if err := s.state.GetStructuredStorage(s.addr, slot, v); err != nil {
		return nil, errors.Wrap(err, "failed to get pool storage")
	}
	return v, nil
}

func (s *storage) setBig(slot lockstake.Bytes32, v *big.Int) error {
	if v.Sign() == 0 {
		s.state.SetRawStorage(s.addr, slot, nil)
		return nil
	}
	return errors.Wrap(s.state.SetStructuredStorage(s.addr, slot, v), "failed to set pool storage")
}

func (s *storage) getUint64(slot lockstake.Bytes32) (uint64, error) {
	var v uint64
	if err := s.state.GetStructuredStorage(s.addr, slot, &v); err != nil {
		return 0, errors.Wrap(err, "failed to get pool storage")
	}
	return v, nil
}

func (s *storage) setUint64(slot lockstake.Bytes32, v uint64) error {
	if v == 0 {
		s.state.SetRawStorage(s.addr, slot, nil)
		return nil
	}
	return errors.Wrap(s.state.SetStructuredStorage(s.addr, slot, v), "failed to set pool storage")
}

func (s *storage) getPeriods() ([]uint32, error) {
	var v []uint32
	if err := s.state.GetStructuredStorage(s.addr, slotPeriods, &v); err != nil {
		return nil, errors.Wrap(err, "failed to get available periods")
	}
	return v, nil
}

func (s *storage) setPeriods(v []uint32) error {
	return errors.Wrap(s.state.SetStructuredStorage(s.addr, slotPeriods, v), "failed to set available periods")
}

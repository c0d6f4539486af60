// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/state"
)

var (
	slotPositions = lockstake.BytesToBytes32([]byte("positions"))
	slotClaims    = lockstake.BytesToBytes32([]byte("last-reward-claims"))
)

// Storage persists positions and reward clocks in the ledger's state space.
type Storage struct {
	state     *state.State
	addr      lockstake.Address
	positions *state.Mapping[lockstake.Address, *Position]
}

func NewStorage(st *state.State, addr lockstake.Address) *Storage {
	return &Storage{
		state:     st,
		addr:      addr,
		positions: state.NewMapping[lockstake.Address, *Position](st, addr, slotPositions),
	}
}

func (s *Storage) getPosition(owner lockstake.Address) (*Position, error) {
	pos, err := s.positions.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	return pos, nil
}

func (s *Storage) setPosition(owner lockstake.Address, pos *Position) error {
	if err := s.positions.Set(owner, pos); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	return nil
}

func (s *Storage) claimKey(owner lockstake.Address) lockstake.Bytes32 {
	return lockstake.Blake2b(owner.Bytes(), slotClaims.Bytes())
}

// getClaim returns the reward clock of owner. The second return value
// distinguishes "never claimed" from a recorded claim.
func (s *Storage) getClaim(owner lockstake.Address) (uint64, bool, error) {
	var (
		at    uint64
		found bool
	)
	err := s.state.DecodeStorage(s.addr, s.claimKey(owner), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		found = true
		return rlp.DecodeBytes(raw, &at)
	})
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to get reward claim")
	}
	return at, found, nil
}

func (s *Storage) setClaim(owner lockstake.Address, at uint64) error {
	err := s.state.EncodeStorage(s.addr, s.claimKey(owner), func() ([]byte, error) {
		return rlp.EncodeToBytes(at)
	})
	return errors.Wrap(err, "failed to set reward claim")
}

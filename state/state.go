// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/kv"
	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/stackedmap"
)

// StorageEncoder knows how to encode itself into raw storage bytes.
// Returning empty raw means "clear the slot".
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder knows how to restore itself from raw storage bytes.
// Empty raw means the slot is unset.
type StorageDecoder interface {
	Decode(raw []byte) error
}

type storageKey struct {
	addr lockstake.Address
	slot lockstake.Bytes32
}

func (k *storageKey) kvKey() []byte {
	return append(append(make([]byte, 0, 52), k.addr.Bytes()...), k.slot.Bytes()...)
}

// State provides structured storage over a kv store, with checkpoint/revert
// semantics. All writes are staged in memory until Commit, so a reverted
// operation leaves the backing store untouched.
//
// Slots are namespaced by an owner address, so independent components
// (the ledger, the bank) can share one backing store without key clashes.
type State struct {
	store kv.Store
	sm    *stackedmap.StackedMap[storageKey, []byte]
}

// New creates a state instance backed by the given store.
func New(store kv.Store) *State {
	st := &State{store: store}
	st.sm = stackedmap.New(st.load)
	st.sm.Push() // base layer, holds writes of the current commit cycle
	return st
}

func (s *State) load(key storageKey) ([]byte, bool, error) {
	raw, err := s.store.Get(key.kvKey())
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "load storage")
	}
	return raw, true, nil
}

// Checkpoint makes a checkpoint of the current state.
// It returns the checkpoint handle to be passed to RevertTo.
func (s *State) Checkpoint() int {
	return s.sm.Push()
}

// RevertTo reverts all changes since the given checkpoint.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// GetRawStorage returns raw storage bytes for the given slot.
// Empty bytes returned if the slot is unset.
func (s *State) GetRawStorage(addr lockstake.Address, slot lockstake.Bytes32) ([]byte, error) {
	raw, _, err := s.sm.Get(storageKey{addr, slot})
	return raw, err
}

// SetRawStorage stages raw storage bytes for the given slot.
// Setting empty bytes clears the slot.
func (s *State) SetRawStorage(addr lockstake.Address, slot lockstake.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, slot}, raw)
}

// DecodeStorage decodes the slot's raw bytes via the given callback.
func (s *State) DecodeStorage(addr lockstake.Address, slot lockstake.Bytes32, decode func(raw []byte) error) error {
	raw, err := s.GetRawStorage(addr, slot)
	if err != nil {
		return err
	}
	return decode(raw)
}

// EncodeStorage stages the slot's raw bytes produced by the given callback.
func (s *State) EncodeStorage(addr lockstake.Address, slot lockstake.Bytes32, encode func() ([]byte, error)) error {
	raw, err := encode()
	if err != nil {
		return err
	}
	s.SetRawStorage(addr, slot, raw)
	return nil
}

// GetStructuredStorage loads and decodes the slot value into val.
// val should implement StorageDecoder, or be an RLP-decodable pointer,
// in which case an unset slot leaves it zeroed.
func (s *State) GetStructuredStorage(addr lockstake.Address, slot lockstake.Bytes32, val any) error {
	return s.DecodeStorage(addr, slot, func(raw []byte) error {
		if dec, ok := val.(StorageDecoder); ok {
			return dec.Decode(raw)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, val)
	})
}

// SetStructuredStorage encodes val and stages it at the slot.
// val should implement StorageEncoder, or be RLP-encodable.
func (s *State) SetStructuredStorage(addr lockstake.Address, slot lockstake.Bytes32, val any) error {
	return s.EncodeStorage(addr, slot, func() ([]byte, error) {
		if enc, ok := val.(StorageEncoder); ok {
			return enc.Encode()
		}
		return rlp.EncodeToBytes(val)
	})
}

// Commit writes all staged changes to the backing store in one batch and
// resets the staging area. It collapses any open checkpoints.
func (s *State) Commit() error {
	batch := s.store.NewBatch()
	var jerr error
	s.sm.Journal(func(key storageKey, raw []byte) bool {
		if len(raw) == 0 {
			jerr = batch.Delete(key.kvKey())
		} else {
			jerr = batch.Put(key.kvKey(), raw)
		}
		return jerr == nil
	})
	if jerr != nil {
		return errors.Wrap(jerr, "stage batch")
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit state")
	}

	s.sm = stackedmap.New(s.load)
	s.sm.Push()
	return nil
}

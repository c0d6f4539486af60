// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"reflect"

	"github.com/lockstake/lockstake/lockstake"
)

// Key constrains mapping keys to byte-convertible types.
type Key interface {
	Bytes() []byte
}

// Mapping is a keyed storage abstraction similar to the mapping in Solidity
// contracts. Values live at blake2b(key, basePos) under the owner address.
type Mapping[K Key, V any] struct {
	state   *State
	addr    lockstake.Address
	basePos lockstake.Bytes32
}

// NewMapping creates a mapping rooted at pos in addr's storage space.
func NewMapping[K Key, V any](state *State, addr lockstake.Address, pos lockstake.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{state: state, addr: addr, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) lockstake.Bytes32 {
	return lockstake.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get loads the value at key. An unset slot yields the zero value
// (for pointer-typed values, a freshly allocated zero target).
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	rv := reflect.ValueOf(&value).Elem()
	target := rv.Addr().Interface()
	if rv.Kind() == reflect.Ptr {
		rv.Set(reflect.New(rv.Type().Elem()))
		target = rv.Interface()
	}
	if err = m.state.GetStructuredStorage(m.addr, m.position(key), target); err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}

// Set stages the value at key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.state.SetStructuredStorage(m.addr, m.position(key), value)
}

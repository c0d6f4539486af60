// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lockstake

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x00000000000000000000000000000000000000ff")
	require.NoError(t, err)
	assert.Equal(t, BytesToAddress([]byte{0xff}), addr)

	// prefix is optional
	bare, err := ParseAddress("00000000000000000000000000000000000000ff")
	require.NoError(t, err)
	assert.Equal(t, addr, bare)

	_, err = ParseAddress("0xff")
	assert.Error(t, err)
	_, err = ParseAddress("zz000000000000000000000000000000000000ff")
	assert.Error(t, err)
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("alice"))

	data, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+addr.String()+`"`, string(data))

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)
}

func TestBytesToAddressCrops(t *testing.T) {
	long := make([]byte, 32)
	long[31] = 0x7
	assert.Equal(t, BytesToAddress([]byte{0x7}), BytesToAddress(long))
}

func TestIsZero(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.False(t, BytesToAddress([]byte{1}).IsZero())
}

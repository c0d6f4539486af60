// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lockstake

// Asset identifies a fungible asset kind moved by the transfer engine.
type Asset string

// The two asset kinds of the staking protocol.
const (
	AssetPrincipal Asset = "principal"
	AssetReward    Asset = "reward"
)

// Bytes returns byte slice form of Asset.
func (a Asset) Bytes() []byte {
	return []byte(a)
}

// Valid returns whether the asset kind is known.
func (a Asset) Valid() bool {
	return a == AssetPrincipal || a == AssetReward
}

// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lockstake

// Constants of the staking protocol.
const (
	// RewardPeriod length of one reward accrual period, in clock units ("one day").
	RewardPeriod uint64 = 86400

	// LockBlock length of one lock-duration block. A period code selects
	// `code` of these, i.e. lock duration = code * 30 days.
	LockBlock uint64 = 30 * RewardPeriod

	// RewardRateMul and RewardRateDiv make up the fixed-point factor applied
	// to `amount * rate * periods`. The multiply-then-divide order and the
	// truncation are part of the protocol and must not be "simplified".
	RewardRateMul uint64 = 100
	RewardRateDiv uint64 = 36000
)

// Default pool parameters.
var (
	DefaultRewardRate        uint64 = 5
	DefaultEarlyWithdrawFee  uint64 = 10 // configured but not applied by any withdrawal path
	DefaultConversionRate    uint64 = 1
	DefaultAvailablePeriods         = []uint32{6, 12}
)

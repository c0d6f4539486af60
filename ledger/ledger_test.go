// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstake/lockstake/bank"
	"github.com/lockstake/lockstake/kv"
	"github.com/lockstake/lockstake/ledger/pool"
	"github.com/lockstake/lockstake/ledger/reverts"
	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/state"
)

const day = lockstake.RewardPeriod

var (
	ledgerAddr = lockstake.BytesToAddress([]byte("ledger"))
	bankAddr   = lockstake.BytesToAddress([]byte("bank"))
	alice      = lockstake.BytesToAddress([]byte("alice"))
	bob        = lockstake.BytesToAddress([]byte("bob"))
	funder     = lockstake.BytesToAddress([]byte("funder"))
)

type memSink struct {
	records []Record
}

func (s *memSink) Deliver(r Record) {
	s.records = append(s.records, r)
}

type env struct {
	store  kv.Store
	state  *state.State
	bank   *bank.Bank
	ledger *Ledger
	sink   *memSink
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := kv.NewMem()
	st := state.New(store)
	bk := bank.New(bankAddr, st)

	// prefund actors
	require.NoError(t, bk.Mint(lockstake.AssetPrincipal, alice, big.NewInt(1_000_000)))
	require.NoError(t, bk.Mint(lockstake.AssetPrincipal, bob, big.NewInt(1_000_000)))
	require.NoError(t, bk.Mint(lockstake.AssetReward, funder, big.NewInt(1_000_000)))

	l, err := New(ledgerAddr, st, bk, pool.DefaultConfig())
	require.NoError(t, err)

	sink := &memSink{}
	l.AddSink(sink)
	return &env{store: store, state: st, bank: bk, ledger: l, sink: sink}
}

func (e *env) balance(t *testing.T, asset lockstake.Asset, owner lockstake.Address) int64 {
	t.Helper()
	bal, err := e.bank.Balance(asset, owner)
	require.NoError(t, err)
	return bal.Int64()
}

func (e *env) fund(t *testing.T, amount int64) {
	t.Helper()
	require.NoError(t, e.ledger.FundRewardPool(funder, big.NewInt(amount)))
}

func TestStake(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))

	info, err := e.ledger.AllStakeInfo(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(36000), info.Amount.Int64())
	assert.Equal(t, uint64(0), info.StartedAt)
	assert.Equal(t, uint32(6), info.PeriodCode)
	assert.Equal(t, 6*lockstake.LockBlock, info.ActiveUntil)
	assert.Equal(t, int64(0), info.PendingReward.Int64())

	// principal moved into escrow
	assert.Equal(t, int64(1_000_000-36000), e.balance(t, lockstake.AssetPrincipal, alice))
	assert.Equal(t, int64(36000), e.balance(t, lockstake.AssetPrincipal, ledgerAddr))

	days, err := e.ledger.StakingPeriodDays(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(180), days)

	require.Len(t, e.sink.records, 1)
	rec, ok := e.sink.records[0].(*StakeRecord)
	require.True(t, ok)
	assert.Equal(t, alice, rec.Participant)
	assert.Equal(t, int64(36000), rec.Amount.Int64())
	assert.Equal(t, int64(36000), rec.NewTotal.Int64())
}

func TestStakeValidation(t *testing.T) {
	e := newEnv(t)

	err := e.ledger.Stake(0, alice, 6, big.NewInt(0))
	assert.True(t, reverts.HasCode(err, reverts.CodeInvalidAmount))

	err = e.ledger.Stake(0, alice, 7, big.NewInt(100))
	assert.True(t, reverts.HasCode(err, reverts.CodeUnknownPeriod))

	// a failed stake leaves no position behind
	_, err = e.ledger.AllStakeInfo(alice, 0)
	assert.True(t, reverts.HasCode(err, reverts.CodeNoActiveStake))
	assert.Empty(t, e.sink.records)
}

func TestStakeInsufficientPrincipal(t *testing.T) {
	e := newEnv(t)

	err := e.ledger.Stake(0, alice, 6, big.NewInt(2_000_000))
	assert.True(t, reverts.HasCode(err, reverts.CodeTransferFailed))

	// the whole operation reverted
	_, err = e.ledger.AllStakeInfo(alice, 0)
	assert.True(t, reverts.HasCode(err, reverts.CodeNoActiveStake))
	total, err := e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(0), total.TotalStaked.Int64())
}

func TestTotalStakedTracksPositions(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(1000)))
	require.NoError(t, e.ledger.Stake(0, bob, 12, big.NewInt(500)))

	info, err := e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(1500), info.TotalStaked.Int64())

	require.NoError(t, e.ledger.EmergencyWithdraw(bob))

	info, err = e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.TotalStaked.Int64())
}

// Scenario: stake 10 units with period code 6 at now=0. One day later one
// period has passed and the truncating rate math yields a zero reward,
// which still harvests cleanly and resets the pending period count.
func TestSmallStakeScenario(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 100)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(10)))

	info, err := e.ledger.AllStakeInfo(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, 6*lockstake.LockBlock, info.ActiveUntil)

	periods, err := e.ledger.PassedRewardPeriods(alice, day)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), periods)

	reward, err := e.ledger.AvailableRewards(alice, day)
	require.NoError(t, err)
	assert.Equal(t, int64(10*5*1*100/36000), reward.Int64())

	require.NoError(t, e.ledger.Harvest(day, alice))

	periods, err = e.ledger.PassedRewardPeriods(alice, day)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), periods)
}

func TestHarvest(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 10_000)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))

	// 36000 * 5 * 3 * 100 / 36000 = 1500 over three days
	reward, err := e.ledger.AvailableRewards(alice, 3*day+500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), reward.Int64())

	require.NoError(t, e.ledger.Harvest(3*day+500, alice))
	assert.Equal(t, int64(1500), e.balance(t, lockstake.AssetReward, alice))

	info, err := e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(10_000-1500), info.RewardsBalance.Int64())

	// the clock advanced by whole periods, the fractional 500 remains
	reward, err = e.ledger.AvailableRewards(alice, 4*day)
	require.NoError(t, err)
	assert.Equal(t, int64(500), reward.Int64())

	last := e.sink.records[len(e.sink.records)-1]
	h, ok := last.(*HarvestRecord)
	require.True(t, ok)
	assert.Equal(t, uint32(3), h.Periods)
	assert.Equal(t, int64(1500), h.Amount.Int64())
}

func TestHarvestTooEarly(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 10_000)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))

	err := e.ledger.Harvest(day-1, alice)
	assert.True(t, reverts.HasCode(err, reverts.CodeTooEarly))

	err = e.ledger.Harvest(0, bob)
	assert.True(t, reverts.HasCode(err, reverts.CodeNoActiveStake))
}

func TestHarvestInsufficientPool(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 100)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))

	err := e.ledger.Harvest(day, alice) // needs 500
	assert.True(t, reverts.HasCode(err, reverts.CodeInsufficientRewardPool))

	// pool, clock and position unchanged
	info, err := e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(100), info.RewardsBalance.Int64())

	reward, err := e.ledger.AvailableRewards(alice, day)
	require.NoError(t, err)
	assert.Equal(t, int64(500), reward.Int64())
	assert.Equal(t, int64(0), e.balance(t, lockstake.AssetReward, alice))

	// funding the gap makes the same harvest pass
	e.fund(t, 400)
	require.NoError(t, e.ledger.Harvest(day, alice))
	assert.Equal(t, int64(500), e.balance(t, lockstake.AssetReward, alice))
}

func TestRewardAccrualStopsAtMaturity(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))

	atMaturity, err := e.ledger.AvailableRewards(alice, 6*lockstake.LockBlock)
	require.NoError(t, err)
	yearLater, err := e.ledger.AvailableRewards(alice, 6*lockstake.LockBlock+365*day)
	require.NoError(t, err)
	assert.Equal(t, atMaturity, yearLater)
}

func TestTopUpSettlesAndResetsLock(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 10_000)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))
	require.NoError(t, e.ledger.Stake(2*day, alice, 12, big.NewInt(4000)))

	// pending rewards were settled as part of the top-up
	assert.Equal(t, int64(1000), e.balance(t, lockstake.AssetReward, alice))

	info, err := e.ledger.AllStakeInfo(alice, 2*day)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), info.Amount.Int64())
	assert.Equal(t, 2*day, info.StartedAt)
	assert.Equal(t, uint32(12), info.PeriodCode)
	// a top-up restarts the lock at full length
	assert.Equal(t, 2*day+12*lockstake.LockBlock, info.ActiveUntil)
}

func TestWithdraw(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 10_000)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))
	require.NoError(t, e.ledger.Withdraw(2*day, alice))

	// principal back, pending two periods settled
	assert.Equal(t, int64(1_000_000), e.balance(t, lockstake.AssetPrincipal, alice))
	assert.Equal(t, int64(1000), e.balance(t, lockstake.AssetReward, alice))

	_, err := e.ledger.AllStakeInfo(alice, 2*day)
	assert.True(t, reverts.HasCode(err, reverts.CodeNoActiveStake))

	info, err := e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.TotalStaked.Int64())

	err = e.ledger.Withdraw(2*day, alice)
	assert.True(t, reverts.HasCode(err, reverts.CodeNoActiveStake))

	var w *WithdrawRecord
	for _, r := range e.sink.records {
		if rec, ok := r.(*WithdrawRecord); ok {
			w = rec
		}
	}
	require.NotNil(t, w)
	assert.Equal(t, int64(36000), w.Amount.Int64())
	assert.False(t, w.IsEarly)
}

func TestEmergencyWithdrawForfeitsRewards(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 10_000)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))
	require.NoError(t, e.ledger.EmergencyWithdraw(alice))

	// full principal back, no reward paid
	assert.Equal(t, int64(1_000_000), e.balance(t, lockstake.AssetPrincipal, alice))
	assert.Equal(t, int64(0), e.balance(t, lockstake.AssetReward, alice))

	// forfeited rewards are not payable afterward
	reward, err := e.ledger.AvailableRewards(alice, 100*day)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reward.Int64())

	info, err := e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), info.RewardsBalance.Int64())
}

func TestProlong(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 100_000)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))
	maturity := 6 * lockstake.LockBlock

	err := e.ledger.Prolong(maturity, alice, 12)
	assert.True(t, reverts.HasCode(err, reverts.CodeStillLocked))

	now := maturity + day
	require.NoError(t, e.ledger.Prolong(now, alice, 12))

	info, err := e.ledger.AllStakeInfo(alice, now)
	require.NoError(t, err)
	assert.Equal(t, int64(36000), info.Amount.Int64())
	assert.Equal(t, now, info.StartedAt)
	assert.Equal(t, uint32(12), info.PeriodCode)
	// the zero-amount branch keeps the stored maturity instant
	assert.Equal(t, maturity, info.ActiveUntil)

	// settlement paid out the accrual up to maturity: 180 periods
	assert.Equal(t, int64(36000*5*180*100/36000), e.balance(t, lockstake.AssetReward, alice))

	err = e.ledger.Prolong(now, bob, 12)
	assert.True(t, reverts.HasCode(err, reverts.CodeNoActiveStake))

	err = e.ledger.Prolong(now+day, alice, 7)
	assert.True(t, reverts.HasCode(err, reverts.CodeUnknownPeriod))
}

func TestFundRewardPool(t *testing.T) {
	e := newEnv(t)

	err := e.ledger.FundRewardPool(funder, big.NewInt(0))
	assert.True(t, reverts.HasCode(err, reverts.CodeInvalidAmount))

	require.NoError(t, e.ledger.FundRewardPool(funder, big.NewInt(100)))

	info, err := e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(100), info.RewardsBalance.Int64())
	assert.Equal(t, int64(100), e.balance(t, lockstake.AssetReward, ledgerAddr))

	// funding beyond the funder's balance reverts the credit
	err = e.ledger.FundRewardPool(funder, big.NewInt(2_000_000))
	assert.True(t, reverts.HasCode(err, reverts.CodeTransferFailed))
	info, err = e.ledger.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(100), info.RewardsBalance.Int64())

	rec, ok := e.sink.records[0].(*RewardPoolRecord)
	require.True(t, ok)
	assert.Equal(t, funder, rec.Funder)
	assert.Equal(t, int64(100), rec.Amount.Int64())
}

func TestNextRewardDate(t *testing.T) {
	e := newEnv(t)
	e.fund(t, 10_000)

	// no claim recorded yet
	next, err := e.ledger.NextRewardDate(alice, day)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), next)

	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))
	require.NoError(t, e.ledger.Harvest(day, alice))

	next, err = e.ledger.NextRewardDate(alice, day+100)
	require.NoError(t, err)
	assert.Equal(t, 2*day, next)
}

func TestStateSurvivesRestart(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.ledger.Stake(0, alice, 6, big.NewInt(36000)))

	// a fresh ledger over the same store sees the committed position
	reopened, err := New(ledgerAddr, state.New(e.store), e.bank, pool.DefaultConfig())
	require.NoError(t, err)

	info, err := reopened.AllStakeInfo(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(36000), info.Amount.Int64())

	pinfo, err := reopened.PoolInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(36000), pinfo.TotalStaked.Int64())
}

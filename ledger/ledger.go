// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the staking ledger: locked principal
// positions, periodic reward accrual and the shared reward pool.
//
// Every operation is atomic. State mutations are staged against a
// checkpoint and value transfers are settled at the very end, so a
// failure at any point reverts the operation completely.
package ledger

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/ledger/pool"
	"github.com/lockstake/lockstake/ledger/position"
	"github.com/lockstake/lockstake/ledger/reverts"
	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/log"
	"github.com/lockstake/lockstake/metrics"
	"github.com/lockstake/lockstake/state"
)

var logger = log.WithContext("pkg", "ledger")

var (
	metricOps         = metrics.LazyLoadCounterVec("ledger_operation_count", []string{"op", "status"})
	metricTotalStaked = metrics.LazyLoadGauge("ledger_total_staked")
)

// TransferEngine moves asset value between accounts. A failed transfer
// must leave both balances untouched.
type TransferEngine interface {
	Transfer(asset lockstake.Asset, from, to lockstake.Address, amount *big.Int) error
}

// Ledger is the operation facade. It owns the escrow account holding
// staked principal and undistributed reward payouts.
type Ledger struct {
	mu        sync.Mutex
	state     *state.State
	addr      lockstake.Address
	positions *position.Service
	pool      *pool.Service
	bank      TransferEngine
	sinks     []Sink
}

// New creates a ledger rooted at addr's storage space. The pool
// parameters are stored on first start and kept on later ones.
func New(addr lockstake.Address, st *state.State, bank TransferEngine, cfg pool.Config) (*Ledger, error) {
	l := &Ledger{
		state:     st,
		addr:      addr,
		positions: position.New(st, addr),
		pool:      pool.New(st, addr),
		bank:      bank,
	}
	if err := l.pool.Init(cfg); err != nil {
		return nil, errors.Wrap(err, "init pool")
	}
	if err := st.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit genesis state")
	}
	return l, nil
}

// Address returns the ledger's escrow account address.
func (l *Ledger) Address() lockstake.Address {
	return l.addr
}

// AddSink registers a sink for committed-operation records.
func (l *Ledger) AddSink(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

type transfer struct {
	asset    lockstake.Asset
	from, to lockstake.Address
	amount   *big.Int
}

// recorder accumulates the records and the deferred transfers of one
// operation.
type recorder struct {
	records   []Record
	transfers []transfer
}

func (r *recorder) record(rec Record) {
	r.records = append(r.records, rec)
}

func (r *recorder) transferLast(asset lockstake.Asset, from, to lockstake.Address, amount *big.Int) {
	r.transfers = append(r.transfers, transfer{asset, from, to, amount})
}

// run frames an operation: checkpoint, mutate, settle transfers, commit.
// Any failure reverts to the checkpoint and nothing is delivered.
func (l *Ledger) run(op string, fn func(rec *recorder) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger.Debug("running operation", "op", op)

	cp := l.state.Checkpoint()
	rec := &recorder{}
	err := fn(rec)
	if err == nil {
		err = l.settleTransfers(rec)
	}
	if err != nil {
		l.state.RevertTo(cp)
		metricOps().AddWithLabel(1, map[string]string{"op": op, "status": "reverted"})
		logger.Info("operation reverted", "op", op, "err", err)
		return err
	}
	if err := l.state.Commit(); err != nil {
		l.state.RevertTo(cp)
		metricOps().AddWithLabel(1, map[string]string{"op": op, "status": "failed"})
		return errors.Wrap(err, "commit "+op)
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "status": "committed"})
	logger.Info("operation committed", "op", op)
	l.updateTotalGauge()

	for _, r := range rec.records {
		for _, s := range l.sinks {
			s.Deliver(r)
		}
	}
	return nil
}

func (l *Ledger) settleTransfers(rec *recorder) error {
	for _, tr := range rec.transfers {
		if err := l.bank.Transfer(tr.asset, tr.from, tr.to, tr.amount); err != nil {
			logger.Debug("transfer failed", "asset", tr.asset, "err", err)
			return reverts.ErrTransferFailed
		}
	}
	return nil
}

func (l *Ledger) updateTotalGauge() {
	if total, err := l.pool.TotalStaked(); err == nil && total.IsInt64() {
		metricTotalStaked().Set(total.Int64())
	}
}

// Stake locks amount of principal for the lock duration selected by
// periodCode. Topping up an existing position first settles its pending
// rewards, then restarts the lock at full length.
func (l *Ledger) Stake(now uint64, staker lockstake.Address, periodCode uint32, amount *big.Int) error {
	return l.run("stake", func(rec *recorder) error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.ErrInvalidAmount
		}
		pos, err := l.positions.Get(staker)
		if err != nil {
			return err
		}
		if !pos.IsEmpty() {
			if err := l.collectRewards(rec, now, staker, true); err != nil {
				return err
			}
		}
		if err := l.applyStake(rec, now, staker, periodCode, amount); err != nil {
			return err
		}
		rec.transferLast(lockstake.AssetPrincipal, staker, l.addr, amount)
		return nil
	})
}

// Withdraw returns the whole principal to the staker, settling pending
// rewards first. Accrual already stopped at maturity, so a late
// withdrawal pays no more than an on-time one.
func (l *Ledger) Withdraw(now uint64, staker lockstake.Address) error {
	return l.run("withdraw", func(rec *recorder) error {
		pos, err := l.positions.Get(staker)
		if err != nil {
			return err
		}
		if pos.IsEmpty() {
			return reverts.ErrNoActiveStake
		}
		if err := l.collectRewards(rec, now, staker, true); err != nil {
			return err
		}
		return l.applyWithdraw(rec, staker, pos.Amount)
	})
}

// EmergencyWithdraw returns the principal before maturity. Rewards
// accrued since the last settlement are forfeited.
func (l *Ledger) EmergencyWithdraw(staker lockstake.Address) error {
	return l.run("emergency_withdraw", func(rec *recorder) error {
		pos, err := l.positions.Get(staker)
		if err != nil {
			return err
		}
		if pos.IsEmpty() {
			return reverts.ErrNoActiveStake
		}
		return l.applyWithdraw(rec, staker, pos.Amount)
	})
}

// Prolong re-locks a matured position under the given period code,
// settling pending rewards first. The principal stays escrowed.
func (l *Ledger) Prolong(now uint64, staker lockstake.Address, periodCode uint32) error {
	return l.run("prolong", func(rec *recorder) error {
		pos, err := l.positions.Get(staker)
		if err != nil {
			return err
		}
		if pos.IsEmpty() {
			return reverts.ErrNoActiveStake
		}
		if !pos.Matured(now) {
			return reverts.ErrStillLocked
		}
		if err := l.collectRewards(rec, now, staker, true); err != nil {
			return err
		}
		return l.applyStake(rec, now, staker, periodCode, new(big.Int))
	})
}

// Harvest settles pending rewards without touching the principal.
// It fails when no whole reward period has elapsed.
func (l *Ledger) Harvest(now uint64, staker lockstake.Address) error {
	return l.run("harvest", func(rec *recorder) error {
		pos, err := l.positions.Get(staker)
		if err != nil {
			return err
		}
		if pos.IsEmpty() {
			return reverts.ErrNoActiveStake
		}
		return l.collectRewards(rec, now, staker, false)
	})
}

// FundRewardPool credits the reward pool, moving the funds from the
// funder into escrow.
func (l *Ledger) FundRewardPool(funder lockstake.Address, amount *big.Int) error {
	return l.run("fund_reward_pool", func(rec *recorder) error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.ErrInvalidAmount
		}
		if err := l.pool.CreditRewards(amount); err != nil {
			return err
		}
		newBal, err := l.pool.RewardsBalance()
		if err != nil {
			return err
		}
		rec.transferLast(lockstake.AssetReward, funder, l.addr, amount)
		rec.record(&RewardPoolRecord{Funder: funder, Amount: new(big.Int).Set(amount), NewBalance: newBal})
		return nil
	})
}

// applyStake writes the refreshed position. A nonzero amount restarts
// the lock at full length; a zero amount (prolongation) keeps the
// stored maturity instant.
func (l *Ledger) applyStake(rec *recorder, now uint64, staker lockstake.Address, periodCode uint32, amount *big.Int) error {
	ok, err := l.pool.IsPeriodAvailable(periodCode)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrUnknownPeriod
	}

	pos, err := l.positions.Get(staker)
	if err != nil {
		return err
	}
	newAmount := new(big.Int).Add(pos.Amount, amount)
	activeUntil := pos.ActiveUntil
	if amount.Sign() > 0 {
		activeUntil = now + uint64(periodCode)*lockstake.LockBlock
	}
	next := &position.Position{
		Amount:      newAmount,
		StartedAt:   now,
		PeriodCode:  periodCode,
		ActiveUntil: activeUntil,
	}
	if err := l.positions.Set(staker, next); err != nil {
		return err
	}
	if err := l.pool.AddTotalStaked(amount); err != nil {
		return err
	}
	rec.record(&StakeRecord{
		Participant: staker,
		StakedAt:    now,
		PeriodCode:  periodCode,
		Amount:      new(big.Int).Set(amount),
		NewTotal:    newAmount,
	})
	return nil
}

// applyWithdraw clears the position and schedules the principal refund.
func (l *Ledger) applyWithdraw(rec *recorder, staker lockstake.Address, amount *big.Int) error {
	if err := l.positions.Set(staker, &position.Position{Amount: new(big.Int)}); err != nil {
		return err
	}
	if err := l.pool.AddTotalStaked(new(big.Int).Neg(amount)); err != nil {
		return err
	}
	rec.transferLast(lockstake.AssetPrincipal, l.addr, staker, amount)
	rec.record(&WithdrawRecord{Participant: staker, Amount: amount, IsEarly: false})
	return nil
}

// collectRewards settles whole elapsed reward periods. With soft set,
// having nothing to settle is not an error.
func (l *Ledger) collectRewards(rec *recorder, now uint64, staker lockstake.Address, soft bool) error {
	pos, err := l.positions.Get(staker)
	if err != nil {
		return err
	}
	if pos.IsEmpty() {
		return nil
	}
	rate, err := l.pool.RewardRate()
	if err != nil {
		return err
	}
	periods, reward, err := l.positions.RewardAmount(staker, now, rate)
	if err != nil {
		return err
	}
	if periods == 0 {
		if soft {
			return nil
		}
		return reverts.ErrTooEarly
	}
	ok, err := l.pool.DebitRewards(reward)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrInsufficientRewardPool
	}
	if err := l.positions.AdvanceClaim(staker, periods); err != nil {
		return err
	}
	conv, err := l.pool.ConversionRate()
	if err != nil {
		return err
	}
	payout := new(big.Int).Mul(reward, new(big.Int).SetUint64(conv))
	rec.transferLast(lockstake.AssetReward, l.addr, staker, payout)
	rec.record(&HarvestRecord{Participant: staker, Periods: periods, Amount: reward})
	return nil
}

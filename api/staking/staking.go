// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking exposes the ledger operations and queries over HTTP.
package staking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/api/restutil"
	"github.com/lockstake/lockstake/ledger"
	"github.com/lockstake/lockstake/ledger/reverts"
	"github.com/lockstake/lockstake/lockstake"
)

type Staking struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Staking {
	return &Staking{l}
}

// parseNow reads the caller-supplied clock instant, defaulting to wall
// time so plain clients need not pass one.
func parseNow(r *http.Request) (uint64, error) {
	q := r.URL.Query().Get("now")
	if q == "" {
		return uint64(time.Now().Unix()), nil
	}
	now, err := strconv.ParseUint(q, 10, 64)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "now"))
	}
	return now, nil
}

func parseAddress(r *http.Request) (lockstake.Address, error) {
	addr, err := lockstake.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		return lockstake.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

// convertLedgerErr maps operation failures onto http statuses.
func convertLedgerErr(err error) error {
	var re *reverts.ErrRevert
	if !errors.As(err, &re) {
		return err
	}
	switch re.Code() {
	case reverts.CodeNoActiveStake:
		return restutil.NotFound(err)
	case reverts.CodeInvalidAmount, reverts.CodeUnknownPeriod:
		return restutil.BadRequest(err)
	default:
		return restutil.Conflict(err)
	}
}

func (s *Staking) handleStake(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddress(r)
	if err != nil {
		return err
	}
	now, err := parseNow(r)
	if err != nil {
		return err
	}
	var req StakeRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.ledger.Stake(now, addr, req.PeriodCode, amountValue(req.Amount)); err != nil {
		return convertLedgerErr(err)
	}
	info, err := s.ledger.AllStakeInfo(addr, now)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertStakeInfo(info))
}

func (s *Staking) handleWithdraw(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddress(r)
	if err != nil {
		return err
	}
	now, err := parseNow(r)
	if err != nil {
		return err
	}
	if err := s.ledger.Withdraw(now, addr); err != nil {
		return convertLedgerErr(err)
	}
	return restutil.WriteJSON(w, restutil.M{"withdrawn": true})
}

func (s *Staking) handleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddress(r)
	if err != nil {
		return err
	}
	if err := s.ledger.EmergencyWithdraw(addr); err != nil {
		return convertLedgerErr(err)
	}
	return restutil.WriteJSON(w, restutil.M{"withdrawn": true})
}

func (s *Staking) handleProlong(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddress(r)
	if err != nil {
		return err
	}
	now, err := parseNow(r)
	if err != nil {
		return err
	}
	var req ProlongRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.ledger.Prolong(now, addr, req.PeriodCode); err != nil {
		return convertLedgerErr(err)
	}
	info, err := s.ledger.AllStakeInfo(addr, now)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertStakeInfo(info))
}

func (s *Staking) handleHarvest(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddress(r)
	if err != nil {
		return err
	}
	now, err := parseNow(r)
	if err != nil {
		return err
	}
	if err := s.ledger.Harvest(now, addr); err != nil {
		return convertLedgerErr(err)
	}
	return restutil.WriteJSON(w, restutil.M{"harvested": true})
}

func (s *Staking) handleGetStakeInfo(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddress(r)
	if err != nil {
		return err
	}
	now, err := parseNow(r)
	if err != nil {
		return err
	}
	info, err := s.ledger.AllStakeInfo(addr, now)
	if err != nil {
		return convertLedgerErr(err)
	}
	return restutil.WriteJSON(w, convertStakeInfo(info))
}

func (s *Staking) handleGetRewards(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddress(r)
	if err != nil {
		return err
	}
	now, err := parseNow(r)
	if err != nil {
		return err
	}
	reward, err := s.ledger.AvailableRewards(addr, now)
	if err != nil {
		return convertLedgerErr(err)
	}
	periods, err := s.ledger.PassedRewardPeriods(addr, now)
	if err != nil {
		return convertLedgerErr(err)
	}
	next, err := s.ledger.NextRewardDate(addr, now)
	if err != nil {
		return convertLedgerErr(err)
	}
	days, err := s.ledger.StakingPeriodDays(addr)
	if err != nil {
		// the rest of the view is soft on a missing position
		if !reverts.HasCode(err, reverts.CodeNoActiveStake) {
			return convertLedgerErr(err)
		}
		days = 0
	}
	return restutil.WriteJSON(w, &Rewards{
		AvailableRewards:  (*math.HexOrDecimal256)(reward),
		PassedPeriods:     periods,
		NextRewardDate:    next,
		StakingPeriodDays: days,
	})
}

func (s *Staking) handleGetPool(w http.ResponseWriter, r *http.Request) error {
	info, err := s.ledger.PoolInfo()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertPoolInfo(info))
}

func (s *Staking) handleFundPool(w http.ResponseWriter, r *http.Request) error {
	var req FundRequest
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.ledger.FundRewardPool(req.Funder, amountValue(req.Amount)); err != nil {
		return convertLedgerErr(err)
	}
	info, err := s.ledger.PoolInfo()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertPoolInfo(info))
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("GET /staking/pool").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/pool").
		Methods(http.MethodPost).
		Name("POST /staking/pool").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleFundPool))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStakeInfo))
	sub.Path("/{address}/rewards").
		Methods(http.MethodGet).
		Name("GET /staking/{address}/rewards").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRewards))
	sub.Path("/{address}/stake").
		Methods(http.MethodPost).
		Name("POST /staking/{address}/stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	sub.Path("/{address}/withdraw").
		Methods(http.MethodPost).
		Name("POST /staking/{address}/withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/{address}/emergency-withdraw").
		Methods(http.MethodPost).
		Name("POST /staking/{address}/emergency-withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleEmergencyWithdraw))
	sub.Path("/{address}/prolong").
		Methods(http.MethodPost).
		Name("POST /staking/{address}/prolong").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleProlong))
	sub.Path("/{address}/harvest").
		Methods(http.MethodPost).
		Name("POST /staking/{address}/harvest").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleHarvest))
}

// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Code classifies caller-visible operation failures.
type Code int

const (
	CodeInvalidAmount Code = iota + 1
	CodeUnknownPeriod
	CodeNoActiveStake
	CodeStillLocked
	CodeTooEarly
	CodeInsufficientRewardPool
	CodeTransferFailed
)

func (c Code) String() string {
	switch c {
	case CodeInvalidAmount:
		return "invalid_amount"
	case CodeUnknownPeriod:
		return "unknown_period"
	case CodeNoActiveStake:
		return "no_active_stake"
	case CodeStillLocked:
		return "still_locked"
	case CodeTooEarly:
		return "too_early"
	case CodeInsufficientRewardPool:
		return "insufficient_reward_pool"
	case CodeTransferFailed:
		return "transfer_failed"
	default:
		return "unknown"
	}
}

// ErrRevert is a caller-visible failure that aborted an operation with
// no state change.
type ErrRevert struct {
	code    Code
	message string
}

func New(code Code, message string) *ErrRevert {
	return &ErrRevert{
		code:    code,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Code() Code {
	return e.code
}

// Operation failures of the staking ledger.
var (
	ErrInvalidAmount          = New(CodeInvalidAmount, "amount should be > 0")
	ErrUnknownPeriod          = New(CodeUnknownPeriod, "period not exist")
	ErrNoActiveStake          = New(CodeNoActiveStake, "no stake")
	ErrStillLocked            = New(CodeStillLocked, "still active")
	ErrTooEarly               = New(CodeTooEarly, "too early")
	ErrInsufficientRewardPool = New(CodeInsufficientRewardPool, "not enough rewards")
	ErrTransferFailed         = New(CodeTransferFailed, "transfer failed")
)

// IsRevertErr reports whether err is (or wraps) an ErrRevert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// HasCode reports whether err is (or wraps) an ErrRevert with the given code.
func HasCode(err error, code Code) bool {
	var ve *ErrRevert
	return errors.As(err, &ve) && ve.code == code
}

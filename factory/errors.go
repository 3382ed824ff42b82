package factory

import "errors"

// Reason errors surfaced by factory operations. Callers match with errors.Is.
var (
	ErrInvalidName     = errors.New("name must be non-empty and at most 50 characters")
	ErrInvalidSymbol   = errors.New("symbol must be non-empty and at most 10 characters")
	ErrInvalidDecimals = errors.New("decimals must be between 6 and 18")
	ErrInvalidSupply   = errors.New("initial supply must be > 0")
	ErrInvalidAddress  = errors.New("invalid address")

	ErrPausedState     = errors.New("factory is paused")
	ErrAlreadyPaused   = errors.New("factory is already paused")
	ErrNotPaused       = errors.New("factory is not paused")
	ErrInsufficientFee = errors.New("insufficient fee payment")
	ErrRefundFailed    = errors.New("refund transfer failed")
	ErrReentrantCall   = errors.New("reentrant call rejected")

	ErrNotOwner          = errors.New("unauthorized: owner access required")
	ErrInvalidPercentage = errors.New("discount percentage must be at most 100")
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	ErrWithdrawFailed    = errors.New("withdrawal transfer failed")
)

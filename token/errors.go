package token

import "errors"

// Reason errors surfaced by ledger operations. Callers match with errors.Is.
var (
	ErrInvalidOwner   = errors.New("invalid owner: null address")
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidAmount  = errors.New("amount must be > 0")
	ErrSameAddress    = errors.New("cannot transfer to same address")
	ErrSupplyOverflow = errors.New("scaled supply overflows amount range")

	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAllowanceExceeded   = errors.New("allowance exceeded")
	ErrBalanceOverflow     = errors.New("recipient balance overflow")

	ErrNotOwner = errors.New("unauthorized: owner access required")

	// Transfer policy rejections.
	ErrBlacklistedDuringLaunch = errors.New("address blacklisted during launch window")
	ErrExceedsMaxTransaction   = errors.New("amount exceeds max transaction limit")
	ErrExceedsMaxWallet        = errors.New("recipient balance would exceed max wallet limit")

	// Policy administration rejections.
	ErrCannotBlacklistOwner = errors.New("cannot blacklist the owner address")
	ErrAntiBotDisabled      = errors.New("anti-bot protection is disabled")
	ErrLaunchWindowExpired  = errors.New("launch window has expired")
	ErrAntiWhaleDisabled    = errors.New("anti-whale protection is disabled")
	ErrAlreadyDisabled      = errors.New("feature is already disabled")
	ErrInvalidLimits        = errors.New("limits must be > 0")
)

package service

import "errors"

var (
	// User-facing errors, returned synchronously with a description.
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrStillLocked       = errors.New("savings is locked, enable early_break to withdraw")
	ErrNotWithdrawable   = errors.New("savings not withdrawable")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrPlanNotFound      = errors.New("savings plan not found")

	// ErrPlanOwnerMismatch means a gateway deposit referenced a plan
	// owned by a different account than the settled customer.
	ErrPlanOwnerMismatch = errors.New("savings plan belongs to a different account")

	// ErrInvariantBroken indicates a bug, not a user error: the ledger
	// was asked to release more than it holds. Callers must log and
	// alert, never retry or silently continue.
	ErrInvariantBroken = errors.New("wallet ledger invariant broken")
)

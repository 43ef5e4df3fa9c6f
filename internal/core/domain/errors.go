package domain

import "errors"

// Escrow error taxonomy. Every failure surfaces one of these sentinels so
// callers can branch with errors.Is; nothing is retried internally.
var (
	// Validation.
	ErrInvalidAmount  = errors.New("contribution amount must be positive")
	ErrInvalidGoal    = errors.New("campaign goal must be positive")
	ErrPastEndTime    = errors.New("campaign end time must be in the future")
	ErrZeroAddress    = errors.New("zero address")
	ErrAmountOverflow = errors.New("amount overflows ledger arithmetic")

	// Registry.
	ErrCampaignNotFound = errors.New("campaign not found")

	// Lifecycle.
	ErrCampaignEnded    = errors.New("campaign has ended")
	ErrCampaignNotEnded = errors.New("campaign has not ended")

	// Ledger conflicts.
	ErrAlreadyContributed = errors.New("a live contribution already exists")
	ErrNoContribution     = errors.New("no live contribution")

	// Goal-state conflicts.
	ErrGoalReached    = errors.New("campaign goal was reached")
	ErrGoalNotReached = errors.New("campaign goal was not reached")

	// Authorization.
	ErrNotAdmin = errors.New("caller is not the campaign admin")

	// External transfer failure; always wrapped around the port error and
	// always accompanied by a full rollback of the ledger mutation.
	ErrTransferFailed = errors.New("value transfer failed")

	ErrFundsAlreadyClaimed = errors.New("campaign funds already claimed")
)

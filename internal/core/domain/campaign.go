package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is the derived lifecycle state of a campaign. It is never stored;
// every operation recomputes it from the clock and the campaign aggregates.
type Phase string

const (
	// PhaseActive accepts contributions and pre-deadline withdrawals.
	PhaseActive Phase = "active"
	// PhaseSucceeded means the deadline passed with the goal met; only the
	// admin claim remains available.
	PhaseSucceeded Phase = "succeeded"
	// PhaseFailed means the deadline passed short of the goal; contributors
	// may reclaim their funds.
	PhaseFailed Phase = "failed"
)

// Campaign represents a single funding effort. Admin, MinGoal and EndTime are
// immutable after creation; CollectedFunds and NumberOfContributors are the
// running aggregates over live contributions. Amounts are integers in the
// stablecoin's smallest unit.
type Campaign struct {
	ID                   int64
	Admin                common.Address
	MinGoal              int64
	EndTime              time.Time
	CollectedFunds       int64
	NumberOfContributors int64
	FundsClaimed         bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Phase derives the lifecycle state at the given instant. A campaign is
// active strictly before EndTime; at the deadline instant it is already
// ended. Success is evaluated fresh on every call: CollectedFunds can shrink
// via withdrawals right up to the deadline.
func (c *Campaign) Phase(now time.Time) Phase {
	if now.Before(c.EndTime) {
		return PhaseActive
	}
	if c.CollectedFunds >= c.MinGoal {
		return PhaseSucceeded
	}
	return PhaseFailed
}

// Validate checks the creation parameters. The zero admin address is
// reserved as the registry's non-existence sentinel and is never a valid
// admin.
func (c *Campaign) Validate(now time.Time) error {
	if c.Admin == (common.Address{}) {
		return ErrZeroAddress
	}
	if c.MinGoal <= 0 {
		return ErrInvalidGoal
	}
	if !c.EndTime.After(now) {
		return ErrPastEndTime
	}
	return nil
}

// ApplyContribution registers amount for the contribution record, bringing
// the campaign aggregates to their post-operation values. contrib must be the
// record for the contributing identity; a nil or zero-amount record means no
// live contribution. A previously withdrawn contribution may be re-armed: the
// ledger rejects "currently live", not "ever contributed".
func (c *Campaign) ApplyContribution(contrib *Contribution, amount int64, now time.Time) error {
	if c.Phase(now) != PhaseActive {
		return ErrCampaignEnded
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if contrib.Amount > 0 {
		return ErrAlreadyContributed
	}
	total, err := addChecked(c.CollectedFunds, amount)
	if err != nil {
		return err
	}
	contrib.Amount = amount
	contrib.UpdatedAt = now
	c.CollectedFunds = total
	c.NumberOfContributors++
	c.UpdatedAt = now
	return nil
}

// ReleaseContribution zeroes a live contribution before the deadline and
// returns the released amount.
func (c *Campaign) ReleaseContribution(contrib *Contribution, now time.Time) (int64, error) {
	if c.Phase(now) != PhaseActive {
		return 0, ErrCampaignEnded
	}
	return c.clearContribution(contrib, now)
}

// RefundContribution zeroes a live contribution after a failed campaign and
// returns the refunded amount. It is the post-deadline counterpart of
// ReleaseContribution; for any given contribution only one of the two can
// ever succeed.
func (c *Campaign) RefundContribution(contrib *Contribution, now time.Time) (int64, error) {
	if now.Before(c.EndTime) {
		return 0, ErrCampaignNotEnded
	}
	if c.CollectedFunds >= c.MinGoal {
		return 0, ErrGoalReached
	}
	return c.clearContribution(contrib, now)
}

func (c *Campaign) clearContribution(contrib *Contribution, now time.Time) (int64, error) {
	if contrib == nil || contrib.Amount == 0 {
		return 0, ErrNoContribution
	}
	amount := contrib.Amount
	contrib.Amount = 0
	contrib.UpdatedAt = now
	c.CollectedFunds -= amount
	c.NumberOfContributors--
	c.UpdatedAt = now
	return amount, nil
}

// Claim authorizes the admin settlement of a succeeded campaign and marks it
// claimed. The aggregates are left untouched so the contribution history
// stays auditable; the claimed marker is what makes the operation
// single-shot.
func (c *Campaign) Claim(caller common.Address, now time.Time) error {
	if caller != c.Admin {
		return ErrNotAdmin
	}
	switch c.Phase(now) {
	case PhaseActive:
		return ErrCampaignNotEnded
	case PhaseFailed:
		return ErrGoalNotReached
	}
	if c.FundsClaimed {
		return ErrFundsAlreadyClaimed
	}
	c.FundsClaimed = true
	c.UpdatedAt = now
	return nil
}

// addChecked fails fast on int64 overflow instead of wrapping. Both operands
// are known non-negative.
func addChecked(a, b int64) (int64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

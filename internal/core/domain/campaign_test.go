package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	admin = common.HexToAddress("0xA11CE00000000000000000000000000000000001")
	bob   = common.HexToAddress("0xB0B0000000000000000000000000000000000002")
)

func testCampaign(minGoal int64, endTime time.Time) *Campaign {
	return &Campaign{ID: 0, Admin: admin, MinGoal: minGoal, EndTime: endTime}
}

func TestPhaseDerivation(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		collected int64
		now       time.Time
		want      Phase
	}{
		{"before deadline", 0, end.Add(-time.Second), PhaseActive},
		{"at deadline short of goal", 999, end, PhaseFailed},
		{"at deadline exactly goal", 1000, end, PhaseSucceeded},
		{"after deadline over goal", 1100, end.Add(time.Hour), PhaseSucceeded},
		{"after deadline one unit short", 999, end.Add(time.Hour), PhaseFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCampaign(1000, end)
			c.CollectedFunds = tt.collected
			if got := c.Phase(tt.now); got != tt.want {
				t.Fatalf("Phase(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*Campaign)
		wantErr error
	}{
		{"valid", func(*Campaign) {}, nil},
		{"zero admin", func(c *Campaign) { c.Admin = common.Address{} }, ErrZeroAddress},
		{"zero goal", func(c *Campaign) { c.MinGoal = 0 }, ErrInvalidGoal},
		{"negative goal", func(c *Campaign) { c.MinGoal = -5 }, ErrInvalidGoal},
		{"end time now", func(c *Campaign) { c.EndTime = now }, ErrPastEndTime},
		{"end time past", func(c *Campaign) { c.EndTime = now.Add(-time.Hour) }, ErrPastEndTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCampaign(1000, now.Add(time.Hour))
			tt.mutate(c)
			if err := c.Validate(now); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyContribution(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := end.Add(-time.Hour)

	c := testCampaign(1000, end)
	contrib := &Contribution{CampaignID: 0, Contributor: bob}

	if err := c.ApplyContribution(contrib, 0, now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if err := c.ApplyContribution(contrib, -10, now); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	if err := c.ApplyContribution(contrib, 400, now); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if c.CollectedFunds != 400 || c.NumberOfContributors != 1 {
		t.Fatalf("aggregates after contribute: funds=%d contributors=%d", c.CollectedFunds, c.NumberOfContributors)
	}
	if err := c.ApplyContribution(contrib, 100, now); !errors.Is(err, ErrAlreadyContributed) {
		t.Fatalf("second contribution: got %v, want ErrAlreadyContributed", err)
	}
	if err := c.ApplyContribution(contrib, 100, end); !errors.Is(err, ErrCampaignEnded) {
		t.Fatalf("contribute at deadline: got %v, want ErrCampaignEnded", err)
	}
}

func TestContributionRoundTrip(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := end.Add(-time.Hour)

	c := testCampaign(1000, end)
	contrib := &Contribution{CampaignID: 0, Contributor: bob}

	if err := c.ApplyContribution(contrib, 250, now); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	amount, err := c.ReleaseContribution(contrib, now)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if amount != 250 {
		t.Fatalf("released %d, want 250", amount)
	}
	if c.CollectedFunds != 0 || c.NumberOfContributors != 0 {
		t.Fatalf("aggregates not restored: funds=%d contributors=%d", c.CollectedFunds, c.NumberOfContributors)
	}
	// The ledger rule is "not currently live", so contributing again is
	// allowed before the deadline.
	if err := c.ApplyContribution(contrib, 300, now); err != nil {
		t.Fatalf("re-contribute after withdrawal: %v", err)
	}
}

func TestReleaseContribution(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := end.Add(-time.Hour)

	c := testCampaign(1000, end)
	if _, err := c.ReleaseContribution(nil, now); !errors.Is(err, ErrNoContribution) {
		t.Fatalf("nil contribution: got %v, want ErrNoContribution", err)
	}
	contrib := &Contribution{CampaignID: 0, Contributor: bob}
	if _, err := c.ReleaseContribution(contrib, now); !errors.Is(err, ErrNoContribution) {
		t.Fatalf("zero contribution: got %v, want ErrNoContribution", err)
	}
	if err := c.ApplyContribution(contrib, 100, now); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := c.ReleaseContribution(contrib, end); !errors.Is(err, ErrCampaignEnded) {
		t.Fatalf("withdraw at deadline: got %v, want ErrCampaignEnded", err)
	}
}

func TestRefundContribution(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := end.Add(-time.Hour)
	after := end.Add(time.Hour)

	c := testCampaign(1000, end)
	contrib := &Contribution{CampaignID: 0, Contributor: bob}
	if err := c.ApplyContribution(contrib, 400, before); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	if _, err := c.RefundContribution(contrib, before); !errors.Is(err, ErrCampaignNotEnded) {
		t.Fatalf("refund pre-deadline: got %v, want ErrCampaignNotEnded", err)
	}

	amount, err := c.RefundContribution(contrib, after)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if amount != 400 {
		t.Fatalf("refunded %d, want 400", amount)
	}
	if _, err := c.RefundContribution(contrib, after); !errors.Is(err, ErrNoContribution) {
		t.Fatalf("second refund: got %v, want ErrNoContribution", err)
	}
}

func TestRefundRejectedWhenGoalReached(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := end.Add(-time.Hour)
	after := end.Add(time.Hour)

	c := testCampaign(1000, end)
	contrib := &Contribution{CampaignID: 0, Contributor: bob}
	if err := c.ApplyContribution(contrib, 1000, before); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := c.RefundContribution(contrib, after); !errors.Is(err, ErrGoalReached) {
		t.Fatalf("refund on success: got %v, want ErrGoalReached", err)
	}
}

func TestClaim(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := end.Add(-time.Hour)
	after := end.Add(time.Hour)

	c := testCampaign(1000, end)
	contrib := &Contribution{CampaignID: 0, Contributor: bob}
	if err := c.ApplyContribution(contrib, 1100, before); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	if err := c.Claim(bob, after); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("claim by non-admin: got %v, want ErrNotAdmin", err)
	}
	if err := c.Claim(admin, before); !errors.Is(err, ErrCampaignNotEnded) {
		t.Fatalf("claim pre-deadline: got %v, want ErrCampaignNotEnded", err)
	}
	if err := c.Claim(admin, after); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !c.FundsClaimed {
		t.Fatal("claim did not mark FundsClaimed")
	}
	if err := c.Claim(admin, after); !errors.Is(err, ErrFundsAlreadyClaimed) {
		t.Fatalf("second claim: got %v, want ErrFundsAlreadyClaimed", err)
	}
	// Aggregates stay untouched for audit.
	if c.CollectedFunds != 1100 || c.NumberOfContributors != 1 {
		t.Fatalf("claim mutated aggregates: funds=%d contributors=%d", c.CollectedFunds, c.NumberOfContributors)
	}
}

func TestClaimFailedCampaign(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	after := end.Add(time.Hour)

	c := testCampaign(1000, end)
	c.CollectedFunds = 400
	if err := c.Claim(admin, after); !errors.Is(err, ErrGoalNotReached) {
		t.Fatalf("claim on failure: got %v, want ErrGoalNotReached", err)
	}
}

func TestContributionOverflow(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := end.Add(-time.Hour)

	c := testCampaign(1000, end)
	c.CollectedFunds = math.MaxInt64 - 10
	contrib := &Contribution{CampaignID: 0, Contributor: bob}
	if err := c.ApplyContribution(contrib, 11, now); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("overflowing contribution: got %v, want ErrAmountOverflow", err)
	}
	if contrib.Amount != 0 || c.NumberOfContributors != 0 {
		t.Fatal("failed contribution left a partial mutation")
	}
}

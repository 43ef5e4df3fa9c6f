package port

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"stablefund/internal/core/domain"
)

// SettleFunc runs inside a repository mutation, after the ledger has been
// brought to its post-operation values and before they are committed. It is
// where the usecase invokes the external value transfer; returning an error
// rolls the entire mutation back, so a failed transfer never leaves the
// aggregates inconsistent with the live contributions. The campaign passed in
// is the post-mutation snapshot and amount is the value being moved. The
// returned amount is the value actually settled, which under yield custody
// may exceed the requested amount by accrued yield; repositories record it in
// the audit event.
type SettleFunc func(ctx context.Context, c *domain.Campaign, amount int64) (int64, error)

// EscrowRepository is the outbound persistence port for the escrow ledger.
// Implementations must serialize the mutating methods per campaign (row lock,
// per-campaign mutex) so that no two operations on the same campaign ever
// interleave, and must apply mutation, audit event and settle hook
// atomically.
type EscrowRepository interface {
	// CreateCampaign stores a validated campaign, allocating the next
	// identifier from a monotonically increasing counter starting at 0.
	// Identifiers are never reused and campaigns are never deleted.
	CreateCampaign(ctx context.Context, c *domain.Campaign) (int64, error)

	// GetCampaign returns the campaign or domain.ErrCampaignNotFound.
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)

	// GetContribution returns the contribution record for the pair, or nil
	// when the identity has never contributed to the campaign.
	GetContribution(ctx context.Context, campaignID int64, contributor common.Address) (*domain.Contribution, error)

	// Contribute applies domain.Campaign.ApplyContribution under the
	// campaign's exclusive lock, records receiptID on the contribution and
	// runs settle before committing.
	Contribute(ctx context.Context, campaignID int64, contributor common.Address, amount int64, receiptID uuid.UUID, now time.Time, settle SettleFunc) error

	// Withdraw applies domain.Campaign.ReleaseContribution and returns the
	// released amount.
	Withdraw(ctx context.Context, campaignID int64, contributor common.Address, now time.Time, settle SettleFunc) (int64, error)

	// EmergencyWithdraw applies domain.Campaign.RefundContribution and
	// returns the refunded amount.
	EmergencyWithdraw(ctx context.Context, campaignID int64, contributor common.Address, now time.Time, settle SettleFunc) (int64, error)

	// Claim applies domain.Campaign.Claim; settle receives CollectedFunds as
	// the amount (the raw-custody payout basis) and its returned amount, the
	// value actually paid out, is recorded in the audit event.
	Claim(ctx context.Context, campaignID int64, caller common.Address, now time.Time, settle SettleFunc) error

	// ListEvents returns the campaign's audit log in append order.
	ListEvents(ctx context.Context, campaignID int64) ([]domain.Event, error)
}

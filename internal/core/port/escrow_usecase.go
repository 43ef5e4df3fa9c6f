package port

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"stablefund/internal/core/domain"
)

// EscrowUseCase is the primary port into the escrow ledger. Every operation
// validates the caller against the campaign lifecycle and the ledger
// invariants before any value moves, and surfaces failures as the sentinels
// in the domain package.
type EscrowUseCase interface {
	// CreateCampaign registers a new active campaign and returns its
	// identifier. minGoal must be positive and endTime strictly future.
	CreateCampaign(ctx context.Context, admin common.Address, minGoal int64, endTime time.Time) (int64, error)

	// Contribute escrows amount for the contributor. At most one live
	// contribution per identity per campaign; a withdrawn contribution may
	// be re-made before the deadline. The returned receipt id is uuid.Nil
	// unless the custody strategy mints receipts.
	Contribute(ctx context.Context, campaignID int64, contributor common.Address, amount int64) (uuid.UUID, error)

	// Withdraw returns the contributor's escrowed amount before the
	// deadline and reports how much was released.
	Withdraw(ctx context.Context, campaignID int64, contributor common.Address) (int64, error)

	// EmergencyWithdraw refunds the contributor after a failed campaign.
	EmergencyWithdraw(ctx context.Context, campaignID int64, contributor common.Address) (int64, error)

	// ClaimFunds pays the custodied balance of a succeeded campaign to its
	// admin and reports the amount paid, which may exceed CollectedFunds by
	// accrued yield under yield custody.
	ClaimFunds(ctx context.Context, campaignID int64, caller common.Address) (int64, error)

	// GetCampaign returns the campaign with its derived phase.
	GetCampaign(ctx context.Context, campaignID int64) (*CampaignStatus, error)

	// GetContribution returns the ledger entry for the pair, or nil when
	// the identity never contributed.
	GetContribution(ctx context.Context, campaignID int64, contributor common.Address) (*domain.Contribution, error)

	// ListEvents returns the campaign's audit log.
	ListEvents(ctx context.Context, campaignID int64) ([]domain.Event, error)
}

// CampaignStatus pairs a campaign snapshot with the phase derived at read
// time. It is a DTO for the HTTP layer.
type CampaignStatus struct {
	Campaign domain.Campaign
	Phase    domain.Phase
}

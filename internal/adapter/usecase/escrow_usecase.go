package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"stablefund/internal/core/domain"
	"stablefund/internal/core/port"
)

// EscrowUseCase implements port.EscrowUseCase. It orchestrates the lifecycle
// checks in the domain package, the repository's per-campaign atomic
// mutations and the custody strategy. Every operation follows the same
// ordering: validate, mutate the ledger to its post-operation values, and
// only then move value through the custody strategy inside the repository's
// settle hook, so a failed transfer rolls the mutation back and a concurrent
// call never observes a half-applied state.
type EscrowUseCase struct {
	repo    port.EscrowRepository
	custody CustodyStrategy

	// now is the clock used for every lifecycle decision. Tests pin it.
	now func() time.Time
}

// NewEscrowUseCase creates the multi-campaign escrow engine.
func NewEscrowUseCase(repo port.EscrowRepository, custody CustodyStrategy) *EscrowUseCase {
	return &EscrowUseCase{repo: repo, custody: custody, now: time.Now}
}

// CreateCampaign validates the parameters and registers a new campaign.
func (u *EscrowUseCase) CreateCampaign(ctx context.Context, admin common.Address, minGoal int64, endTime time.Time) (int64, error) {
	now := u.now()
	c := &domain.Campaign{
		Admin:     admin,
		MinGoal:   minGoal,
		EndTime:   endTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(now); err != nil {
		return 0, err
	}
	return u.repo.CreateCampaign(ctx, c)
}

// Contribute escrows amount for the contributor and deposits it into
// custody. The receipt id is minted only under a receipt-issuing strategy.
func (u *EscrowUseCase) Contribute(ctx context.Context, campaignID int64, contributor common.Address, amount int64) (uuid.UUID, error) {
	if contributor == (common.Address{}) {
		return uuid.Nil, domain.ErrZeroAddress
	}
	receiptID := uuid.Nil
	if u.custody.IssuesReceipts() {
		receiptID = uuid.New()
	}
	err := u.repo.Contribute(ctx, campaignID, contributor, amount, receiptID, u.now(),
		func(ctx context.Context, c *domain.Campaign, amt int64) (int64, error) {
			if err := u.custody.Deposit(ctx, c.ID, contributor, amt, receiptID); err != nil {
				return 0, err
			}
			return amt, nil
		})
	if err != nil {
		return uuid.Nil, err
	}
	return receiptID, nil
}

// Withdraw releases the contributor's live contribution before the deadline.
func (u *EscrowUseCase) Withdraw(ctx context.Context, campaignID int64, contributor common.Address) (int64, error) {
	return u.repo.Withdraw(ctx, campaignID, contributor, u.now(),
		func(ctx context.Context, c *domain.Campaign, amt int64) (int64, error) {
			if err := u.custody.Refund(ctx, c.ID, contributor, amt); err != nil {
				return 0, err
			}
			return amt, nil
		})
}

// EmergencyWithdraw refunds the contributor once the campaign has failed.
func (u *EscrowUseCase) EmergencyWithdraw(ctx context.Context, campaignID int64, contributor common.Address) (int64, error) {
	return u.repo.EmergencyWithdraw(ctx, campaignID, contributor, u.now(),
		func(ctx context.Context, c *domain.Campaign, amt int64) (int64, error) {
			if err := u.custody.Refund(ctx, c.ID, contributor, amt); err != nil {
				return 0, err
			}
			return amt, nil
		})
}

// ClaimFunds settles a succeeded campaign's custodied balance to its admin.
func (u *EscrowUseCase) ClaimFunds(ctx context.Context, campaignID int64, caller common.Address) (int64, error) {
	var paid int64
	err := u.repo.Claim(ctx, campaignID, caller, u.now(),
		func(ctx context.Context, c *domain.Campaign, collected int64) (int64, error) {
			p, err := u.custody.Payout(ctx, c.ID, c.Admin, collected)
			if err != nil {
				return 0, err
			}
			paid = p
			return p, nil
		})
	if err != nil {
		return 0, err
	}
	return paid, nil
}

// GetCampaign returns the campaign with its phase derived at call time.
func (u *EscrowUseCase) GetCampaign(ctx context.Context, campaignID int64) (*port.CampaignStatus, error) {
	c, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return &port.CampaignStatus{Campaign: *c, Phase: c.Phase(u.now())}, nil
}

// GetContribution returns the ledger entry for the pair, nil if absent.
func (u *EscrowUseCase) GetContribution(ctx context.Context, campaignID int64, contributor common.Address) (*domain.Contribution, error) {
	if _, err := u.repo.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return u.repo.GetContribution(ctx, campaignID, contributor)
}

// ListEvents returns the campaign's audit log.
func (u *EscrowUseCase) ListEvents(ctx context.Context, campaignID int64) ([]domain.Event, error) {
	if _, err := u.repo.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return u.repo.ListEvents(ctx, campaignID)
}

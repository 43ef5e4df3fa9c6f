package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"stablefund/internal/core/domain"
	"stablefund/internal/core/port"
)

// SingleCampaign is the single-campaign deployment shape: one campaign,
// created at construction with id allocated by the registry (0 on a fresh
// store), and no further campaign creation. It delegates to the shared
// engine, which is where all escrow semantics live.
type SingleCampaign struct {
	engine *EscrowUseCase
	id     int64
}

// NewSingleCampaign creates the campaign and returns the wrapper bound to it.
func NewSingleCampaign(ctx context.Context, engine *EscrowUseCase, admin common.Address, minGoal int64, endTime time.Time) (*SingleCampaign, error) {
	id, err := engine.CreateCampaign(ctx, admin, minGoal, endTime)
	if err != nil {
		return nil, err
	}
	return &SingleCampaign{engine: engine, id: id}, nil
}

// ID returns the wrapped campaign's identifier.
func (s *SingleCampaign) ID() int64 { return s.id }

func (s *SingleCampaign) Contribute(ctx context.Context, contributor common.Address, amount int64) (uuid.UUID, error) {
	return s.engine.Contribute(ctx, s.id, contributor, amount)
}

func (s *SingleCampaign) Withdraw(ctx context.Context, contributor common.Address) (int64, error) {
	return s.engine.Withdraw(ctx, s.id, contributor)
}

func (s *SingleCampaign) EmergencyWithdraw(ctx context.Context, contributor common.Address) (int64, error) {
	return s.engine.EmergencyWithdraw(ctx, s.id, contributor)
}

func (s *SingleCampaign) ClaimFunds(ctx context.Context, caller common.Address) (int64, error) {
	return s.engine.ClaimFunds(ctx, s.id, caller)
}

func (s *SingleCampaign) Status(ctx context.Context) (*port.CampaignStatus, error) {
	return s.engine.GetCampaign(ctx, s.id)
}

func (s *SingleCampaign) Contribution(ctx context.Context, contributor common.Address) (*domain.Contribution, error) {
	return s.engine.GetContribution(ctx, s.id, contributor)
}

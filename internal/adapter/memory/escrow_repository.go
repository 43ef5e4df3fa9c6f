// Package memory provides an in-process EscrowRepository. It backs tests and
// the store=memory deployment mode; durability is traded for zero setup.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"stablefund/internal/core/domain"
	"stablefund/internal/core/port"
)

// EscrowRepository keeps the whole ledger in memory. A mutex per campaign
// serializes mutations on that campaign while operations on different
// campaigns proceed in parallel. Each mutation works on copies and writes
// back only after the settle hook succeeds, so a failed transfer leaves no
// trace.
type EscrowRepository struct {
	mu        sync.Mutex // guards campaigns map and counter
	campaigns map[int64]*campaignState
	counter   int64
}

type campaignState struct {
	mu            sync.Mutex
	campaign      domain.Campaign
	contributions map[common.Address]domain.Contribution
	events        []domain.Event
}

// NewEscrowRepository returns an empty in-memory ledger. The campaign
// counter starts at 0, matching the registry contract.
func NewEscrowRepository() *EscrowRepository {
	return &EscrowRepository{campaigns: make(map[int64]*campaignState)}
}

func (r *EscrowRepository) CreateCampaign(_ context.Context, c *domain.Campaign) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.counter
	r.counter++

	stored := *c
	stored.ID = id
	r.campaigns[id] = &campaignState{
		campaign:      stored,
		contributions: make(map[common.Address]domain.Contribution),
		events: []domain.Event{{
			ID:         uuid.New(),
			CampaignID: id,
			Kind:       domain.EventCampaignCreated,
			Actor:      stored.Admin,
			CreatedAt:  stored.CreatedAt,
		}},
	}
	return id, nil
}

func (r *EscrowRepository) state(id int64) (*campaignState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return st, nil
}

func (r *EscrowRepository) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	st, err := r.state(id)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	c := st.campaign
	return &c, nil
}

func (r *EscrowRepository) GetContribution(_ context.Context, campaignID int64, contributor common.Address) (*domain.Contribution, error) {
	st, err := r.state(campaignID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	contrib, ok := st.contributions[contributor]
	if !ok {
		return nil, nil
	}
	return &contrib, nil
}

func (r *EscrowRepository) Contribute(ctx context.Context, campaignID int64, contributor common.Address, amount int64, receiptID uuid.UUID, now time.Time, settle port.SettleFunc) error {
	st, err := r.state(campaignID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	c := st.campaign
	contrib, ok := st.contributions[contributor]
	if !ok {
		contrib = domain.Contribution{
			CampaignID:  campaignID,
			Contributor: contributor,
			CreatedAt:   now,
		}
	}
	if err := c.ApplyContribution(&contrib, amount, now); err != nil {
		return err
	}
	contrib.ReceiptID = receiptID
	if _, err := settle(ctx, &c, amount); err != nil {
		return err
	}
	st.campaign = c
	st.contributions[contributor] = contrib
	st.append(domain.EventContributionMade, contributor, amount, now)
	return nil
}

func (r *EscrowRepository) Withdraw(ctx context.Context, campaignID int64, contributor common.Address, now time.Time, settle port.SettleFunc) (int64, error) {
	return r.clear(ctx, campaignID, contributor, now, settle, false)
}

func (r *EscrowRepository) EmergencyWithdraw(ctx context.Context, campaignID int64, contributor common.Address, now time.Time, settle port.SettleFunc) (int64, error) {
	return r.clear(ctx, campaignID, contributor, now, settle, true)
}

func (r *EscrowRepository) clear(ctx context.Context, campaignID int64, contributor common.Address, now time.Time, settle port.SettleFunc, emergency bool) (int64, error) {
	st, err := r.state(campaignID)
	if err != nil {
		return 0, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	c := st.campaign
	stored, ok := st.contributions[contributor]
	var contrib *domain.Contribution
	if ok {
		contrib = &stored
	}
	var amount int64
	if emergency {
		amount, err = c.RefundContribution(contrib, now)
	} else {
		amount, err = c.ReleaseContribution(contrib, now)
	}
	if err != nil {
		return 0, err
	}
	if _, err := settle(ctx, &c, amount); err != nil {
		return 0, err
	}
	st.campaign = c
	st.contributions[contributor] = *contrib
	kind := domain.EventContributionWithdrawn
	if emergency {
		kind = domain.EventContributionRefunded
	}
	st.append(kind, contributor, amount, now)
	return amount, nil
}

func (r *EscrowRepository) Claim(ctx context.Context, campaignID int64, caller common.Address, now time.Time, settle port.SettleFunc) error {
	st, err := r.state(campaignID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	c := st.campaign
	if err := c.Claim(caller, now); err != nil {
		return err
	}
	paid, err := settle(ctx, &c, c.CollectedFunds)
	if err != nil {
		return err
	}
	st.campaign = c
	st.append(domain.EventFundsClaimed, caller, paid, now)
	return nil
}

func (r *EscrowRepository) ListEvents(_ context.Context, campaignID int64) ([]domain.Event, error) {
	st, err := r.state(campaignID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	events := make([]domain.Event, len(st.events))
	copy(events, st.events)
	return events, nil
}

func (st *campaignState) append(kind domain.EventKind, actor common.Address, amount int64, now time.Time) {
	st.events = append(st.events, domain.Event{
		ID:         uuid.New(),
		CampaignID: st.campaign.ID,
		Kind:       kind,
		Actor:      actor,
		Amount:     amount,
		CreatedAt:  now,
	})
}

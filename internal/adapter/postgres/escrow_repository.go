package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stablefund/internal/core/domain"
	"stablefund/internal/core/port"
)

// EscrowRepository implements port.EscrowRepository on PostgreSQL using
// pgxpool. Per-campaign serialization comes from `SELECT ... FOR UPDATE` on
// the campaign row inside a serializable transaction: the ledger mutation,
// the audit event and the settle hook all sit between the lock and the
// commit, so a settle failure rolls everything back and concurrent
// operations on the same campaign queue on the row lock.
type EscrowRepository struct {
	pool *pgxpool.Pool
}

// NewEscrowRepository returns a new repository instance.
func NewEscrowRepository(pool *pgxpool.Pool) *EscrowRepository {
	return &EscrowRepository{pool: pool}
}

const campaignColumns = `id, admin_address, min_goal, end_time, collected_funds, number_of_contributors, funds_claimed, created_at, updated_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c     domain.Campaign
		admin string
	)
	err := row.Scan(&c.ID, &admin, &c.MinGoal, &c.EndTime, &c.CollectedFunds, &c.NumberOfContributors, &c.FundsClaimed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	c.Admin = common.HexToAddress(admin)
	return &c, nil
}

func (r *EscrowRepository) CreateCampaign(ctx context.Context, c *domain.Campaign) (id int64, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	// The commit result must reach the caller: a commit-time failure means
	// the insert did not persist.
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = tx.QueryRow(ctx, `INSERT INTO campaigns
    (admin_address, min_goal, end_time, collected_funds, number_of_contributors, funds_claimed, created_at, updated_at)
VALUES ($1,$2,$3,0,0,false,$4,$4) RETURNING id`,
		c.Admin.Hex(), c.MinGoal, c.EndTime, c.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	c.ID = id
	err = insertEvent(ctx, tx, &domain.Event{
		ID:         uuid.New(),
		CampaignID: id,
		Kind:       domain.EventCampaignCreated,
		Actor:      c.Admin,
		CreatedAt:  c.CreatedAt,
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *EscrowRepository) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	return scanCampaign(row)
}

func (r *EscrowRepository) GetContribution(ctx context.Context, campaignID int64, contributor common.Address) (*domain.Contribution, error) {
	return getContribution(ctx, r.pool, campaignID, contributor, false)
}

// querier covers both pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getContribution(ctx context.Context, q querier, campaignID int64, contributor common.Address, forUpdate bool) (*domain.Contribution, error) {
	query := `SELECT campaign_id, contributor_address, amount, receipt_id, created_at, updated_at
FROM contributions WHERE campaign_id = $1 AND contributor_address = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var (
		contrib   domain.Contribution
		addr      string
		receiptID *uuid.UUID
	)
	err := q.QueryRow(ctx, query, campaignID, contributor.Hex()).
		Scan(&contrib.CampaignID, &addr, &contrib.Amount, &receiptID, &contrib.CreatedAt, &contrib.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	contrib.Contributor = common.HexToAddress(addr)
	if receiptID != nil {
		contrib.ReceiptID = *receiptID
	}
	return &contrib, nil
}

// withCampaign runs fn with the campaign row locked. fn performs the domain
// mutation, persists the new values through the transaction and invokes the
// settle hook; any error aborts the transaction. The commit error is surfaced
// to the caller: the settle hook has already moved value by commit time, so a
// silently dropped commit would leave the ledger behind the transfer.
func (r *EscrowRepository) withCampaign(ctx context.Context, campaignID int64, fn func(tx pgx.Tx, c *domain.Campaign) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	row := tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID)
	c, err := scanCampaign(row)
	if err != nil {
		return err
	}
	err = fn(tx, c)
	return err
}

func updateCampaign(ctx context.Context, tx pgx.Tx, c *domain.Campaign) error {
	_, err := tx.Exec(ctx, `UPDATE campaigns
SET collected_funds = $1, number_of_contributors = $2, funds_claimed = $3, updated_at = $4
WHERE id = $5`,
		c.CollectedFunds, c.NumberOfContributors, c.FundsClaimed, c.UpdatedAt, c.ID)
	return err
}

func upsertContribution(ctx context.Context, tx pgx.Tx, contrib *domain.Contribution) error {
	var receiptID *uuid.UUID
	if contrib.ReceiptID != uuid.Nil {
		id := contrib.ReceiptID
		receiptID = &id
	}
	_, err := tx.Exec(ctx, `INSERT INTO contributions
    (campaign_id, contributor_address, amount, receipt_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (campaign_id, contributor_address)
DO UPDATE SET amount = EXCLUDED.amount, receipt_id = EXCLUDED.receipt_id, updated_at = EXCLUDED.updated_at`,
		contrib.CampaignID, contrib.Contributor.Hex(), contrib.Amount, receiptID, contrib.CreatedAt, contrib.UpdatedAt)
	return err
}

func insertEvent(ctx context.Context, tx pgx.Tx, e *domain.Event) error {
	_, err := tx.Exec(ctx, `INSERT INTO escrow_events
    (id, campaign_id, kind, actor_address, amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.CampaignID, string(e.Kind), e.Actor.Hex(), e.Amount, e.CreatedAt)
	return err
}

func (r *EscrowRepository) Contribute(ctx context.Context, campaignID int64, contributor common.Address, amount int64, receiptID uuid.UUID, now time.Time, settle port.SettleFunc) error {
	return r.withCampaign(ctx, campaignID, func(tx pgx.Tx, c *domain.Campaign) error {
		contrib, err := getContribution(ctx, tx, campaignID, contributor, true)
		if err != nil {
			return err
		}
		if contrib == nil {
			contrib = &domain.Contribution{
				CampaignID:  campaignID,
				Contributor: contributor,
				CreatedAt:   now,
			}
		}
		if err := c.ApplyContribution(contrib, amount, now); err != nil {
			return err
		}
		contrib.ReceiptID = receiptID
		if err := updateCampaign(ctx, tx, c); err != nil {
			return err
		}
		if err := upsertContribution(ctx, tx, contrib); err != nil {
			return err
		}
		err = insertEvent(ctx, tx, &domain.Event{
			ID:         uuid.New(),
			CampaignID: campaignID,
			Kind:       domain.EventContributionMade,
			Actor:      contributor,
			Amount:     amount,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		_, err = settle(ctx, c, amount)
		return err
	})
}

func (r *EscrowRepository) Withdraw(ctx context.Context, campaignID int64, contributor common.Address, now time.Time, settle port.SettleFunc) (int64, error) {
	return r.clear(ctx, campaignID, contributor, now, settle, false)
}

func (r *EscrowRepository) EmergencyWithdraw(ctx context.Context, campaignID int64, contributor common.Address, now time.Time, settle port.SettleFunc) (int64, error) {
	return r.clear(ctx, campaignID, contributor, now, settle, true)
}

func (r *EscrowRepository) clear(ctx context.Context, campaignID int64, contributor common.Address, now time.Time, settle port.SettleFunc, emergency bool) (int64, error) {
	var amount int64
	err := r.withCampaign(ctx, campaignID, func(tx pgx.Tx, c *domain.Campaign) error {
		contrib, err := getContribution(ctx, tx, campaignID, contributor, true)
		if err != nil {
			return err
		}
		if emergency {
			amount, err = c.RefundContribution(contrib, now)
		} else {
			amount, err = c.ReleaseContribution(contrib, now)
		}
		if err != nil {
			return err
		}
		if err := updateCampaign(ctx, tx, c); err != nil {
			return err
		}
		if err := upsertContribution(ctx, tx, contrib); err != nil {
			return err
		}
		kind := domain.EventContributionWithdrawn
		if emergency {
			kind = domain.EventContributionRefunded
		}
		err = insertEvent(ctx, tx, &domain.Event{
			ID:         uuid.New(),
			CampaignID: campaignID,
			Kind:       kind,
			Actor:      contributor,
			Amount:     amount,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		_, err = settle(ctx, c, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

func (r *EscrowRepository) Claim(ctx context.Context, campaignID int64, caller common.Address, now time.Time, settle port.SettleFunc) error {
	return r.withCampaign(ctx, campaignID, func(tx pgx.Tx, c *domain.Campaign) error {
		if err := c.Claim(caller, now); err != nil {
			return err
		}
		if err := updateCampaign(ctx, tx, c); err != nil {
			return err
		}
		// Settle before writing the event so the event can record the
		// amount actually paid, which under yield custody includes
		// accrued yield.
		paid, err := settle(ctx, c, c.CollectedFunds)
		if err != nil {
			return err
		}
		return insertEvent(ctx, tx, &domain.Event{
			ID:         uuid.New(),
			CampaignID: campaignID,
			Kind:       domain.EventFundsClaimed,
			Actor:      caller,
			Amount:     paid,
			CreatedAt:  now,
		})
	})
}

func (r *EscrowRepository) ListEvents(ctx context.Context, campaignID int64) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, campaign_id, kind, actor_address, amount, created_at
FROM escrow_events WHERE campaign_id = $1 ORDER BY seq`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		var (
			e     domain.Event
			kind  string
			actor string
		)
		err := row.Scan(&e.ID, &e.CampaignID, &kind, &actor, &e.Amount, &e.CreatedAt)
		e.Kind = domain.EventKind(kind)
		e.Actor = common.HexToAddress(actor)
		return e, err
	})
}

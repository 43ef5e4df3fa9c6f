package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// EventKind labels an audit event appended after a successful state change.
type EventKind string

const (
	EventCampaignCreated       EventKind = "campaign_created"
	EventContributionMade      EventKind = "contribution_made"
	EventContributionWithdrawn EventKind = "contribution_withdrawn"
	EventContributionRefunded  EventKind = "contribution_refunded"
	EventFundsClaimed          EventKind = "funds_claimed"
)

// Event is one entry of the per-campaign audit log. Events are written in the
// same transaction as the ledger mutation they describe, so the log never
// records a change that was rolled back.
type Event struct {
	ID         uuid.UUID
	CampaignID int64
	Kind       EventKind
	Actor      common.Address
	Amount     int64
	CreatedAt  time.Time
}

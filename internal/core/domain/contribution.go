package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Contribution is the ledger entry for one (campaign, contributor) pair.
// Amount zero means no live contribution; the record is kept after a
// withdrawal so the audit trail survives and a later re-contribution reuses
// the same row. ReceiptID is uuid.Nil unless the custody strategy minted a
// receipt token for this contribution.
type Contribution struct {
	CampaignID  int64
	Contributor common.Address
	Amount      int64
	ReceiptID   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Live reports whether the contribution currently escrows funds.
func (c *Contribution) Live() bool {
	return c != nil && c.Amount > 0
}

package escrow

import (
	"time"

	"github.com/escrowhq/escrow-gateway/internal/currency"
)

type Status string

const (
	StatusCreated  Status = "created"
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusDisputed Status = "disputed"
	StatusResolved Status = "resolved"
	StatusClaimed  Status = "claimed"
)

// DisputeEntry is one party's recorded position: a free-text reason and a
// proposed buyer-refund percentage. Entries are ordered by submission time,
// the latest entry per party is that party's current position.
type DisputeEntry struct {
	ID            string    `json:"id"`
	Party         string    `json:"party"` // wallet address of the submitter
	Reason        string    `json:"reason"`
	RefundPercent int       `json:"refundPercent"` // proposed buyer refund, 0-100
	CreatedAt     time.Time `json:"createdAt"`
}

type Contract struct {
	ID              string         `json:"id"`
	ContractAddress string         `json:"contractAddress,omitempty"` // empty until the counterparty funds it
	BuyerAddress    string         `json:"buyerAddress"`
	BuyerEmail      string         `json:"buyerEmail"`
	SellerAddress   string         `json:"sellerAddress"`
	SellerEmail     string         `json:"sellerEmail"`
	Amount          int64          `json:"amount"` // stablecoin micro-units
	Currency        string         `json:"currency"`
	Description     string         `json:"description"`
	ExpiresAt       time.Time      `json:"expiresAt"`
	Status          Status         `json:"status"`
	DisputeEntries  []DisputeEntry `json:"disputeEntries,omitempty"`
	AdminNotes      string         `json:"adminNotes,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// PendingContract is the pre-acceptance variant: created and stored in the
// backend but with no on-chain address yet.
type PendingContract struct {
	ID          string    `json:"id"`
	BuyerEmail  string    `json:"buyerEmail"`
	SellerAddr  string    `json:"sellerAddress"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EffectiveStatus recomputes the display status locally: a contract past its
// expiry that nobody disputed, resolved or claimed shows as expired even if
// the stored record still says active. Authority stays with the backend.
func (c *Contract) EffectiveStatus(now time.Time) Status {
	switch c.Status {
	case StatusDisputed, StatusResolved, StatusClaimed:
		return c.Status
	}
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		return StatusExpired
	}
	return c.Status
}

func (c *Contract) DisplayAmount() string {
	return currency.Display(c.Amount, c.Currency)
}

// LatestEntryFrom returns the most recent dispute entry submitted by any
// party other than the given one, nil when the counterparty has not weighed
// in yet.
func LatestCounterpartyEntry(entries []DisputeEntry, party string) *DisputeEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Party != party {
			return &entries[i]
		}
	}
	return nil
}

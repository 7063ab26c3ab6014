package model

import "time"

type BillStatus string

const (
	BillSent BillStatus = "sent"
	BillPaid BillStatus = "paid"
)

// Bill is the settlement document for a completed booking, one per
// booking. Amount always equals AIPrice + SparePartPrice.
type Bill struct {
	ID             string     `json:"id" db:"id"`
	BookingID      string     `json:"booking_id" db:"booking_id"`
	UserID         string     `json:"user_id" db:"user_id"`
	ServicemanID   string     `json:"serviceman_id" db:"serviceman_id"`
	Amount         float64    `json:"amount" db:"amount"`
	SparePartPrice float64    `json:"spare_part_price" db:"spare_part_price"`
	AIPrice        float64    `json:"ai_price" db:"ai_price"`
	Description    string     `json:"description" db:"description"`
	Status         BillStatus `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// VisibleTo reports whether principalID is a party to the bill.
func (b *Bill) VisibleTo(principalID string) bool {
	return b.UserID == principalID || b.ServicemanID == principalID
}

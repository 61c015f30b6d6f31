package domain

import "github.com/shopspring/decimal"

// Room is a bookable unit. Rooms are pre-existing and read-only in the
// reservation workflow; Type and Status are the joined reference names.
type Room struct {
	ID       string          `json:"id"`
	Number   string          `json:"number"`
	Capacity int             `json:"capacity"`
	Price    decimal.Decimal `json:"price"`
	Type     string          `json:"type"`
	Status   string          `json:"status"`
}

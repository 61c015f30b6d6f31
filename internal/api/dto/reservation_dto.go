package dto

import "github.com/shopspring/decimal"

// RoomSummary is the room shape offered during selection.
type RoomSummary struct {
	ID       string          `json:"id"`
	Number   string          `json:"number"`
	Capacity int             `json:"capacity"`
	Price    decimal.Decimal `json:"price"`
	Type     string          `json:"type"`
	Status   string          `json:"status"`
}

// ConfirmationResponse carries pricing for a stay before commit.
type ConfirmationResponse struct {
	Customer    CustomerSummary `json:"customer"`
	Room        RoomSummary     `json:"room"`
	Nights      int             `json:"nights"`
	DownPayment decimal.Decimal `json:"down_payment"`
}

// PayRequest is the commit payload.
type PayRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// TransactionResponse is the committed reservation.
type TransactionResponse struct {
	ID            string `json:"id"`
	ReferenceCode string `json:"reference_code"`
	UserID        string `json:"user_id"`
	CustomerID    string `json:"customer_id"`
	RoomID        string `json:"room_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Status        string `json:"status"`
}

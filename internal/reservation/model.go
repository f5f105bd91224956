package reservation

import "time"

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

// Reservation is a buyer's claim against a listing's quantity, subject
// to farmer approval. Total is always recomputed server-side.
type Reservation struct {
	ID              string         `json:"id"`
	BuyerID         string         `json:"buyer_id"`
	ListingID       string         `json:"listing_id"`
	Quantity        int            `json:"quantity"`
	UnitPriceCents  int64          `json:"unit_price_cents"`
	TotalCents      int64          `json:"total_cents"`
	DeliveryMethod  DeliveryMethod `json:"delivery_method"`
	DeliveryAddress string         `json:"delivery_address,omitempty"`
	Status          Status         `json:"status"`
	BuyerNotes      string         `json:"buyer_notes,omitempty"`
	FarmerNotes     string         `json:"farmer_notes,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ApprovedBy      string         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

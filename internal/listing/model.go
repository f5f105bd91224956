package listing

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
)

// Units of measure accepted for a listing quantity.
var ValidUnits = map[string]bool{
	"kg": true, "g": true, "basket": true, "bag": true,
	"carton": true, "piece": true, "bunch": true, "liter": true,
}

// Listing is a farmer's sellable product record. Quantity only moves
// down, through reservation approval; at zero the listing flips to sold.
type Listing struct {
	ID          string    `json:"id"`
	FarmerID    string    `json:"farmer_id"`
	ProductName string    `json:"product_name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Quantity    int       `json:"quantity"`
	Unit        string    `json:"unit"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      Status    `json:"status"`
	Archived    bool      `json:"archived,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

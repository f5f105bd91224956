package user

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never return
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Approved  bool      `json:"approved"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// FarmerProfile is the farmer-side extension of a user account.
type FarmerProfile struct {
	FarmerID   string `json:"farmer_id"`
	Location   string `json:"location,omitempty"`
	TrustBadge bool   `json:"trust_badge"`
}

// BuyerProfile is the buyer-side extension of a user account.
type BuyerProfile struct {
	BuyerID                 string `json:"buyer_id"`
	Location                string `json:"location,omitempty"`
	PreferredDeliveryMethod string `json:"preferred_delivery_method"`
	DeliveryAddress         string `json:"delivery_address,omitempty"`
}

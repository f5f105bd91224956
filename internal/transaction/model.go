package transaction

import "time"

type PaymentMethod string

const (
	PayCash         PaymentMethod = "cash"
	PayBankTransfer PaymentMethod = "bank_transfer"
	PayMobileMoney  PaymentMethod = "mobile_money"
	PayOther        PaymentMethod = "other"
)

var ValidPaymentMethods = map[PaymentMethod]bool{
	PayCash: true, PayBankTransfer: true, PayMobileMoney: true, PayOther: true,
}

// Transaction tracks the off-platform payment for an approved
// reservation: the buyer uploads a receipt, the farmer verifies it.
type Transaction struct {
	ID                string        `json:"id"`
	ReservationID     string        `json:"reservation_id"`
	BuyerID           string        `json:"buyer_id"`
	FarmerID          string        `json:"farmer_id"`
	TotalCents        int64         `json:"total_cents"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	ReceiptURL        string        `json:"receipt_url,omitempty"`
	ReceiptNotes      string        `json:"receipt_notes,omitempty"`
	VerificationNotes string        `json:"verification_notes,omitempty"`
	VerifiedBy        string        `json:"verified_by,omitempty"`
	VerifiedAt        *time.Time    `json:"verified_at,omitempty"`
	Status            Status        `json:"status"`
	DeliveryMethod    string        `json:"delivery_method"`
	DeliveryAddress   string        `json:"delivery_address,omitempty"`
	DeliveryDate      *time.Time    `json:"delivery_date,omitempty"`
	DeliveryNotes     string        `json:"delivery_notes,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
}

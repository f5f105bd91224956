package events

import (
	"encoding/json"
	"time"
)

const (
	EventReservationCreated   = "ReservationCreated"
	EventReservationApproved  = "ReservationApproved"
	EventReservationRejected  = "ReservationRejected"
	EventReservationCancelled = "ReservationCancelled"
	EventReservationReady     = "ReservationReady"
	EventReceiptUploaded      = "ReceiptUploaded"
	EventReceiptVerified      = "ReceiptVerified"
	EventReceiptRejected      = "ReceiptRejected"
	EventTransactionCompleted = "TransactionCompleted"
	EventTransactionCancelled = "TransactionCancelled"
)

// Envelope is the versioned wrapper around every lifecycle event
// published to the stream.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload types per event ----

type ReservationCreatedPayload struct {
	ReservationID string `json:"reservation_id"`
	ListingID     string `json:"listing_id"`
	BuyerID       string `json:"buyer_id"`
	Quantity      int    `json:"quantity"`
	TotalCents    int64  `json:"total_cents"`
}

type ReservationDecidedPayload struct {
	ReservationID string `json:"reservation_id"`
	ListingID     string `json:"listing_id"`
	DecidedBy     string `json:"decided_by"`
	Reason        string `json:"reason,omitempty"`
	RemainingQty  int    `json:"remaining_qty"`
	ListingSold   bool   `json:"listing_sold"`
}

type ReservationCancelledPayload struct {
	ReservationID string `json:"reservation_id"`
	ListingID     string `json:"listing_id"`
	FromStatus    string `json:"from_status"`
}

type ReservationReadyPayload struct {
	ReservationID string `json:"reservation_id"`
	ListingID     string `json:"listing_id"`
	MarkedBy      string `json:"marked_by"`
}

type ReceiptPayload struct {
	TransactionID string `json:"transaction_id"`
	ReservationID string `json:"reservation_id"`
	ActorID       string `json:"actor_id"`
	Notes         string `json:"notes,omitempty"`
}

type TransactionClosedPayload struct {
	TransactionID string `json:"transaction_id"`
	ReservationID string `json:"reservation_id"`
	FinalStatus   string `json:"final_status"`
	TotalCents    int64  `json:"total_cents"`
}

package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/fault"
)

// Pure receipt state machine; persistence lives in store.go.

// NewForReservation starts payment tracking for a freshly approved
// reservation.
func NewForReservation(reservationID, buyerID, farmerID string, totalCents int64, deliveryMethod, deliveryAddress string, now time.Time) *Transaction {
	return &Transaction{
		ID:              uuid.New().String(),
		ReservationID:   reservationID,
		BuyerID:         buyerID,
		FarmerID:        farmerID,
		TotalCents:      totalCents,
		PaymentMethod:   PayCash,
		Status:          StatusPendingPayment,
		DeliveryMethod:  deliveryMethod,
		DeliveryAddress: deliveryAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// UploadReceipt attaches the buyer's proof of payment. Legal only
// before verification, or after a rejection (re-upload).
func UploadReceipt(t *Transaction, actorID, receiptURL, notes string, method PaymentMethod, now time.Time) (alerts.Notice, error) {
	if t.BuyerID != actorID {
		return alerts.Notice{}, fault.Permission("only the transaction's buyer can upload a receipt")
	}
	if t.Status != StatusPendingPayment && t.Status != StatusReceiptRejected {
		return alerts.Notice{}, fault.StateConflict("receipt cannot be uploaded in status %q", t.Status)
	}
	if strings.TrimSpace(receiptURL) == "" {
		return alerts.Notice{}, fault.Validation("a receipt image or URL is required")
	}
	if method != "" {
		if !ValidPaymentMethods[method] {
			return alerts.Notice{}, fault.Validation("invalid payment method %q", method)
		}
		t.PaymentMethod = method
	}

	t.ReceiptURL = receiptURL
	t.ReceiptNotes = notes
	t.Status = StatusReceiptUploaded
	t.UpdatedAt = now

	notice := alerts.Notice{
		UserID:        t.FarmerID,
		Type:          alerts.TypeReceiptUploaded,
		Title:         "Receipt Uploaded",
		Message:       "Payment receipt uploaded for your reservation sale",
		TransactionID: t.ID,
	}
	return notice, nil
}

// VerifyReceipt records the farmer's decision on an uploaded receipt.
// Rejection sends the buyer back to re-upload.
func VerifyReceipt(t *Transaction, actorID string, approve bool, notes string, now time.Time) (alerts.Notice, error) {
	if t.FarmerID != actorID {
		return alerts.Notice{}, fault.Permission("only the transaction's farmer can verify the receipt")
	}
	if t.Status != StatusReceiptUploaded {
		return alerts.Notice{}, fault.StateConflict("no receipt to verify in status %q", t.Status)
	}

	t.VerifiedBy = actorID
	t.VerifiedAt = &now
	t.VerificationNotes = notes
	t.UpdatedAt = now

	var notice alerts.Notice
	if approve {
		t.Status = StatusReceiptVerified
		notice = alerts.Notice{
			UserID:        t.BuyerID,
			Type:          alerts.TypeReceiptVerified,
			Title:         "Receipt Approved",
			Message:       "Your payment receipt has been approved",
			TransactionID: t.ID,
		}
	} else {
		t.Status = StatusReceiptRejected
		notice = alerts.Notice{
			UserID:        t.BuyerID,
			Type:          alerts.TypeReceiptRejected,
			Title:         "Receipt Rejected",
			Message:       "Your payment receipt was rejected. Please upload a new receipt.",
			TransactionID: t.ID,
		}
	}
	return notice, nil
}

// Complete closes a verified transaction.
func Complete(t *Transaction, actorID string, now time.Time) (alerts.Notice, error) {
	if t.FarmerID != actorID && t.BuyerID != actorID {
		return alerts.Notice{}, fault.Permission("only a party to the transaction can complete it")
	}
	if t.Status != StatusReceiptVerified {
		return alerts.Notice{}, fault.StateConflict("cannot complete a transaction in status %q", t.Status)
	}

	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now

	counterparty := t.FarmerID
	if actorID == t.FarmerID {
		counterparty = t.BuyerID
	}
	notice := alerts.Notice{
		UserID:        counterparty,
		Type:          alerts.TypePaymentReceived,
		Title:         "Transaction Completed",
		Message:       fmt.Sprintf("Transaction %s has been completed", t.ID),
		TransactionID: t.ID,
	}
	return notice, nil
}

// CancelTx voids a transaction that has not reached a terminal state.
func CancelTx(t *Transaction, actorID string, now time.Time) (alerts.Notice, error) {
	if t.FarmerID != actorID && t.BuyerID != actorID {
		return alerts.Notice{}, fault.Permission("only a party to the transaction can cancel it")
	}
	if IsTerminal(t.Status) {
		return alerts.Notice{}, fault.StateConflict("cannot cancel a transaction in status %q", t.Status)
	}

	t.Status = StatusCancelled
	t.UpdatedAt = now

	counterparty := t.FarmerID
	if actorID == t.FarmerID {
		counterparty = t.BuyerID
	}
	notice := alerts.Notice{
		UserID:        counterparty,
		Type:          alerts.TypeSystemAnnouncement,
		Title:         "Transaction Cancelled",
		Message:       fmt.Sprintf("Transaction %s has been cancelled", t.ID),
		TransactionID: t.ID,
	}
	return notice, nil
}

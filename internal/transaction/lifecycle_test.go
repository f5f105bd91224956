package transaction

import (
	"errors"
	"testing"
	"time"

	"github.com/agriport/farm2market/internal/fault"
)

func testTransaction() *Transaction {
	return NewForReservation("res-1", "buyer-1", "farmer-1", 5000, "pickup", "", time.Now())
}

func TestNewForReservation_Defaults(t *testing.T) {
	tx := testTransaction()
	if tx.Status != StatusPendingPayment {
		t.Errorf("expected pending_payment, got %q", tx.Status)
	}
	if tx.TotalCents != 5000 {
		t.Errorf("expected total 5000, got %d", tx.TotalCents)
	}
	if tx.PaymentMethod != PayCash {
		t.Errorf("expected default payment method cash, got %q", tx.PaymentMethod)
	}
}

func TestUploadReceipt_BuyerOnly(t *testing.T) {
	tx := testTransaction()
	_, err := UploadReceipt(tx, "farmer-1", "/receipts/a.jpg", "", "", time.Now())
	var pe *fault.PermissionError
	if !errors.As(err, &pe) {
		t.Errorf("expected PermissionError, got %v", err)
	}
}

func TestUploadReceipt_RequiresReceipt(t *testing.T) {
	tx := testTransaction()
	_, err := UploadReceipt(tx, "buyer-1", "   ", "", "", time.Now())
	var ve *fault.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestUploadReceipt_InvalidPaymentMethod(t *testing.T) {
	tx := testTransaction()
	_, err := UploadReceipt(tx, "buyer-1", "/receipts/a.jpg", "", "barter", time.Now())
	var ve *fault.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestVerifyReceipt_FarmerOnly(t *testing.T) {
	tx := testTransaction()
	if _, err := UploadReceipt(tx, "buyer-1", "/receipts/a.jpg", "", PayBankTransfer, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := VerifyReceipt(tx, "buyer-1", true, "", time.Now())
	var pe *fault.PermissionError
	if !errors.As(err, &pe) {
		t.Errorf("expected PermissionError, got %v", err)
	}
}

func TestVerifyReceipt_OnlyFromUploaded(t *testing.T) {
	tx := testTransaction()
	_, err := VerifyReceipt(tx, "farmer-1", true, "", time.Now())
	var sc *fault.StateConflictError
	if !errors.As(err, &sc) {
		t.Errorf("expected StateConflictError, got %v", err)
	}
}

func TestComplete_OnlyFromVerified(t *testing.T) {
	tx := testTransaction()
	_, err := Complete(tx, "buyer-1", time.Now())
	var sc *fault.StateConflictError
	if !errors.As(err, &sc) {
		t.Errorf("expected StateConflictError, got %v", err)
	}
}

// Full walk: upload, reject, re-upload, verify, complete.
func TestReceiptFlow(t *testing.T) {
	tx := testTransaction()

	notice, err := UploadReceipt(tx, "buyer-1", "/receipts/blurry.jpg", "paid at the bank", PayBankTransfer, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != StatusReceiptUploaded {
		t.Fatalf("expected receipt_uploaded, got %q", tx.Status)
	}
	if tx.PaymentMethod != PayBankTransfer {
		t.Errorf("expected payment method bank_transfer, got %q", tx.PaymentMethod)
	}
	if notice.UserID != "farmer-1" {
		t.Errorf("expected upload notice for the farmer, got %q", notice.UserID)
	}

	notice, err = VerifyReceipt(tx, "farmer-1", false, "cannot read the amount", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != StatusReceiptRejected {
		t.Fatalf("expected receipt_rejected, got %q", tx.Status)
	}
	if notice.UserID != "buyer-1" {
		t.Errorf("expected rejection notice for the buyer, got %q", notice.UserID)
	}

	// Rejection allows a re-upload
	if _, err := UploadReceipt(tx, "buyer-1", "/receipts/clear.jpg", "", "", time.Now()); err != nil {
		t.Fatalf("unexpected error on re-upload: %v", err)
	}
	if tx.ReceiptURL != "/receipts/clear.jpg" {
		t.Errorf("expected new receipt recorded, got %q", tx.ReceiptURL)
	}

	if _, err := VerifyReceipt(tx, "farmer-1", true, "", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != StatusReceiptVerified {
		t.Fatalf("expected receipt_verified, got %q", tx.Status)
	}
	if tx.VerifiedBy != "farmer-1" || tx.VerifiedAt == nil {
		t.Error("expected verifier and verification time to be stamped")
	}

	notice, err = Complete(tx, "farmer-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", tx.Status)
	}
	if tx.CompletedAt == nil {
		t.Error("expected completion time to be stamped")
	}
	if notice.UserID != "buyer-1" {
		t.Errorf("expected completion notice for the counterparty, got %q", notice.UserID)
	}
}

func TestCancelTx(t *testing.T) {
	tx := testTransaction()
	if _, err := CancelTx(tx, "stranger", time.Now()); err == nil {
		t.Error("expected error for a non-party cancel")
	}

	notice, err := CancelTx(tx, "buyer-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %q", tx.Status)
	}
	if notice.UserID != "farmer-1" {
		t.Errorf("expected cancel notice for the counterparty, got %q", notice.UserID)
	}

	// terminal now
	_, err = CancelTx(tx, "buyer-1", time.Now())
	var sc *fault.StateConflictError
	if !errors.As(err, &sc) {
		t.Errorf("expected StateConflictError on double cancel, got %v", err)
	}
}

func TestTransitionTable(t *testing.T) {
	if !CanTransition(StatusReceiptRejected, StatusReceiptUploaded) {
		t.Error("expected re-upload after rejection to be allowed")
	}
	if CanTransition(StatusCompleted, StatusCancelled) {
		t.Error("expected completed to be terminal")
	}
	if CanTransition(StatusPendingPayment, StatusReceiptVerified) {
		t.Error("expected verification to require an uploaded receipt")
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !IsTerminal(s) {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}

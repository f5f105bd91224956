package transaction

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/fault"
)

// Store persists transactions. Completing or cancelling a transaction
// also moves its reservation, in the same database transaction.
type Store struct {
	DB *pgxpool.Pool
}

const selectTransaction = `SELECT id, reservation_id, buyer_id, farmer_id, total_cents, payment_method,
       COALESCE(receipt_url,''), COALESCE(receipt_notes,''), COALESCE(verification_notes,''),
       verified_by, verified_at, status, delivery_method, COALESCE(delivery_address,''),
       delivery_date, COALESCE(delivery_notes,''), created_at, updated_at, completed_at
  FROM transactions`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	var verifiedBy *string
	err := row.Scan(&t.ID, &t.ReservationID, &t.BuyerID, &t.FarmerID, &t.TotalCents, &t.PaymentMethod,
		&t.ReceiptURL, &t.ReceiptNotes, &t.VerificationNotes,
		&verifiedBy, &t.VerifiedAt, &t.Status, &t.DeliveryMethod, &t.DeliveryAddress,
		&t.DeliveryDate, &t.DeliveryNotes, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt)
	if err != nil {
		return nil, err
	}
	if verifiedBy != nil {
		t.VerifiedBy = *verifiedBy
	}
	return &t, nil
}

func lockTransaction(ctx context.Context, tx pgx.Tx, id string) (*Transaction, error) {
	t, err := scanTransaction(tx.QueryRow(ctx, selectTransaction+` WHERE id = $1 FOR UPDATE`, id))
	if err == pgx.ErrNoRows {
		return nil, fault.Validation("transaction not found")
	}
	return t, err
}

func saveTransaction(ctx context.Context, tx pgx.Tx, t *Transaction) error {
	_, err := tx.Exec(ctx,
		`UPDATE transactions
            SET payment_method = $1, receipt_url = $2, receipt_notes = $3, verification_notes = $4,
                verified_by = $5, verified_at = $6, status = $7, updated_at = $8, completed_at = $9
          WHERE id = $10`,
		t.PaymentMethod, nilIfEmpty(t.ReceiptURL), nilIfEmpty(t.ReceiptNotes), nilIfEmpty(t.VerificationNotes),
		nilIfEmpty(t.VerifiedBy), t.VerifiedAt, t.Status, t.UpdatedAt, t.CompletedAt, t.ID,
	)
	return err
}

// UploadReceipt attaches the buyer's proof of payment.
func (s *Store) UploadReceipt(ctx context.Context, id, actorID, receiptURL, notes string, method PaymentMethod) (*Transaction, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	t, err := lockTransaction(ctx, tx, id)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	notice, err := UploadReceipt(t, actorID, receiptURL, notes, method, time.Now())
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := saveTransaction(ctx, tx, t); err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, alerts.Notice{}, err
	}
	return t, notice, nil
}

// VerifyReceipt records the farmer's decision on an uploaded receipt.
func (s *Store) VerifyReceipt(ctx context.Context, id, actorID string, approve bool, notes string) (*Transaction, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	t, err := lockTransaction(ctx, tx, id)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	notice, err := VerifyReceipt(t, actorID, approve, notes, time.Now())
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := saveTransaction(ctx, tx, t); err != nil {
		return nil, alerts.Notice{}, err
	}
	if approve {
		_, err = tx.Exec(ctx,
			`UPDATE reservations SET status = 'paid', updated_at = NOW()
              WHERE id = $1 AND status IN ('approved','payment_pending')`, t.ReservationID)
		if err != nil {
			return nil, alerts.Notice{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, alerts.Notice{}, err
	}
	return t, notice, nil
}

// Complete closes a verified transaction and finishes the reservation
// with it.
func (s *Store) Complete(ctx context.Context, id, actorID string) (*Transaction, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	t, err := lockTransaction(ctx, tx, id)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	notice, err := Complete(t, actorID, time.Now())
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := saveTransaction(ctx, tx, t); err != nil {
		return nil, alerts.Notice{}, err
	}
	_, err = tx.Exec(ctx,
		`UPDATE reservations SET status = 'completed', updated_at = NOW()
          WHERE id = $1 AND status IN ('approved','paid','ready_for_pickup')`, t.ReservationID)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, alerts.Notice{}, err
	}
	return t, notice, nil
}

// Cancel closes an open transaction and cancels its reservation
// rather than leaving it orphaned.
func (s *Store) Cancel(ctx context.Context, id, actorID string) (*Transaction, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	t, err := lockTransaction(ctx, tx, id)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	notice, err := CancelTx(t, actorID, time.Now())
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := saveTransaction(ctx, tx, t); err != nil {
		return nil, alerts.Notice{}, err
	}
	_, err = tx.Exec(ctx,
		`UPDATE reservations SET status = 'cancelled', updated_at = NOW()
          WHERE id = $1 AND status NOT IN ('completed','cancelled','rejected')`, t.ReservationID)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, alerts.Notice{}, err
	}
	return t, notice, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

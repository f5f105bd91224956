package reservation

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/fault"
	"github.com/agriport/farm2market/internal/listing"
	"github.com/agriport/farm2market/internal/transaction"
)

// Store persists reservations. Every state transition runs inside one
// database transaction with the listing row locked, so two concurrent
// approvals against nearly exhausted stock cannot both win.
type Store struct {
	DB *pgxpool.Pool
}

func scanListingForUpdate(ctx context.Context, tx pgx.Tx, listingID string) (*listing.Listing, error) {
	var l listing.Listing
	err := tx.QueryRow(ctx,
		`SELECT id, farmer_id, product_name, COALESCE(description,''), price_cents, quantity, unit,
                COALESCE(image_url,''), status, archived, created_at
         FROM listings WHERE id = $1 FOR UPDATE`, listingID,
	).Scan(&l.ID, &l.FarmerID, &l.ProductName, &l.Description, &l.PriceCents, &l.Quantity, &l.Unit,
		&l.ImageURL, &l.Status, &l.Archived, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanReservationForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Reservation, error) {
	var r Reservation
	var approvedBy *string
	err := tx.QueryRow(ctx,
		`SELECT id, buyer_id, listing_id, quantity, unit_price_cents, total_cents, delivery_method,
                COALESCE(delivery_address,''), status, COALESCE(buyer_notes,''), COALESCE(farmer_notes,''),
                COALESCE(rejection_reason,''), approved_by, approved_at, created_at, updated_at
         FROM reservations WHERE id = $1 FOR UPDATE`, id,
	).Scan(&r.ID, &r.BuyerID, &r.ListingID, &r.Quantity, &r.UnitPriceCents, &r.TotalCents, &r.DeliveryMethod,
		&r.DeliveryAddress, &r.Status, &r.BuyerNotes, &r.FarmerNotes,
		&r.RejectionReason, &approvedBy, &r.ApprovedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if approvedBy != nil {
		r.ApprovedBy = *approvedBy
	}
	return &r, nil
}

// Create validates the request against the current listing row and
// inserts the pending reservation.
func (s *Store) Create(ctx context.Context, in CreateInput, listingID string) (*Reservation, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	l, err := scanListingForUpdate(ctx, tx, listingID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, alerts.Notice{}, fault.Validation("listing not found")
		}
		return nil, alerts.Notice{}, err
	}

	r, notice, err := New(l, in, time.Now())
	if err != nil {
		return nil, alerts.Notice{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO reservations (id, buyer_id, listing_id, quantity, unit_price_cents, total_cents,
             delivery_method, delivery_address, status, buyer_notes, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.BuyerID, r.ListingID, r.Quantity, r.UnitPriceCents, r.TotalCents,
		r.DeliveryMethod, nullable(r.DeliveryAddress), r.Status, nullable(r.BuyerNotes), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, alerts.Notice{}, err
	}
	return r, notice, nil
}

// Approve runs the approval transition: lock listing and reservation,
// apply the decrement, start payment tracking, commit atomically.
// Returns the updated reservation, the created transaction and the
// buyer notice.
func (s *Store) Approve(ctx context.Context, reservationID, actorID, notes string) (*Reservation, *transaction.Transaction, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	r, err := scanReservationForUpdate(ctx, tx, reservationID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, alerts.Notice{}, fault.Validation("reservation not found")
		}
		return nil, nil, alerts.Notice{}, err
	}
	l, err := scanListingForUpdate(ctx, tx, r.ListingID)
	if err != nil {
		return nil, nil, alerts.Notice{}, err
	}

	now := time.Now()
	notice, err := Approve(l, r, actorID, notes, now)
	if err != nil {
		return nil, nil, alerts.Notice{}, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE listings SET quantity = $1, status = $2 WHERE id = $3`,
		l.Quantity, l.Status, l.ID,
	)
	if err != nil {
		return nil, nil, alerts.Notice{}, err
	}
	_, err = tx.Exec(ctx,
		`UPDATE reservations SET status = $1, approved_by = $2, approved_at = $3, farmer_notes = $4, updated_at = $5
         WHERE id = $6`,
		r.Status, r.ApprovedBy, r.ApprovedAt, nullable(r.FarmerNotes), r.UpdatedAt, r.ID,
	)
	if err != nil {
		return nil, nil, alerts.Notice{}, err
	}

	pay := transaction.NewForReservation(r.ID, r.BuyerID, l.FarmerID, r.TotalCents,
		string(r.DeliveryMethod), r.DeliveryAddress, now)
	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, reservation_id, buyer_id, farmer_id, total_cents, payment_method,
             status, delivery_method, delivery_address, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		pay.ID, pay.ReservationID, pay.BuyerID, pay.FarmerID, pay.TotalCents, pay.PaymentMethod,
		pay.Status, pay.DeliveryMethod, nullable(pay.DeliveryAddress), pay.CreatedAt, pay.UpdatedAt,
	)
	if err != nil {
		return nil, nil, alerts.Notice{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, alerts.Notice{}, err
	}
	return r, pay, notice, nil
}

// Reject runs the rejection transition.
func (s *Store) Reject(ctx context.Context, reservationID, actorID, reason string) (*Reservation, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	r, err := scanReservationForUpdate(ctx, tx, reservationID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, alerts.Notice{}, fault.Validation("reservation not found")
		}
		return nil, alerts.Notice{}, err
	}
	l, err := scanListingForUpdate(ctx, tx, r.ListingID)
	if err != nil {
		return nil, alerts.Notice{}, err
	}

	notice, err := Reject(l, r, actorID, reason, time.Now())
	if err != nil {
		return nil, alerts.Notice{}, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE reservations SET status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4, updated_at = $5
         WHERE id = $6`,
		r.Status, r.ApprovedBy, r.ApprovedAt, r.RejectionReason, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, alerts.Notice{}, err
	}
	return r, notice, nil
}

// MarkReady flips an approved or paid reservation to ready_for_pickup.
func (s *Store) MarkReady(ctx context.Context, reservationID, actorID string) (*Reservation, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	r, err := scanReservationForUpdate(ctx, tx, reservationID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, alerts.Notice{}, fault.Validation("reservation not found")
		}
		return nil, alerts.Notice{}, err
	}
	l, err := scanListingForUpdate(ctx, tx, r.ListingID)
	if err != nil {
		return nil, alerts.Notice{}, err
	}

	notice, err := MarkReady(l, r, actorID, time.Now())
	if err != nil {
		return nil, alerts.Notice{}, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`,
		r.Status, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return nil, alerts.Notice{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, alerts.Notice{}, err
	}
	return r, notice, nil
}

// Cancel runs the buyer's cancellation. Any open transaction for the
// reservation is cancelled with it. The status the reservation left is
// returned alongside the updated record.
func (s *Store) Cancel(ctx context.Context, reservationID, actorID string) (*Reservation, Status, alerts.Notice, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", alerts.Notice{}, err
	}
	defer tx.Rollback(ctx)

	r, err := scanReservationForUpdate(ctx, tx, reservationID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", alerts.Notice{}, fault.Validation("reservation not found")
		}
		return nil, "", alerts.Notice{}, err
	}
	l, err := scanListingForUpdate(ctx, tx, r.ListingID)
	if err != nil {
		return nil, "", alerts.Notice{}, err
	}

	from := r.Status
	notice, err := Cancel(l, r, actorID, time.Now())
	if err != nil {
		return nil, "", alerts.Notice{}, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`,
		r.Status, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return nil, "", alerts.Notice{}, err
	}
	_, err = tx.Exec(ctx,
		`UPDATE transactions SET status = 'cancelled', updated_at = NOW()
         WHERE reservation_id = $1 AND status NOT IN ('completed','cancelled')`, r.ID,
	)
	if err != nil {
		return nil, "", alerts.Notice{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, "", alerts.Notice{}, err
	}
	return r, from, notice, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

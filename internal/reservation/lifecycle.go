package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/fault"
	"github.com/agriport/farm2market/internal/listing"
)

// The functions in this file are the whole reservation state machine.
// They mutate in-memory records and report the notification to emit;
// persistence and locking live in store.go, so the rules here are
// testable without a database.

// CreateInput carries the buyer's request for a new reservation.
type CreateInput struct {
	BuyerID         string
	BuyerName       string
	BuyerApproved   bool
	Quantity        int
	DeliveryMethod  DeliveryMethod
	DeliveryAddress string
	BuyerNotes      string
}

// New validates a reservation request against its listing and builds
// the pending reservation. The farmer is notified of the new request.
func New(l *listing.Listing, in CreateInput, now time.Time) (*Reservation, alerts.Notice, error) {
	if !in.BuyerApproved {
		return nil, alerts.Notice{}, fault.Validation("only approved buyers can create reservations")
	}
	if l.FarmerID == in.BuyerID {
		return nil, alerts.Notice{}, fault.Validation("you cannot reserve your own listing")
	}
	if l.Archived || l.Status != listing.StatusAvailable {
		return nil, alerts.Notice{}, fault.Validation("listing is not available")
	}
	if in.Quantity < 1 {
		return nil, alerts.Notice{}, fault.Validation("quantity must be at least 1")
	}
	if in.Quantity > l.Quantity {
		return nil, alerts.Notice{}, fault.Validation("requested quantity %d exceeds available %d", in.Quantity, l.Quantity)
	}
	switch in.DeliveryMethod {
	case "", DeliveryPickup:
		in.DeliveryMethod = DeliveryPickup
	case DeliveryDelivery:
		if strings.TrimSpace(in.DeliveryAddress) == "" {
			return nil, alerts.Notice{}, fault.Validation("delivery address is required for delivery method")
		}
	default:
		return nil, alerts.Notice{}, fault.Validation("invalid delivery method %q", in.DeliveryMethod)
	}

	r := &Reservation{
		ID:              uuid.New().String(),
		BuyerID:         in.BuyerID,
		ListingID:       l.ID,
		Quantity:        in.Quantity,
		UnitPriceCents:  l.PriceCents,
		TotalCents:      int64(in.Quantity) * l.PriceCents,
		DeliveryMethod:  in.DeliveryMethod,
		DeliveryAddress: in.DeliveryAddress,
		Status:          StatusPending,
		BuyerNotes:      in.BuyerNotes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	notice := alerts.Notice{
		UserID:        l.FarmerID,
		Type:          alerts.TypeReservationPending,
		Title:         "New Reservation Request",
		Message:       fmt.Sprintf("New reservation request for %s from %s", l.ProductName, in.BuyerName),
		ReservationID: r.ID,
	}
	return r, notice, nil
}

// Approve moves a pending reservation to approved and takes the
// reserved quantity off the listing. Both records must already be
// locked by the caller; at zero remaining the listing flips to sold.
func Approve(l *listing.Listing, r *Reservation, actorID, notes string, now time.Time) (alerts.Notice, error) {
	if l.FarmerID != actorID {
		return alerts.Notice{}, fault.Permission("only the listing's farmer can approve this reservation")
	}
	if r.Status != StatusPending {
		return alerts.Notice{}, fault.StateConflict("cannot approve a reservation in status %q", r.Status)
	}
	if r.Quantity > l.Quantity {
		return alerts.Notice{}, &fault.InsufficientInventoryError{Requested: r.Quantity, Available: l.Quantity}
	}

	l.Quantity -= r.Quantity
	if l.Quantity == 0 {
		l.Status = listing.StatusSold
	}

	r.Status = StatusApproved
	r.ApprovedBy = actorID
	r.ApprovedAt = &now
	r.FarmerNotes = notes
	r.UpdatedAt = now

	notice := alerts.Notice{
		UserID:        r.BuyerID,
		Type:          alerts.TypeReservationApproved,
		Title:         "Reservation Approved",
		Message:       fmt.Sprintf("Your reservation for %s has been approved", l.ProductName),
		ReservationID: r.ID,
	}
	return notice, nil
}

// Reject declines a pending reservation. A reason is mandatory; the
// listing is untouched.
func Reject(l *listing.Listing, r *Reservation, actorID, reason string, now time.Time) (alerts.Notice, error) {
	if l.FarmerID != actorID {
		return alerts.Notice{}, fault.Permission("only the listing's farmer can reject this reservation")
	}
	if r.Status != StatusPending {
		return alerts.Notice{}, fault.StateConflict("cannot reject a reservation in status %q", r.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return alerts.Notice{}, fault.Validation("rejection reason is required when rejecting a reservation")
	}

	r.Status = StatusRejected
	r.ApprovedBy = actorID
	r.ApprovedAt = &now
	r.RejectionReason = reason
	r.UpdatedAt = now

	notice := alerts.Notice{
		UserID:        r.BuyerID,
		Type:          alerts.TypeReservationRejected,
		Title:         "Reservation Rejected",
		Message:       fmt.Sprintf("Your reservation for %s has been rejected: %s", l.ProductName, reason),
		ReservationID: r.ID,
	}
	return notice, nil
}

// MarkReady tells the buyer their order can be picked up. Legal once
// the reservation is approved or paid.
func MarkReady(l *listing.Listing, r *Reservation, actorID string, now time.Time) (alerts.Notice, error) {
	if l.FarmerID != actorID {
		return alerts.Notice{}, fault.Permission("only the listing's farmer can mark this reservation ready")
	}
	if !CanTransition(r.Status, StatusReadyForPickup) {
		return alerts.Notice{}, fault.StateConflict("cannot mark a reservation in status %q ready for pickup", r.Status)
	}

	r.Status = StatusReadyForPickup
	r.UpdatedAt = now

	notice := alerts.Notice{
		UserID:        r.BuyerID,
		Type:          alerts.TypeReservationReady,
		Title:         "Order Ready for Pickup",
		Message:       fmt.Sprintf("Your order of %s is ready for pickup", l.ProductName),
		ReservationID: r.ID,
	}
	return notice, nil
}

// Cancel closes a reservation from any non-terminal state.
//
// An approved reservation's quantity is NOT returned to the listing.
// That matches the system this replaces; whether cancellation should
// compensate inventory is an open product decision (see DESIGN.md),
// not something to change silently here.
func Cancel(l *listing.Listing, r *Reservation, actorID string, now time.Time) (alerts.Notice, error) {
	if r.BuyerID != actorID {
		return alerts.Notice{}, fault.Permission("only the reservation's buyer can cancel it")
	}
	if IsTerminal(r.Status) {
		return alerts.Notice{}, fault.StateConflict("cannot cancel a reservation in status %q", r.Status)
	}

	r.Status = StatusCancelled
	r.UpdatedAt = now

	notice := alerts.Notice{
		UserID:        l.FarmerID,
		Type:          alerts.TypeReservationCancelled,
		Title:         "Reservation Cancelled",
		Message:       fmt.Sprintf("The reservation for %s has been cancelled by the buyer", l.ProductName),
		ReservationID: r.ID,
	}
	return notice, nil
}

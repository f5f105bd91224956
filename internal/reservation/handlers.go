package reservation

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/db"
	"github.com/agriport/farm2market/internal/events"
	"github.com/agriport/farm2market/internal/fault"
)

// =========================
// CreateReservation - Buyer requests quantity from a listing
// =========================
func CreateReservation(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	approved, _ := c.Get("approved").(bool)

	var req struct {
		ListingID       string `json:"listing_id"`
		Quantity        int    `json:"quantity"`
		DeliveryMethod  string `json:"delivery_method"`
		DeliveryAddress string `json:"delivery_address"`
		BuyerNotes      string `json:"buyer_notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ListingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "listing_id is required"})
	}

	ctx := context.Background()

	var buyerName string
	err := db.Conn.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, buyerID).Scan(&buyerName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load buyer"})
	}

	store := &Store{DB: db.Conn}
	r, notice, err := store.Create(ctx, CreateInput{
		BuyerID:         buyerID,
		BuyerName:       buyerName,
		BuyerApproved:   approved,
		Quantity:        req.Quantity,
		DeliveryMethod:  DeliveryMethod(req.DeliveryMethod),
		DeliveryAddress: req.DeliveryAddress,
		BuyerNotes:      req.BuyerNotes,
	}, req.ListingID)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)
	events.Publish(events.EventReservationCreated, r.ID, events.ReservationCreatedPayload{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		BuyerID:       r.BuyerID,
		Quantity:      r.Quantity,
		TotalCents:    r.TotalCents,
	})

	return c.JSON(http.StatusCreated, echo.Map{"reservation": r})
}

// =========================
// GetMyReservations - Buyer's reservations, newest first
// =========================
func GetMyReservations(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		selectReservation+` WHERE r.buyer_id = $1 ORDER BY r.created_at DESC`, buyerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservations"})
	}
	defer rows.Close()

	list, err := scanReservations(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// =========================
// GetIncomingReservations - Requests against the farmer's listings
// =========================
func GetIncomingReservations(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	q := selectReservation + ` JOIN listings l ON l.id = r.listing_id WHERE l.farmer_id = $1`
	args := []any{farmerID}
	if status := c.QueryParam("status"); status != "" {
		q += ` AND r.status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY r.created_at DESC`

	rows, err := db.Conn.Query(context.Background(), q, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservations"})
	}
	defer rows.Close()

	list, err := scanReservations(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// =========================
// GetReservation - Single reservation, parties only
// =========================
func GetReservation(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")

	r, farmerID, err := fetchWithFarmer(context.Background(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if r.BuyerID != userID && farmerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not a party to this reservation"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": r})
}

// =========================
// ApproveReservation - Farmer accepts, inventory committed
// =========================
func ApproveReservation(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		FarmerNotes string `json:"farmer_notes"`
	}
	_ = c.Bind(&req)

	ctx := context.Background()
	store := &Store{DB: db.Conn}
	r, pay, notice, err := store.Approve(ctx, c.Param("id"), farmerID, req.FarmerNotes)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)

	var remaining int
	var listingStatus string
	_ = db.Conn.QueryRow(ctx, `SELECT quantity, status FROM listings WHERE id = $1`, r.ListingID).
		Scan(&remaining, &listingStatus)
	events.Publish(events.EventReservationApproved, r.ID, events.ReservationDecidedPayload{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		DecidedBy:     farmerID,
		RemainingQty:  remaining,
		ListingSold:   listingStatus == "sold",
	})

	return c.JSON(http.StatusOK, echo.Map{"reservation": r, "transaction": pay})
}

// =========================
// RejectReservation - Farmer declines with a reason
// =========================
func RejectReservation(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := context.Background()
	store := &Store{DB: db.Conn}
	r, notice, err := store.Reject(ctx, c.Param("id"), farmerID, req.Reason)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)
	events.Publish(events.EventReservationRejected, r.ID, events.ReservationDecidedPayload{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		DecidedBy:     farmerID,
		Reason:        r.RejectionReason,
	})

	return c.JSON(http.StatusOK, echo.Map{"reservation": r})
}

// =========================
// MarkReservationReady - Farmer signals the order can be picked up
// =========================
func MarkReservationReady(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()
	store := &Store{DB: db.Conn}
	r, notice, err := store.MarkReady(ctx, c.Param("id"), farmerID)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)
	events.Publish(events.EventReservationReady, r.ID, events.ReservationReadyPayload{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		MarkedBy:      farmerID,
	})

	return c.JSON(http.StatusOK, echo.Map{"reservation": r})
}

// =========================
// CancelReservation - Buyer backs out
// =========================
func CancelReservation(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()
	store := &Store{DB: db.Conn}
	r, from, notice, err := store.Cancel(ctx, c.Param("id"), buyerID)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)
	events.Publish(events.EventReservationCancelled, r.ID, events.ReservationCancelledPayload{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		FromStatus:    string(from),
	})

	return c.JSON(http.StatusOK, echo.Map{"reservation": r})
}

const selectReservation = `SELECT r.id, r.buyer_id, r.listing_id, r.quantity, r.unit_price_cents, r.total_cents,
       r.delivery_method, COALESCE(r.delivery_address,''), r.status, COALESCE(r.buyer_notes,''),
       COALESCE(r.farmer_notes,''), COALESCE(r.rejection_reason,''), r.approved_by, r.approved_at,
       r.created_at, r.updated_at
  FROM reservations r`

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReservations(rows rowScanner) ([]Reservation, error) {
	out := []Reservation{}
	for rows.Next() {
		var r Reservation
		var approvedBy *string
		if err := rows.Scan(&r.ID, &r.BuyerID, &r.ListingID, &r.Quantity, &r.UnitPriceCents, &r.TotalCents,
			&r.DeliveryMethod, &r.DeliveryAddress, &r.Status, &r.BuyerNotes,
			&r.FarmerNotes, &r.RejectionReason, &approvedBy, &r.ApprovedAt,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if approvedBy != nil {
			r.ApprovedBy = *approvedBy
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func fetchWithFarmer(ctx context.Context, id string) (*Reservation, string, error) {
	var r Reservation
	var approvedBy *string
	var farmerID string
	err := db.Conn.QueryRow(ctx,
		selectReservation+` WHERE r.id = $1`, id,
	).Scan(&r.ID, &r.BuyerID, &r.ListingID, &r.Quantity, &r.UnitPriceCents, &r.TotalCents,
		&r.DeliveryMethod, &r.DeliveryAddress, &r.Status, &r.BuyerNotes,
		&r.FarmerNotes, &r.RejectionReason, &approvedBy, &r.ApprovedAt,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, "", err
	}
	if approvedBy != nil {
		r.ApprovedBy = *approvedBy
	}
	err = db.Conn.QueryRow(ctx, `SELECT farmer_id FROM listings WHERE id = $1`, r.ListingID).Scan(&farmerID)
	if err != nil {
		return nil, "", err
	}
	return &r, farmerID, nil
}

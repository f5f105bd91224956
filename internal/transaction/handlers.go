package transaction

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/config"
	"github.com/agriport/farm2market/internal/db"
	"github.com/agriport/farm2market/internal/events"
	"github.com/agriport/farm2market/internal/fault"
	"github.com/agriport/farm2market/internal/uploads"
)

// =========================
// GetMyTransactions - Both sides see their payment history
// =========================
func GetMyTransactions(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		selectTransaction+` WHERE buyer_id = $1 OR farmer_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch transactions"})
	}
	defer rows.Close()

	list := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read transactions"})
		}
		list = append(list, *t)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": list})
}

// =========================
// GetTransaction - Single transaction, parties only
// =========================
func GetTransaction(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	t, err := scanTransaction(db.Conn.QueryRow(context.Background(),
		selectTransaction+` WHERE id = $1`, c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
	}
	if t.BuyerID != userID && t.FarmerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not a party to this transaction"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transaction": t})
}

// =========================
// UploadTransactionReceipt - Buyer submits proof of payment
// =========================
// Accepts either a multipart "receipt" file (stored on disk) or a
// JSON body with a receipt_url.
func UploadTransactionReceipt(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var receiptURL, notes string
	var method PaymentMethod

	if fh, err := c.FormFile("receipt"); err == nil {
		blob := &uploads.Receipts{Dir: config.Get().ReceiptsDir}
		receiptURL, err = blob.Save(fh)
		if err != nil {
			return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		notes = c.FormValue("notes")
		method = PaymentMethod(c.FormValue("payment_method"))
	} else {
		var req struct {
			ReceiptURL    string `json:"receipt_url"`
			Notes         string `json:"notes"`
			PaymentMethod string `json:"payment_method"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		receiptURL = req.ReceiptURL
		notes = req.Notes
		method = PaymentMethod(req.PaymentMethod)
	}

	ctx := context.Background()
	store := &Store{DB: db.Conn}
	t, notice, err := store.UploadReceipt(ctx, c.Param("id"), buyerID, receiptURL, notes, method)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)
	events.Publish(events.EventReceiptUploaded, t.ReservationID, events.ReceiptPayload{
		TransactionID: t.ID,
		ReservationID: t.ReservationID,
		ActorID:       buyerID,
		Notes:         notes,
	})

	return c.JSON(http.StatusOK, echo.Map{"transaction": t})
}

// =========================
// VerifyTransactionReceipt - Farmer approves or rejects the receipt
// =========================
func VerifyTransactionReceipt(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Approve bool   `json:"approve"`
		Notes   string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := context.Background()
	store := &Store{DB: db.Conn}
	t, notice, err := store.VerifyReceipt(ctx, c.Param("id"), farmerID, req.Approve, req.Notes)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)
	eventType := events.EventReceiptVerified
	if !req.Approve {
		eventType = events.EventReceiptRejected
	}
	events.Publish(eventType, t.ReservationID, events.ReceiptPayload{
		TransactionID: t.ID,
		ReservationID: t.ReservationID,
		ActorID:       farmerID,
		Notes:         req.Notes,
	})

	return c.JSON(http.StatusOK, echo.Map{"transaction": t})
}

// =========================
// CompleteTransaction - Either party closes a verified sale
// =========================
func CompleteTransaction(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()
	store := &Store{DB: db.Conn}
	t, notice, err := store.Complete(ctx, c.Param("id"), userID)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)
	events.Publish(events.EventTransactionCompleted, t.ReservationID, events.TransactionClosedPayload{
		TransactionID: t.ID,
		ReservationID: t.ReservationID,
		FinalStatus:   string(t.Status),
		TotalCents:    t.TotalCents,
	})

	return c.JSON(http.StatusOK, echo.Map{"transaction": t})
}

// =========================
// CancelTransaction - Either party abandons the payment
// =========================
func CancelTransaction(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()
	store := &Store{DB: db.Conn}
	t, notice, err := store.Cancel(ctx, c.Param("id"), userID)
	if err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	alerts.Emit(ctx, notice)
	events.Publish(events.EventTransactionCancelled, t.ReservationID, events.TransactionClosedPayload{
		TransactionID: t.ID,
		ReservationID: t.ReservationID,
		FinalStatus:   string(t.Status),
		TotalCents:    t.TotalCents,
	})

	return c.JSON(http.StatusOK, echo.Map{"transaction": t})
}

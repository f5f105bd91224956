package alerts

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agriport/farm2market/internal/db"
	"github.com/agriport/farm2market/internal/redisx"
)

// Notice is a pending notification produced by a state transition.
// Lifecycle code builds Notices; handlers hand them to Emit after the
// business transaction commits.
type Notice struct {
	UserID        string
	Type          string
	Title         string
	Message       string
	ReservationID string
	TransactionID string
}

// Emit records the notice as a notification row and mirrors it to the
// recipient's email through the task queue. Both paths are best-effort:
// a state transition must never fail because the counterparty could not
// be told about it.
func Emit(ctx context.Context, n Notice) {
	var resRef, txRef *string
	if n.ReservationID != "" {
		resRef = &n.ReservationID
	}
	if n.TransactionID != "" {
		txRef = &n.TransactionID
	}

	_, err := db.Conn.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, reservation_id, transaction_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), n.UserID, n.Type, n.Title, n.Message, resRef, txRef,
	)
	if err != nil {
		log.Printf("[notify][ERROR] failed to store notification for user=%s type=%s: %v", n.UserID, n.Type, err)
	} else {
		redisx.Invalidate(ctx, redisx.UnreadNotificationsKey(n.UserID))
	}

	var email string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, n.UserID).Scan(&email)
	if email != "" {
		if err := EnqueueLifecycleEmail(n, email); err != nil {
			log.Printf("[notify][ERROR] failed to enqueue email for user=%s: %v", n.UserID, err)
		}
	}
}

// EmitAll emits a batch of notices from one transition.
func EmitAll(ctx context.Context, notices []Notice) {
	for _, n := range notices {
		Emit(ctx, n)
	}
}

// CreateNotification inserts a bare in-app notification item without
// the email mirror. Used by admin broadcast.
func CreateNotification(ctx context.Context, userID, ntype, title, message string) error {
	_, err := db.Conn.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message)
         VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), userID, ntype, title, message,
	)
	if err == nil {
		redisx.Invalidate(ctx, redisx.UnreadNotificationsKey(userID))
	}
	return err
}

// unreadCountTTL bounds staleness of the cached unread counter.
const unreadCountTTL = 30 * time.Second

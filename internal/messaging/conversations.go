package messaging

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/agriport/farm2market/internal/db"
)

type conversation struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	Title         string  `json:"title,omitempty"`
	ListingID     *string `json:"listing_id,omitempty"`
	ReservationID *string `json:"reservation_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
	LastMessageAt *string `json:"last_message_at,omitempty"`
	Participants  []string `json:"participants"`
	Unread        int64   `json:"unread"`
}

// isParticipant reports whether userID belongs to the conversation.
func isParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var ok bool
	err := db.Conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2)`,
		conversationID, userID).Scan(&ok)
	return ok, err
}

// ListConversations - the current user's threads, most recent first
func ListConversations(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()
	rows, err := db.Conn.Query(ctx, `
		SELECT cv.id, cv.kind, COALESCE(cv.title,''), cv.listing_id, cv.reservation_id,
		       cv.created_at, cv.last_message_at
		FROM conversations cv
		JOIN conversation_participants cp ON cp.conversation_id = cv.id
		WHERE cp.user_id = $1
		ORDER BY COALESCE(cv.last_message_at, cv.created_at) DESC
	`, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list conversations"})
	}
	defer rows.Close()

	list := []conversation{}
	for rows.Next() {
		var cv conversation
		var createdAt time.Time
		var lastAt *time.Time
		if err := rows.Scan(&cv.ID, &cv.Kind, &cv.Title, &cv.ListingID, &cv.ReservationID, &createdAt, &lastAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read conversations"})
		}
		cv.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		if lastAt != nil {
			s := lastAt.UTC().Format(time.RFC3339)
			cv.LastMessageAt = &s
		}
		list = append(list, cv)
	}
	if err := rows.Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read conversations"})
	}

	for i := range list {
		prows, err := db.Conn.Query(ctx,
			`SELECT user_id FROM conversation_participants WHERE conversation_id = $1`, list[i].ID)
		if err != nil {
			continue
		}
		for prows.Next() {
			var uid string
			if prows.Scan(&uid) == nil {
				list[i].Participants = append(list[i].Participants, uid)
			}
		}
		prows.Close()

		_ = db.Conn.QueryRow(ctx, `
			SELECT COUNT(*) FROM messages m
			WHERE m.conversation_id = $1 AND m.sender_id <> $2
			  AND NOT EXISTS (SELECT 1 FROM message_reads r WHERE r.message_id = m.id AND r.user_id = $2)
		`, list[i].ID, userID).Scan(&list[i].Unread)
	}

	return c.JSON(http.StatusOK, echo.Map{"conversations": list})
}

// CreateConversation - open a thread with another user, optionally
// tied to a listing or reservation. Reuses an existing direct thread
// between the same two users over the same subject.
func CreateConversation(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		UserID        string `json:"user_id"`
		Kind          string `json:"kind"`
		Title         string `json:"title"`
		ListingID     string `json:"listing_id"`
		ReservationID string `json:"reservation_id"`
	}
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	if req.UserID == userID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot start a conversation with yourself"})
	}
	switch req.Kind {
	case "":
		req.Kind = "direct"
	case "direct", "product_inquiry", "reservation_discussion":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation kind"})
	}

	ctx := context.Background()

	var exists bool
	err := db.Conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND is_active = TRUE)`,
		req.UserID).Scan(&exists)
	if err != nil || !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	// Reuse an existing thread between the two users over the same subject
	var existingID string
	err = db.Conn.QueryRow(ctx, `
		SELECT cv.id FROM conversations cv
		JOIN conversation_participants a ON a.conversation_id = cv.id AND a.user_id = $1
		JOIN conversation_participants b ON b.conversation_id = cv.id AND b.user_id = $2
		WHERE cv.kind = $3
		  AND cv.listing_id IS NOT DISTINCT FROM NULLIF($4,'')::uuid
		  AND cv.reservation_id IS NOT DISTINCT FROM NULLIF($5,'')::uuid
		LIMIT 1
	`, userID, req.UserID, req.Kind, req.ListingID, req.ReservationID).Scan(&existingID)
	if err == nil {
		return c.JSON(http.StatusOK, echo.Map{"conversation_id": existingID, "existing": true})
	}
	if err != pgx.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check conversations"})
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db transaction error"})
	}
	defer tx.Rollback(ctx)

	convID := uuid.New().String()
	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, kind, title, listing_id, reservation_id)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,'')::uuid, NULLIF($5,'')::uuid)
	`, convID, req.Kind, req.Title, req.ListingID, req.ReservationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create conversation"})
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2), ($1, $3)
	`, convID, userID, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add participants"})
	}
	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"conversation_id": convID})
}

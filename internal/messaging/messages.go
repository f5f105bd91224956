package messaging

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/db"
	"github.com/agriport/farm2market/internal/redisx"
)

// SendMessage - post into a conversation the user belongs to
func SendMessage(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing conversation id"})
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil || body.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	ctx := context.Background()
	member, err := isParticipant(ctx, convID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check conversation"})
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant in this conversation"})
	}

	msgID := uuid.New().String()
	var createdAt time.Time
	err = db.Conn.QueryRow(ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, content)
         VALUES ($1, $2, $3, $4) RETURNING created_at`,
		msgID, convID, userID, body.Content,
	).Scan(&createdAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send message"})
	}
	_, _ = db.Conn.Exec(ctx, `UPDATE conversations SET last_message_at = $1 WHERE id = $2`, createdAt, convID)

	BroadcastNewMessage(convID, echo.Map{
		"id":              msgID,
		"conversation_id": convID,
		"sender_id":       userID,
		"content":         body.Content,
		"created_at":      createdAt.UTC().Format(time.RFC3339),
	})

	// Notify the other participants, skipping everything on failure
	var senderName string
	_ = db.Conn.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, userID).Scan(&senderName)

	prows, err := db.Conn.Query(ctx,
		`SELECT user_id FROM conversation_participants WHERE conversation_id = $1 AND user_id <> $2`,
		convID, userID)
	if err == nil {
		var recipients []string
		for prows.Next() {
			var uid string
			if prows.Scan(&uid) == nil {
				recipients = append(recipients, uid)
			}
		}
		prows.Close()
		for _, rid := range recipients {
			alerts.Emit(ctx, alerts.Notice{
				UserID:  rid,
				Type:    alerts.TypeNewMessage,
				Title:   "New Message",
				Message: senderName + " sent you a message",
			})
			redisx.Invalidate(ctx, redisx.UnreadMessagesKey(rid))
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"message_id": msgID})
}

// ListMessages - the conversation transcript, oldest first
func ListMessages(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing conversation id"})
	}

	ctx := context.Background()
	member, err := isParticipant(ctx, convID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check conversation"})
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant in this conversation"})
	}

	// Optional since filter for incremental fetches
	var rows pgx.Rows
	if sinceStr := c.QueryParam("since"); sinceStr != "" {
		sinceTime, perr := time.Parse(time.RFC3339, sinceStr)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid since timestamp, use RFC3339"})
		}
		rows, err = db.Conn.Query(ctx,
			`SELECT m.id, m.sender_id, m.content, m.created_at, r.read_at
             FROM messages m
             LEFT JOIN message_reads r ON r.message_id = m.id AND r.user_id = $2
             WHERE m.conversation_id = $1 AND m.created_at > $3
             ORDER BY m.created_at ASC`, convID, userID, sinceTime)
	} else {
		rows, err = db.Conn.Query(ctx,
			`SELECT m.id, m.sender_id, m.content, m.created_at, r.read_at
             FROM messages m
             LEFT JOIN message_reads r ON r.message_id = m.id AND r.user_id = $2
             WHERE m.conversation_id = $1
             ORDER BY m.created_at ASC`, convID, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list messages"})
	}
	defer rows.Close()

	type message struct {
		ID        string  `json:"id"`
		SenderID  string  `json:"sender_id"`
		Content   string  `json:"content"`
		CreatedAt string  `json:"created_at"`
		ReadAt    *string `json:"read_at"`
	}

	msgs := []message{}
	for rows.Next() {
		var m message
		var createdAt time.Time
		var readAt *time.Time
		if err := rows.Scan(&m.ID, &m.SenderID, &m.Content, &createdAt, &readAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		m.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		if readAt != nil {
			s := readAt.UTC().Format(time.RFC3339)
			m.ReadAt = &s
		}
		msgs = append(msgs, m)
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// MarkConversationRead - mark everything the others wrote as read
func MarkConversationRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing conversation id"})
	}

	ctx := context.Background()
	member, err := isParticipant(ctx, convID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check conversation"})
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant in this conversation"})
	}

	ct, err := db.Conn.Exec(ctx, `
		INSERT INTO message_reads (message_id, user_id)
		SELECT m.id, $2 FROM messages m
		WHERE m.conversation_id = $1 AND m.sender_id <> $2
		ON CONFLICT DO NOTHING
	`, convID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark read"})
	}

	redisx.Invalidate(ctx, redisx.UnreadMessagesKey(userID))
	BroadcastConversationRead(convID, echo.Map{
		"conversation_id": convID,
		"user_id":         userID,
		"read_at":         time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"marked": ct.RowsAffected()})
}

// UnreadMessageCount - unread messages across all of the user's threads
func UnreadMessageCount(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()
	if n, ok := redisx.GetCount(ctx, redisx.UnreadMessagesKey(userID)); ok {
		return c.JSON(http.StatusOK, echo.Map{"unread": n})
	}

	var count int
	err := db.Conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages m
		JOIN conversation_participants cp ON cp.conversation_id = m.conversation_id AND cp.user_id = $1
		WHERE m.sender_id <> $1
		  AND NOT EXISTS (SELECT 1 FROM message_reads r WHERE r.message_id = m.id AND r.user_id = $1)
	`, userID).Scan(&count)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute unread count"})
	}

	redisx.SetCount(ctx, redisx.UnreadMessagesKey(userID), count, 30*time.Second)
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

package admin

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/agriport/farm2market/internal/alerts"
    "github.com/agriport/farm2market/internal/db"
)

// POST /admin/notifications/broadcast
// Creates an in-app notification for every active user matching the
// optional role filter, and mirrors it to email through the queue.
func Broadcast(c echo.Context) error {
    adminID, _ := c.Get("user_id").(string)

    var req struct {
        Role    string `json:"role"`
        Subject string `json:"subject"`
        Body    string `json:"body"`
    }
    if err := c.Bind(&req); err != nil || req.Subject == "" || req.Body == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject and body are required"})
    }

    ctx := context.Background()
    query := `SELECT id, email FROM users WHERE is_active = TRUE`
    args := []any{}
    if req.Role != "" {
        query += ` AND role = $1`
        args = append(args, req.Role)
    }

    rows, err := db.Conn.Query(ctx, query, args...)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch recipients"})
    }
    defer rows.Close()

    sent := 0
    for rows.Next() {
        var uid, email string
        if rows.Scan(&uid, &email) != nil {
            continue
        }
        alerts.CreateNotification(ctx, uid, alerts.TypeSystemAnnouncement, req.Subject, req.Body)
        _ = alerts.EnqueueBroadcast(adminID, email, req.Subject, req.Body)
        sent++
    }

    return c.JSON(http.StatusOK, echo.Map{"recipients": sent})
}

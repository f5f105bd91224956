package admin

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/agriport/farm2market/internal/db"
)

// GET /admin/stats
func Stats(c echo.Context) error {
    ctx := context.Background()

    var users, farmers, buyers, pendingFarmers, listings, reservations, transactions int
    var completedVolumeCents int64

    _ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users)
    _ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'farmer'`).Scan(&farmers)
    _ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'buyer'`).Scan(&buyers)
    _ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'farmer' AND is_approved = FALSE AND is_active = TRUE`).Scan(&pendingFarmers)
    _ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE archived = FALSE`).Scan(&listings)
    _ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&reservations)
    _ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&transactions)
    _ = db.Conn.QueryRow(ctx, `SELECT COALESCE(SUM(total_cents), 0) FROM transactions WHERE status = 'completed'`).Scan(&completedVolumeCents)

    return c.JSON(http.StatusOK, echo.Map{
        "users":                  users,
        "farmers":                farmers,
        "buyers":                 buyers,
        "pending_farmers":        pendingFarmers,
        "active_listings":        listings,
        "reservations":           reservations,
        "transactions":           transactions,
        "completed_volume_cents": completedVolumeCents,
    })
}

package admin

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/agriport/farm2market/internal/db"
)

type AdminTransaction struct {
    ID            string    `json:"id"`
    ReservationID string    `json:"reservation_id"`
    BuyerID       string    `json:"buyer_id"`
    FarmerID      string    `json:"farmer_id"`
    TotalCents    int64     `json:"total_cents"`
    Status        string    `json:"status"`
    CreatedAt     time.Time `json:"created_at"`
}

// GET /admin/transactions?user_id=&status=
func ListTransactions(c echo.Context) error {
    query := `SELECT id, reservation_id, buyer_id, farmer_id, total_cents, status, created_at FROM transactions`
    args := []any{}
    where := ""
    if uid := c.QueryParam("user_id"); uid != "" {
        where = ` WHERE (buyer_id = $1 OR farmer_id = $1)`
        args = append(args, uid)
    }
    if status := c.QueryParam("status"); status != "" {
        if where == "" {
            where = ` WHERE status = $1`
        } else {
            where += ` AND status = $2`
        }
        args = append(args, status)
    }
    query += where + ` ORDER BY created_at DESC LIMIT 200`

    rows, err := db.Conn.Query(context.Background(), query, args...)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch transactions"})
    }
    defer rows.Close()

    txs := []AdminTransaction{}
    for rows.Next() {
        var t AdminTransaction
        if err := rows.Scan(&t.ID, &t.ReservationID, &t.BuyerID, &t.FarmerID, &t.TotalCents, &t.Status, &t.CreatedAt); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read transaction record"})
        }
        txs = append(txs, t)
    }
    return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

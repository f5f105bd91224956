package admin

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/agriport/farm2market/internal/alerts"
    "github.com/agriport/farm2market/internal/db"
)

type AdminUser struct {
    ID         string    `json:"id"`
    Name       string    `json:"name"`
    Email      string    `json:"email"`
    Role       string    `json:"role"`
    IsApproved bool      `json:"is_approved"`
    IsActive   bool      `json:"is_active"`
    CreatedAt  time.Time `json:"created_at"`
}

// GET /admin/users?role=&approved=
func ListUsers(c echo.Context) error {
    ctx := context.Background()

    query := `SELECT id, name, email, role, is_approved, is_active, created_at FROM users`
    args := []any{}
    where := ""
    if role := c.QueryParam("role"); role != "" {
        where = ` WHERE role = $1`
        args = append(args, role)
    }
    if approved := c.QueryParam("approved"); approved == "true" || approved == "false" {
        if where == "" {
            where = ` WHERE is_approved = $1`
        } else {
            where += ` AND is_approved = $2`
        }
        args = append(args, approved == "true")
    }
    query += where + ` ORDER BY created_at DESC`

    rows, err := db.Conn.Query(ctx, query, args...)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch users"})
    }
    defer rows.Close()

    users := []AdminUser{}
    for rows.Next() {
        var u AdminUser
        if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsApproved, &u.IsActive, &u.CreatedAt); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read user record"})
        }
        users = append(users, u)
    }
    return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// GET /admin/farmers/pending
func PendingFarmers(c echo.Context) error {
    rows, err := db.Conn.Query(context.Background(), `
        SELECT u.id, u.name, u.email, u.role, u.is_approved, u.is_active, u.created_at
        FROM users u
        WHERE u.role = 'farmer' AND u.is_approved = FALSE AND u.is_active = TRUE
        ORDER BY u.created_at ASC
    `)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch pending farmers"})
    }
    defer rows.Close()

    farmers := []AdminUser{}
    for rows.Next() {
        var u AdminUser
        if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsApproved, &u.IsActive, &u.CreatedAt); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read user record"})
        }
        farmers = append(farmers, u)
    }
    return c.JSON(http.StatusOK, echo.Map{"farmers": farmers})
}

// POST /admin/users/:id/approve
func ApproveUser(c echo.Context) error {
    userID := c.Param("id")
    if userID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user id required"})
    }

    ctx := context.Background()
    var email string
    err := db.Conn.QueryRow(ctx, `
        UPDATE users SET is_approved = TRUE WHERE id = $1 RETURNING email
    `, userID).Scan(&email)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }

    _ = alerts.EnqueueFarmerApproval(userID, email, true, "")
    alerts.CreateNotification(ctx, userID, alerts.TypeSystemAnnouncement,
        "Account Approved", "Your account has been approved. You can now use the marketplace.")

    return c.JSON(http.StatusOK, echo.Map{"message": "user approved", "user_id": userID})
}

// POST /admin/users/:id/reject
func RejectUser(c echo.Context) error {
    userID := c.Param("id")
    if userID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user id required"})
    }

    var req struct {
        Reason string `json:"reason"`
    }
    if err := c.Bind(&req); err != nil || req.Reason == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "a rejection reason is required"})
    }

    ctx := context.Background()
    var email string
    err := db.Conn.QueryRow(ctx, `
        UPDATE users SET is_approved = FALSE WHERE id = $1 RETURNING email
    `, userID).Scan(&email)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }

    _ = alerts.EnqueueFarmerApproval(userID, email, false, req.Reason)
    alerts.CreateNotification(ctx, userID, alerts.TypeSystemAnnouncement,
        "Account Rejected", "Your account application was rejected: "+req.Reason)

    return c.JSON(http.StatusOK, echo.Map{"message": "user rejected", "user_id": userID})
}

// POST /admin/users/:id/suspend
// Suspension also cancels the user's open reservations so the other
// party is not left waiting on an account that can no longer act.
func SuspendUser(c echo.Context) error {
    userID := c.Param("id")
    if userID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user id required"})
    }

    ctx := context.Background()
    tx, err := db.Conn.Begin(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db transaction error"})
    }
    defer tx.Rollback(ctx)

    ct, err := tx.Exec(ctx, `UPDATE users SET is_active = FALSE WHERE id = $1`, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to suspend user"})
    }
    if ct.RowsAffected() == 0 {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }

    _, err = tx.Exec(ctx, `
        UPDATE reservations SET status = 'cancelled', updated_at = NOW()
        WHERE status NOT IN ('completed','cancelled','rejected')
          AND (buyer_id = $1 OR listing_id IN (SELECT id FROM listings WHERE farmer_id = $1))
    `, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel open reservations"})
    }
    _, err = tx.Exec(ctx, `
        UPDATE transactions SET status = 'cancelled', updated_at = NOW()
        WHERE status NOT IN ('completed','cancelled') AND (buyer_id = $1 OR farmer_id = $1)
    `, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel open transactions"})
    }

    if err := tx.Commit(ctx); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction failed"})
    }

    return c.JSON(http.StatusOK, echo.Map{"message": "user suspended", "user_id": userID})
}

// POST /admin/users/:id/activate
func ActivateUser(c echo.Context) error {
    userID := c.Param("id")
    if userID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user id required"})
    }
    ct, err := db.Conn.Exec(context.Background(), `UPDATE users SET is_active = TRUE WHERE id = $1`, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to activate user"})
    }
    if ct.RowsAffected() == 0 {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "user activated", "user_id": userID})
}

package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agriport/farm2market/internal/db"
)

// Me returns the currently authenticated user's account record.
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var (
		id, name, email, role string
		phone                 *string
		approved, active      bool
	)
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, name, email, phone, role, is_approved, is_active FROM users WHERE id=$1`, userID).
		Scan(&id, &name, &email, &phone, &role, &approved, &active)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	resp := echo.Map{
		"id":       id,
		"name":     name,
		"email":    email,
		"role":     role,
		"approved": approved,
		"active":   active,
	}
	if phone != nil {
		resp["phone"] = *phone
	}
	return c.JSON(http.StatusOK, resp)
}

package user

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agriport/farm2market/internal/db"
)

// GET /user/:id/profile
// Farmers additionally expose their location, trust badge and review
// aggregate.
func GetPublicProfile(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	var (
		id        string
		name      string
		role      string
		createdAt time.Time
	)
	err := db.Conn.QueryRow(context.Background(), `
		SELECT id, name, role, created_at
		FROM users
		WHERE id = $1 AND is_active = TRUE
	`, userID).Scan(&id, &name, &role, &createdAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	profile := echo.Map{
		"id":         id,
		"name":       name,
		"role":       role,
		"created_at": createdAt.Format(time.RFC3339),
	}

	if role == "farmer" {
		var location *string
		var trustBadge bool
		if err := db.Conn.QueryRow(context.Background(), `
			SELECT location, trust_badge FROM farmer_profiles WHERE farmer_id = $1
		`, id).Scan(&location, &trustBadge); err == nil {
			if location != nil {
				profile["location"] = *location
			}
			profile["trust_badge"] = trustBadge
		}

		var avgRating *float64
		var reviewCount int
		if err := db.Conn.QueryRow(context.Background(), `
			SELECT AVG(rating)::float8, COUNT(*) FROM reviews WHERE farmer_id = $1
		`, id).Scan(&avgRating, &reviewCount); err == nil {
			profile["review_count"] = reviewCount
			if avgRating != nil {
				profile["average_rating"] = *avgRating
			}
		}
	}

	return c.JSON(http.StatusOK, profile)
}

package user

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/agriport/farm2market/internal/db"
)

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	// buyers only
	PreferredDeliveryMethod string `json:"preferred_delivery_method"`
	DeliveryAddress         string `json:"delivery_address"`
}

// PATCH /user/profile
func UpdateProfile(c echo.Context) error {
    userIDVal := c.Get("user_id")
    userID, ok := userIDVal.(string)
    if !ok || userID == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or missing token"})
    }
    role, _ := c.Get("role").(string)

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := c.Request().Context()
	_, err := db.Conn.Exec(ctx, `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name),
		    phone = COALESCE(NULLIF($2, ''), phone)
		WHERE id = $3
	`, req.Name, req.Phone, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	switch role {
	case "farmer":
		_, err = db.Conn.Exec(ctx, `
			UPDATE farmer_profiles
			SET location = COALESCE(NULLIF($1, ''), location),
			    updated_at = NOW()
			WHERE farmer_id = $2
		`, req.Location, userID)
	case "buyer":
		_, err = db.Conn.Exec(ctx, `
			UPDATE buyer_profiles
			SET location = COALESCE(NULLIF($1, ''), location),
			    preferred_delivery_method = COALESCE(NULLIF($2, ''), preferred_delivery_method),
			    delivery_address = COALESCE(NULLIF($3, ''), delivery_address),
			    updated_at = NOW()
			WHERE buyer_id = $4
		`, req.Location, req.PreferredDeliveryMethod, req.DeliveryAddress, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "profile updated successfully",
	})
}

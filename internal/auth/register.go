package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/db"
	"github.com/agriport/farm2market/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	// buyers only
	PreferredDeliveryMethod string `json:"preferred_delivery_method"`
	DeliveryAddress         string `json:"delivery_address"`
}

type RegisterResponse struct {
	Token    string `json:"token"`
	Approved bool   `json:"approved"`
}

// ===== RegisterFarmer =====
// Farmers start unapproved and wait for an admin decision.
func RegisterFarmer(c echo.Context) error {
	return register(c, "farmer")
}

// ===== RegisterBuyer =====
// Buyers are approved at creation.
func RegisterBuyer(c echo.Context) error {
	return register(c, "buyer")
}

func register(c echo.Context, role string) error {
	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and a password of at least 6 characters are required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	approved := role == "buyer"

	conn := db.Conn
	ctx := context.Background()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db transaction error"})
	}
	defer tx.Rollback(ctx)

	var userID string
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password, phone, role, is_approved)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, $7)
		RETURNING id
	`, uuid.New().String(), req.Name, req.Email, string(hashed), req.Phone, role, approved).Scan(&userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already exists"})
	}

	// Role profile row lives and dies with the account
	switch role {
	case "farmer":
		_, err = tx.Exec(ctx, `
			INSERT INTO farmer_profiles (farmer_id, location, created_at, updated_at)
			VALUES ($1, NULLIF($2,''), $3, $3)
		`, userID, req.Location, time.Now())
	case "buyer":
		method := req.PreferredDeliveryMethod
		if method == "" {
			method = "pickup"
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO buyer_profiles (buyer_id, location, preferred_delivery_method, delivery_address, created_at, updated_at)
			VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), $5, $5)
		`, userID, req.Location, method, req.DeliveryAddress, time.Now())
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile creation failed"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction failed"})
	}

	_ = alerts.EnqueueWelcomeEmail(userID, req.Email, req.Name, role)

	signed, err := utils.SignUserToken(userID, role, approved)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	return c.JSON(http.StatusCreated, RegisterResponse{Token: signed, Approved: approved})
}

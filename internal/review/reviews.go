package review

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agriport/farm2market/internal/db"
)

type Review struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	BuyerID       string    `json:"buyer_id"`
	FarmerID      string    `json:"farmer_id"`
	Rating        int       `json:"rating"`
	ReviewText    string    `json:"review_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// =========================
// CreateReview - Buyer rates a farmer after a completed reservation
// =========================
func CreateReview(c echo.Context) error {
	buyerID, ok := c.Get("user_id").(string)
	if !ok || buyerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	reservationID := c.Param("id")
	if reservationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing reservation id"})
	}

	var req struct {
		Rating     int    `json:"rating"`
		ReviewText string `json:"review_text"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx := context.Background()

	var resBuyerID, status, farmerID string
	err := db.Conn.QueryRow(ctx, `
		SELECT r.buyer_id, r.status, l.farmer_id
		FROM reservations r JOIN listings l ON l.id = r.listing_id
		WHERE r.id = $1
	`, reservationID).Scan(&resBuyerID, &status, &farmerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if resBuyerID != buyerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the reservation's buyer can review it"})
	}
	if status != "completed" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only completed reservations can be reviewed"})
	}

	r := Review{
		ID:            uuid.New().String(),
		ReservationID: reservationID,
		BuyerID:       buyerID,
		FarmerID:      farmerID,
		Rating:        req.Rating,
		ReviewText:    req.ReviewText,
		CreatedAt:     time.Now(),
	}
	_, err = db.Conn.Exec(ctx, `
		INSERT INTO reviews (id, reservation_id, buyer_id, farmer_id, rating, review_text, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), $7)
	`, r.ID, r.ReservationID, r.BuyerID, r.FarmerID, r.Rating, r.ReviewText, r.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already reviewed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"review": r})
}

// =========================
// ListFarmerReviews - Public review feed with the aggregate
// =========================
func ListFarmerReviews(c echo.Context) error {
	farmerID := c.Param("id")
	if farmerID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing farmer id"})
	}

	ctx := context.Background()
	rows, err := db.Conn.Query(ctx, `
		SELECT id, reservation_id, buyer_id, farmer_id, rating, COALESCE(review_text,''), created_at
		FROM reviews WHERE farmer_id = $1 ORDER BY created_at DESC
	`, farmerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reviews"})
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.ReservationID, &r.BuyerID, &r.FarmerID, &r.Rating, &r.ReviewText, &r.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read review record"})
		}
		reviews = append(reviews, r)
	}

	var avg *float64
	_ = db.Conn.QueryRow(ctx, `SELECT AVG(rating)::float8 FROM reviews WHERE farmer_id = $1`, farmerID).Scan(&avg)

	resp := echo.Map{"reviews": reviews, "count": len(reviews)}
	if avg != nil {
		resp["average_rating"] = *avg
	}
	return c.JSON(http.StatusOK, resp)
}

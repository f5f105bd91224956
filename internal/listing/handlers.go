package listing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/agriport/farm2market/internal/db"
	"github.com/agriport/farm2market/internal/fault"
)

// =========================
// CreateListing - Farmer lists produce
// =========================
func CreateListing(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		ProductName string `json:"product_name"`
		Description string `json:"description"`
		PriceCents  int64  `json:"price_cents"`
		Quantity    int    `json:"quantity"`
		Unit        string `json:"unit"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Unit == "" {
		req.Unit = "kg"
	}

	l := &Listing{
		ID:          uuid.New().String(),
		FarmerID:    farmerID,
		ProductName: strings.TrimSpace(req.ProductName),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		ImageURL:    req.ImageURL,
		Status:      StatusAvailable,
		CreatedAt:   time.Now(),
	}
	if err := ValidateNew(l); err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	_, err := db.Conn.Exec(context.Background(),
		`INSERT INTO listings (id, farmer_id, product_name, description, price_cents, quantity, unit, image_url, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.FarmerID, l.ProductName, l.Description, l.PriceCents, l.Quantity, l.Unit, l.ImageURL, l.Status, l.CreatedAt,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create listing"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"listing": l})
}

// =========================
// GetMyListings - Farmer's own listings
// =========================
func GetMyListings(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, farmer_id, product_name, COALESCE(description,''), price_cents, quantity, unit,
                COALESCE(image_url,''), status, archived, created_at
         FROM listings WHERE farmer_id = $1 ORDER BY created_at DESC`, farmerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch listings"})
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": listings})
}

// =========================
// BrowseListings - Public marketplace browse/search
// =========================
func BrowseListings(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("q"))

	query := `SELECT id, farmer_id, product_name, COALESCE(description,''), price_cents, quantity, unit,
                     COALESCE(image_url,''), status, archived, created_at
              FROM listings
              WHERE archived = FALSE AND status = 'available'`
	args := []interface{}{}
	if search != "" {
		query += ` AND product_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch listings"})
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
	}
	return c.JSON(http.StatusOK, echo.Map{"listings": listings})
}

// =========================
// GetListing - Public listing details
// =========================
func GetListing(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing listing id in URL"})
	}

	var l Listing
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, farmer_id, product_name, COALESCE(description,''), price_cents, quantity, unit,
                COALESCE(image_url,''), status, archived, created_at
         FROM listings WHERE id = $1`, id,
	).Scan(&l.ID, &l.FarmerID, &l.ProductName, &l.Description, &l.PriceCents, &l.Quantity, &l.Unit,
		&l.ImageURL, &l.Status, &l.Archived, &l.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"listing": l})
}

// =========================
// UpdateListing - Owner updates price/quantity/details
// =========================
func UpdateListing(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing listing id in URL"})
	}

	var l Listing
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, farmer_id, product_name, COALESCE(description,''), price_cents, quantity, unit,
                COALESCE(image_url,''), status, archived, created_at
         FROM listings WHERE id = $1 AND farmer_id = $2`, id, farmerID,
	).Scan(&l.ID, &l.FarmerID, &l.ProductName, &l.Description, &l.PriceCents, &l.Quantity, &l.Unit,
		&l.ImageURL, &l.Status, &l.Archived, &l.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found or not yours"})
	}

	var req struct {
		ProductName *string `json:"product_name"`
		Description *string `json:"description"`
		PriceCents  *int64  `json:"price_cents"`
		Quantity    *int    `json:"quantity"`
		Unit        *string `json:"unit"`
		ImageURL    *string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ProductName != nil {
		l.ProductName = strings.TrimSpace(*req.ProductName)
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.PriceCents != nil {
		l.PriceCents = *req.PriceCents
	}
	if req.Quantity != nil {
		l.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		l.Unit = *req.Unit
	}
	if req.ImageURL != nil {
		l.ImageURL = *req.ImageURL
	}
	if err := ValidateNew(&l); err != nil {
		return c.JSON(fault.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	// Replenishing quantity makes a sold listing available again.
	if l.Quantity > 0 && l.Status == StatusSold {
		l.Status = StatusAvailable
	}

	_, err = db.Conn.Exec(context.Background(),
		`UPDATE listings
         SET product_name = $1, description = $2, price_cents = $3, quantity = $4, unit = $5, image_url = $6, status = $7
         WHERE id = $8 AND farmer_id = $9`,
		l.ProductName, l.Description, l.PriceCents, l.Quantity, l.Unit, l.ImageURL, l.Status, l.ID, farmerID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update listing"})
	}

	return c.JSON(http.StatusOK, echo.Map{"listing": l})
}

// =========================
// ArchiveListing - Owner retires a listing (no hard delete while
// reservations reference it)
// =========================
func ArchiveListing(c echo.Context) error {
	farmerID, ok := c.Get("user_id").(string)
	if !ok || farmerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing listing id in URL"})
	}

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE listings SET archived = TRUE WHERE id = $1 AND farmer_id = $2`, id, farmerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to archive listing"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found or not yours"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Listing archived"})
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
}

func scanListings(rows rowScanner) ([]Listing, error) {
	var listings []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.FarmerID, &l.ProductName, &l.Description, &l.PriceCents, &l.Quantity,
			&l.Unit, &l.ImageURL, &l.Status, &l.Archived, &l.CreatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

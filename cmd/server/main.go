package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agriport/farm2market/internal/admin"
	"github.com/agriport/farm2market/internal/alerts"
	"github.com/agriport/farm2market/internal/auth"
	"github.com/agriport/farm2market/internal/config"
	"github.com/agriport/farm2market/internal/db"
	"github.com/agriport/farm2market/internal/events"
	"github.com/agriport/farm2market/internal/listing"
	"github.com/agriport/farm2market/internal/messaging"
	mware "github.com/agriport/farm2market/internal/middleware"
	"github.com/agriport/farm2market/internal/redisx"
	"github.com/agriport/farm2market/internal/reservation"
	"github.com/agriport/farm2market/internal/review"
	"github.com/agriport/farm2market/internal/transaction"
	"github.com/agriport/farm2market/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db.Init(cfg.PostgresDSN)
	redisx.Init(cfg.RedisAddr)
	alerts.Init(cfg.RedisAddr)
	defer alerts.Close()
	events.Init(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName)
	defer events.Close()

	e := echo.New()
	e.HideBanner = true

	// Basic middleware
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// Health and root routes
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": cfg.ServiceName})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if db.Conn == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db not initialized"})
		}
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public routes
	// Auth routes with per-IP rate limiting to protect signup/login from abuse
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/register/farmer", auth.RegisterFarmer)
	authGroup.POST("/register/buyer", auth.RegisterBuyer)
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/password/request", auth.RequestPasswordReset)
	authGroup.POST("/password/reset", auth.ResetPassword)
	authGroup.POST("/bootstrap-admin", auth.BootstrapAdmin)

	e.GET("/user/:id/profile", user.GetPublicProfile)
	e.GET("/marketplace/listings", listing.BrowseListings)
	e.GET("/marketplace/listings/:id", listing.GetListing)
	e.GET("/farmers/:id/reviews", review.ListFarmerReviews)

	// Protected routes
	api := e.Group("")
	api.Use(mware.JWTMiddleware)

	api.GET("/auth/me", auth.Me)
	api.PATCH("/user/profile", user.UpdateProfile)

	// Listings (approved farmers only for writes)
	api.POST("/listings", listing.CreateListing, mware.RequireRoles("farmer"), mware.RequireApproved)
	api.GET("/listings/me", listing.GetMyListings, mware.RequireRoles("farmer"))
	api.PATCH("/listings/:id", listing.UpdateListing, mware.RequireRoles("farmer"))
	api.POST("/listings/:id/archive", listing.ArchiveListing, mware.RequireRoles("farmer"))

	// Reservations
	api.POST("/reservations", reservation.CreateReservation, mware.RequireRoles("buyer"))
	api.GET("/reservations/me", reservation.GetMyReservations, mware.RequireRoles("buyer"))
	api.GET("/reservations/incoming", reservation.GetIncomingReservations, mware.RequireRoles("farmer"))
	api.GET("/reservations/:id", reservation.GetReservation)
	api.POST("/reservations/:id/approve", reservation.ApproveReservation, mware.RequireRoles("farmer"))
	api.POST("/reservations/:id/reject", reservation.RejectReservation, mware.RequireRoles("farmer"))
	api.POST("/reservations/:id/ready", reservation.MarkReservationReady, mware.RequireRoles("farmer"))
	api.POST("/reservations/:id/cancel", reservation.CancelReservation, mware.RequireRoles("buyer"))
	api.POST("/reservations/:id/review", review.CreateReview, mware.RequireRoles("buyer"))

	// Transactions
	api.GET("/transactions/me", transaction.GetMyTransactions)
	api.GET("/transactions/:id", transaction.GetTransaction)
	api.POST("/transactions/:id/receipt", transaction.UploadTransactionReceipt, mware.RequireRoles("buyer"))
	api.POST("/transactions/:id/verify", transaction.VerifyTransactionReceipt, mware.RequireRoles("farmer"))
	api.POST("/transactions/:id/complete", transaction.CompleteTransaction)
	api.POST("/transactions/:id/cancel", transaction.CancelTransaction)

	// Notifications
	api.GET("/notifications", alerts.ListNotifications)
	api.POST("/notifications/:id/read", alerts.MarkNotificationRead)
	api.POST("/notifications/read-all", alerts.MarkAllNotificationsRead)
	api.GET("/notifications/unread-count", alerts.UnreadCount)

	// Messaging
	api.GET("/conversations", messaging.ListConversations)
	api.POST("/conversations", messaging.CreateConversation)
	api.GET("/conversations/:id/messages", messaging.ListMessages)
	api.POST("/conversations/:id/messages", messaging.SendMessage)
	api.POST("/conversations/:id/read", messaging.MarkConversationRead)
	api.GET("/messages/unread-count", messaging.UnreadMessageCount)
	api.GET("/ws/conversations/:id", messaging.ConversationWS)

	// Admin routes
	adm := e.Group("/admin")
	adm.Use(mware.JWTMiddleware)
	adm.Use(mware.AdminGuard)

	adm.GET("/users", admin.ListUsers)
	adm.GET("/farmers/pending", admin.PendingFarmers)
	adm.POST("/users/:id/approve", admin.ApproveUser)
	adm.POST("/users/:id/reject", admin.RejectUser)
	adm.POST("/users/:id/suspend", admin.SuspendUser)
	adm.POST("/users/:id/activate", admin.ActivateUser)
	adm.GET("/stats", admin.Stats)
	adm.GET("/transactions", admin.ListTransactions)
	adm.POST("/notifications/broadcast", admin.Broadcast)

	// Start server
	if err := e.Start(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

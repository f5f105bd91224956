package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/agriport/farm2market/internal/config"
	"github.com/agriport/farm2market/internal/db"
)

func main() {
	email := flag.String("email", "", "Email of the user to approve")
	flag.Parse()

	if *email == "" {
		log.Fatalf("usage: go run cmd/adminutil/approve_user/main.go -email user@example.com")
	}

	_ = godotenv.Load()
	db.Init(config.Load().PostgresDSN)

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET is_approved = TRUE WHERE email = $1`, *email)
	if err != nil {
		log.Fatalf("failed to approve user: %v", err)
	}
	if ct.RowsAffected() == 0 {
		log.Fatalf("no user found with email: %s", *email)
	}

	fmt.Printf("User %s approved.\n", *email)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/agriport/farm2market/internal/config"
	"github.com/agriport/farm2market/internal/db"
)

func main() {
	name := flag.String("name", "Administrator", "Display name for the admin account")
	email := flag.String("email", "", "Email for the admin account")
	password := flag.String("password", "", "Password for the admin account")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatalf("usage: go run cmd/adminutil/create_admin/main.go -email admin@example.com -password secret")
	}

	_ = godotenv.Load()
	db.Init(config.Load().PostgresDSN)

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ct, err := db.Conn.Exec(context.Background(), `
        INSERT INTO users (id, name, email, password, role, is_approved)
        VALUES ($1, $2, $3, $4, 'admin', TRUE)
        ON CONFLICT (email) DO NOTHING
    `, uuid.New().String(), *name, *email, string(hashed))
	if err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	if ct.RowsAffected() == 0 {
		log.Fatalf("a user with email %s already exists", *email)
	}

	fmt.Printf("Admin account %s created.\n", *email)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/gitakbarhub/service-locator-database/internal/db"
)

func main() {
	username := flag.String("username", "", "Username for the admin account")
	password := flag.String("password", "", "Password for the admin account")
	email := flag.String("email", "", "Optional alert email for the admin account")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatalf("usage: go run cmd/adminutil/seed_admin/main.go -username admin -password secret [-email admin@example.com]")
	}

	_ = godotenv.Load()
	db.Init()

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var mail *string
	if *email != "" {
		mail = email
	}

	// Idempotent: re-running updates the existing admin's credentials.
	_, err = db.Conn.Exec(context.Background(), `
        INSERT INTO users (id, username, email, password, role)
        VALUES ($1, $2, $3, $4, 'admin')
        ON CONFLICT (username) DO UPDATE SET email = $3, password = $4, role = 'admin'
    `, uuid.New().String(), *username, mail, string(hashed))
	if err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	fmt.Printf("Admin account %s is ready.\n", *username)
}

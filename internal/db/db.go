package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and bootstraps the schema.
func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
	}

	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	ensureUsersTable()
	ensureShopsTable()
	ensureRequestsTable()
	ensureHelpTicketsTable()
}

// ensureUsersTable creates the accounts table if missing
func ensureUsersTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            email TEXT,
            password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user','provider','admin')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		log.Printf("failed to create users table: %v", err)
	}
}

// ensureShopsTable creates the provider catalog table if missing
func ensureShopsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS shops (
            id BIGSERIAL PRIMARY KEY,
            owner_id UUID NOT NULL REFERENCES users(id),
            name TEXT NOT NULL,
            service TEXT NOT NULL CHECK (service IN (
                'electrician','plumber','mechanic','carwash',
                'carpenter','painter','ac_repair','welder')),
            phone TEXT,
            address TEXT,
            lat DOUBLE PRECISION NOT NULL CHECK (lat BETWEEN -90 AND 90),
            lng DOUBLE PRECISION NOT NULL CHECK (lng BETWEEN -180 AND 180),
            rating NUMERIC(2,1) NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 5),
            reviews INTEGER NOT NULL DEFAULT 0 CHECK (reviews >= 0),
            open_time TEXT,
            close_time TEXT,
            description TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_shops_service ON shops(service);
        CREATE INDEX IF NOT EXISTS idx_shops_owner ON shops(owner_id);
    `)
	if err != nil {
		log.Printf("failed to create shops table: %v", err)
	}
}

// ensureRequestsTable creates the request table with the status constraint
// the lifecycle guard relies on
func ensureRequestsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS service_requests (
            id UUID PRIMARY KEY,
            provider_id BIGINT NOT NULL REFERENCES shops(id),
            requester_id UUID NULL REFERENCES users(id),
            user_name TEXT NOT NULL,
            phone TEXT,
            address TEXT,
            lat DOUBLE PRECISION NOT NULL CHECK (lat BETWEEN -90 AND 90),
            lng DOUBLE PRECISION NOT NULL CHECK (lng BETWEEN -180 AND 180),
            status TEXT NOT NULL DEFAULT 'sent' CHECK (status IN (
                'sent','delivered','seen','accepted','cancelled')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_requests_provider_created ON service_requests(provider_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_requests_requester ON service_requests(requester_id);
    `)
	if err != nil {
		log.Printf("failed to create service_requests table: %v", err)
	}
}

// ensureHelpTicketsTable creates the admin support ticket table if missing
func ensureHelpTicketsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS help_tickets (
            id UUID PRIMARY KEY,
            requester_id UUID NULL REFERENCES users(id),
            name TEXT NOT NULL,
            role TEXT,
            problem TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open','answered')),
            answer TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            answered_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_help_tickets_status ON help_tickets(status);
    `)
	if err != nil {
		log.Printf("failed to create help_tickets table: %v", err)
	}
}

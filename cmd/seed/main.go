// seed inserts a few test users into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/talgatov/auth-api/internal/infrastructure/postgres"
	"github.com/talgatov/auth-api/internal/password"
)

const seedPassword = "password"

var users = []struct {
	name  string
	email string
}{
	{"John Doe", "johndoe@example.com"},
	{"Jane Doe", "janedoe@example.com"},
	{"Seed User", "seed@test.local"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	if err := postgres.Migrate(ctx, dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := password.Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var inserted, skipped int
	for _, u := range users {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash, email_verified_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (lower(email)) DO NOTHING
			RETURNING id`,
			u.name, u.email, hash,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			skipped++
			continue
		}
		if err != nil {
			log.Fatalf("insert user %s: %v", u.email, err)
		}
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Users created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Printf("  Password for all seed users: %q\n", seedPassword)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  curl -s -X POST http://localhost:8080/api/login \\")
	fmt.Println("    -H 'Content-Type: application/json' \\")
	fmt.Println("    -d '{\"email\":\"johndoe@example.com\",\"password\":\"password\"}'")
	fmt.Println()
	fmt.Println("  export TOKEN=...   # from the login response data.token")
	fmt.Println("  curl -s http://localhost:8080/api/me -H \"Authorization: Bearer $TOKEN\"")
	fmt.Println("  curl -s -X POST http://localhost:8080/api/logout -H \"Authorization: Bearer $TOKEN\"")
}

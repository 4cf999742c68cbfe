// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the bootstrap admin (admin@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"otp-auth-service/internal/config"
	"otp-auth-service/internal/db"
	userdomain "otp-auth-service/internal/user/domain"
	userrepo "otp-auth-service/internal/user/repository"
)

const (
	adminEmail = "admin@example.com"
	devEmail   = "dev@example.com"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := userrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed: lookup: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", adminEmail)
		return
	}

	now := time.Now().UTC()
	seedUsers := []*userdomain.User{
		{
			ID:        uuid.New().String(),
			Email:     adminEmail,
			Name:      "Bootstrap Admin",
			Role:      userdomain.RoleAdmin,
			Status:    userdomain.UserStatusActive,
			Verified:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New().String(),
			Email:     devEmail,
			Name:      "Dev User",
			Role:      userdomain.RoleUser,
			Status:    userdomain.UserStatusActive,
			Verified:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	for _, u := range seedUsers {
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed: create %s: %v", u.Email, err)
		}
		log.Printf("seed: created %s (%s)", u.Email, u.Role)
	}
}

// Package main implements userctl, an operator tool for provisioning user
// accounts. The API has no self-service signup, so accounts are created out
// of band with this command.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx database/sql driver
	"golang.org/x/crypto/bcrypt"

	"github.com/daytask/daytask-api/internal/config"
	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/platform/logger"
	"github.com/daytask/daytask-api/internal/platform/postgres"
	"github.com/daytask/daytask-api/internal/service/auth"
)

func main() {
	name := flag.String("name", "", "Display name for the new user")
	email := flag.String("email", "", "Email address for the new user")
	password := flag.String("password", "", "Plaintext password for the new user")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		log.Fatal("userctl: -name, -email, and -password are all required")
	}

	if err := createUser(*name, *email, *password); err != nil {
		log.Fatalf("userctl: %v", err)
	}
}

func createUser(name, email, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	hashed, err := auth.HashPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(name, email, hashed)
	if err != nil {
		return fmt.Errorf("invalid user data: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, appLogger)
	if err := userStore.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
	return nil
}

// Command create-admin provisions the out-of-band ADMIN account. Admins are
// never created through the registration flow; run this once against a fresh
// database, then log in through the normal endpoint.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/FabioHAraujo/ag-sistemas/internal/config"
	"github.com/FabioHAraujo/ag-sistemas/internal/database"
	"github.com/FabioHAraujo/ag-sistemas/internal/model"
	"github.com/FabioHAraujo/ag-sistemas/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := envDefault("ADMIN_EMAIL", "admin@networking.com")
	password := envDefault("ADMIN_PASSWORD", "Admin@123")
	name := envDefault("ADMIN_NAME", "Administrator")

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Idempotent: a second run against the same database is a no-op.
	if _, err := users.GetByEmail(ctx, email); err == nil {
		log.Printf("admin already exists: %s", email)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("lookup admin: %v", err)
	}

	id, err := users.Create(ctx, email, password, name, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("admin created: id=%d email=%s role=%s", id, email, model.RoleAdmin)
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

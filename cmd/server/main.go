package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/FabioHAraujo/ag-sistemas/internal/config"
	"github.com/FabioHAraujo/ag-sistemas/internal/database"
	"github.com/FabioHAraujo/ag-sistemas/internal/handler"
	"github.com/FabioHAraujo/ag-sistemas/internal/queue"
	"github.com/FabioHAraujo/ag-sistemas/internal/repository"
	"github.com/FabioHAraujo/ag-sistemas/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables rate limiting
	if rdb == nil {
		log.Println("redis unavailable; rate limiting disabled")
	}
	rlCfg := config.LoadRateLimitConfig()

	apps := repository.NewApplicationRepo(db)
	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)

	appHandler := handler.NewApplicationHandler(cfg, apps)
	authHandler := handler.NewAuthHandler(cfg, users, apps, profiles)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterApplications(e, appHandler, cfg, rlCfg, rdb)
	router.RegisterAuth(e, authHandler, cfg, rlCfg, rdb)

	// Invite notifier: consumes application.approved events and renders the
	// registration-link email. Runs for the lifetime of the process.
	go func() {
		if err := queue.StartInviteConsumer(); err != nil {
			log.Printf("invite consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

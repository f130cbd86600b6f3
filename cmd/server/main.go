package main // Entry point package

import (
	"context" // context bounds startup operations
	"log"     // Logging library
	"time"    // timeouts for startup steps

	"github.com/joho/godotenv"    // loads a local .env file during development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/jsteinbach/mineral-catalog/internal/config"     // Internal config loader
	"github.com/jsteinbach/mineral-catalog/internal/database"   // MySQL pool and schema bootstrap
	"github.com/jsteinbach/mineral-catalog/internal/handler"    // HTTP handlers
	"github.com/jsteinbach/mineral-catalog/internal/queue"      // catalog audit log consumer
	"github.com/jsteinbach/mineral-catalog/internal/repository" // data access layer
	"github.com/jsteinbach/mineral-catalog/internal/router"     // Internal router setup
	"github.com/jsteinbach/mineral-catalog/internal/storage"    // image blob storage
	"github.com/jsteinbach/mineral-catalog/internal/utils"      // password hashing for the seed credential
)

func main() {
	// A missing .env is fine in production where real env vars are set.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("schema migration failed: %v", err)
	}

	images, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("image store init failed: %v", err)
	}

	showcaseRepo := repository.NewShowcaseRepo(db)
	shelfRepo := repository.NewShelfRepo(db)
	mineralRepo := repository.NewMineralRepo(db)
	adminRepo := repository.NewAdminRepo(db)

	// Seed the admin credential on first start.  An existing credential is
	// never overwritten, so rotations survive restarts.
	if cfg.AdminInitialPass != "" {
		hash, err := utils.HashPassword(cfg.AdminInitialPass, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("hashing initial admin password failed: %v", err)
		}
		if err := adminRepo.Seed(ctx, hash); err != nil {
			log.Fatalf("seeding admin credential failed: %v", err)
		}
	}

	rdb := config.NewRedisClient() // nil when redis is unreachable; rate limiting degrades to no-op
	if rdb == nil {
		log.Printf("redis unavailable, login rate limiting disabled")
	}

	// The audit consumer runs for the lifetime of the process and keeps
	// reconnecting on broker failures.
	go func() {
		if err := queue.StartCatalogConsumer(); err != nil {
			log.Printf("catalog consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(showcaseRepo, shelfRepo, mineralRepo, images))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, adminRepo), config.LoadRateLimitConfig(), rdb, cfg.SessionSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(showcaseRepo, shelfRepo, mineralRepo, images), cfg.SessionSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

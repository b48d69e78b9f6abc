package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/salonhub/salon-booking/internal/auth"
	"github.com/salonhub/salon-booking/internal/config"
	"github.com/salonhub/salon-booking/internal/database"
	"github.com/salonhub/salon-booking/internal/handler"
	"github.com/salonhub/salon-booking/internal/middleware"
	"github.com/salonhub/salon-booking/internal/queue"
	"github.com/salonhub/salon-booking/internal/repository"
	"github.com/salonhub/salon-booking/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rbac := repository.NewRBACRepo(db)
	salons := repository.NewSalonRepo(db)

	// The role/permission catalog is data, not schema; install it on every
	// start so fresh databases work without a separate seeding step.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := rbac.SeedCatalog(seedCtx); err != nil {
		cancel()
		log.Fatalf("seed role catalog: %v", err)
	}
	cancel()

	sessions := auth.NewService(users, tokens, auth.Options{
		JWTSecret:          cfg.JWTSecret,
		AccessTTLMin:       cfg.AccessTTLMin,
		RefreshTTLDays:     cfg.RefreshTTLDays,
		BcryptCost:         cfg.BcryptCost,
		MaxSessionsPerUser: cfg.MaxSessionsPerUser,
	})
	resolver := auth.NewResolver(users, rbac)

	authHandler := handler.NewAuthHandler(sessions)
	salonHandler := handler.NewSalonHandler(salons, rbac, resolver)

	// Rate limiter degrades to a no-op when Redis is unavailable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; credential rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Audit consumer runs for the lifetime of the process and reconnects
	// on broker failures.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	// Retention sweep: expired refresh tokens are useless for auth (they
	// are rejected and revoked on presentation) so old rows can go.
	go func() {
		interval := time.Duration(cfg.SweepIntervalMin) * time.Minute
		for {
			time.Sleep(interval)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			cutoff := time.Now().UTC().Add(-time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour)
			if n, err := tokens.DeleteExpiredBefore(ctx, cutoff); err != nil {
				log.Printf("token sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("token sweep removed %d expired rows", n)
			}
			cancel()
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, limiter)
	router.RegisterSalons(e, salonHandler, resolver, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/adboard/adboard/internal/config"
	"github.com/adboard/adboard/internal/database"
	"github.com/adboard/adboard/internal/handler"
	"github.com/adboard/adboard/internal/queue"
	"github.com/adboard/adboard/internal/repository"
	"github.com/adboard/adboard/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the cache and rate limiter are no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	adsRepo := repository.NewAdRepo(db)
	reviewsRepo := repository.NewReviewRepo(db)

	auth := handler.NewAuthHandler(cfg, users)
	ads := handler.NewAdHandler(adsRepo)
	reviews := handler.NewReviewHandler(reviewsRepo, adsRepo)

	// Reset mails are sent from a background consumer so SMTP latency and
	// broker hiccups never block request handling.
	go func() {
		if err := queue.StartResetMailConsumer(cfg.MailFrom); err != nil {
			log.Printf("reset mail consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, cfg, rdb, auth, ads, reviews)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

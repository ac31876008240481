// Command createsuperuser seeds the bootstrap admin account.  It exists so
// a fresh deployment has a staff user before anyone can register through
// the API.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/adboard/adboard/internal/config"
	"github.com/adboard/adboard/internal/database"
	"github.com/adboard/adboard/internal/model"
	"github.com/adboard/adboard/internal/repository"
	"github.com/adboard/adboard/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	hash, err := utils.HashPassword("1q2w3e", cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	u := &model.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repository.NewUserRepo(db).Create(ctx, u); err != nil {
		log.Fatalf("create superuser: %v", err)
	}
	log.Printf("superuser created: id=%d email=%s", u.ID, u.Email)
}

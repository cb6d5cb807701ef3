package main

import (
	"context"
	"time"

	"github.com/odontosys/clinic-api/internal/config"
	mongorepo "github.com/odontosys/clinic-api/internal/repository/mongo"
	roleService "github.com/odontosys/clinic-api/internal/service/role"
	"github.com/odontosys/clinic-api/pkg/logger"
)

// Provisions indexes and the role catalog without starting the API server.
// Safe to run repeatedly; seeding skips a non-empty catalog.
func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := mongorepo.NewDB(cfg.Mongo, nil)
	if err != nil {
		log.Fatal(err, "failed to connect to document store")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(ctx); err != nil {
			log.Error(err, "failed to disconnect from document store")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal(err, "failed to ensure indexes")
	}
	log.Info("indexes ensured")

	roleRepo := mongorepo.NewRoleRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	if err := roleService.NewService(roleRepo, userRepo).Seed(ctx); err != nil {
		log.Fatal(err, "failed to seed role catalog")
	}
	log.Info("role catalog seeded")
}

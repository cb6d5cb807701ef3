package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/odontosys/clinic-api/internal/config"
	appointmentHandler "github.com/odontosys/clinic-api/internal/handler/appointment"
	historyHandler "github.com/odontosys/clinic-api/internal/handler/history"
	laborderHandler "github.com/odontosys/clinic-api/internal/handler/laborder"
	patientHandler "github.com/odontosys/clinic-api/internal/handler/patient"
	proctypeHandler "github.com/odontosys/clinic-api/internal/handler/proctype"
	roleHandler "github.com/odontosys/clinic-api/internal/handler/role"
	userHandler "github.com/odontosys/clinic-api/internal/handler/user"
	mongorepo "github.com/odontosys/clinic-api/internal/repository/mongo"
	"github.com/odontosys/clinic-api/internal/router"
	appointmentService "github.com/odontosys/clinic-api/internal/service/appointment"
	historyService "github.com/odontosys/clinic-api/internal/service/history"
	laborderService "github.com/odontosys/clinic-api/internal/service/laborder"
	patientService "github.com/odontosys/clinic-api/internal/service/patient"
	proctypeService "github.com/odontosys/clinic-api/internal/service/proctype"
	roleService "github.com/odontosys/clinic-api/internal/service/role"
	userService "github.com/odontosys/clinic-api/internal/service/user"
	"github.com/odontosys/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	m := metrics.New("clinic_api")

	db, err := mongorepo.NewDB(cfg.Mongo, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to document store")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from document store")
		}
	}()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mongorepo.EnsureIndexes(startupCtx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// Repositories
	roleRepo := mongorepo.NewRoleRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	patientRepo := mongorepo.NewPatientRepository(db)
	appointmentRepo := mongorepo.NewAppointmentRepository(db)
	historyRepo := mongorepo.NewClinicalHistoryRepository(db)
	proctypeRepo := mongorepo.NewProcedureTypeRepository(db)
	laborderRepo := mongorepo.NewLabOrderRepository(db)

	// Services
	roleSvc := roleService.NewService(roleRepo, userRepo)
	userSvc := userService.NewService(userRepo, roleSvc)
	patientSvc := patientService.NewService(patientRepo, appointmentRepo, historyRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo)
	historySvc := historyService.NewService(historyRepo, patientRepo)
	proctypeSvc := proctypeService.NewService(proctypeRepo, appointmentRepo)
	laborderSvc := laborderService.NewService(laborderRepo, appointmentRepo)

	if err := roleSvc.Seed(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed role catalog")
	}

	r := router.NewRouter(cfg, m,
		roleHandler.NewHandler(roleSvc),
		userHandler.NewHandler(userSvc),
		patientHandler.NewHandler(patientSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		historyHandler.NewHandler(historySvc),
		proctypeHandler.NewHandler(proctypeSvc),
		laborderHandler.NewHandler(laborderSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

package main

import (
	"fmt"
	"os"

	"github.com/roadsafe/billing-service/internal/auth"
	"github.com/roadsafe/billing-service/internal/config"
	"github.com/roadsafe/billing-service/internal/db"
	"github.com/roadsafe/billing-service/internal/excel"
	httphandler "github.com/roadsafe/billing-service/internal/http"
	"github.com/roadsafe/billing-service/internal/http/middleware"
	"github.com/roadsafe/billing-service/internal/logger"
	"github.com/roadsafe/billing-service/internal/model"
	"github.com/roadsafe/billing-service/internal/pdf"
	"github.com/roadsafe/billing-service/internal/repository"
	"github.com/roadsafe/billing-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	jobRepo := repository.NewJobRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	stores := httphandler.Stores{
		Clients:  repository.NewStore[model.Client](database),
		Workers:  repository.NewStore[model.Worker](database),
		Vehicles: repository.NewStore[model.Vehicle](database),
		Carts:    repository.NewStore[model.Cart](database),
	}

	jobService := service.NewJobService(jobRepo, stores.Clients, excel.NewGenerator())
	invoiceService := service.NewInvoiceService(jobRepo, invoiceRepo, stores.Clients, pdf.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(jobService, invoiceService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, stores, authMiddleware, cfg.Environment, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

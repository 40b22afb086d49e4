package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/codyseavey/pokewealth/backend/internal/api"
	"github.com/codyseavey/pokewealth/backend/internal/config"
	"github.com/codyseavey/pokewealth/backend/internal/database"
	"github.com/codyseavey/pokewealth/backend/internal/services"
)

func main() {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	geminiService := services.NewGeminiService(cfg)
	priceTracker := services.NewPriceTrackerService(cfg)
	if priceTracker.IsConfigured() {
		log.Infof("Price tracker: enabled (daily limit %d)", cfg.PricingDailyLimit)
	} else {
		log.Warn("Price tracker: no API key configured, prices will fall back to AI estimates")
	}

	reconciler := services.NewPriceReconciler(geminiService, priceTracker)
	ledger := services.NewPriceHistoryLedger(db)
	cardService := services.NewCardService(db, ledger)
	portfolioService := services.NewPortfolioService(db, ledger)

	router := api.SetupRouter(cfg, reconciler, cardService, ledger, portfolioService)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

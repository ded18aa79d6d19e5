package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basira/backend/internal/config"
	"basira/backend/internal/db"
	"basira/backend/internal/handler"
	"basira/backend/internal/repository"
	"basira/backend/internal/service"
	"basira/backend/internal/service/stripe"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Database
	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("Connected to database")

	if err := db.ApplyMigrations(ctx, dbPool, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// 3. Setup Logic
	ledgerRepo := repository.NewLedgerRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	paymentRepo := repository.NewPaymentRepository(dbPool)

	gateway := stripe.NewClient(stripe.Config{
		APIURL:    cfg.Stripe.APIURL,
		SecretKey: cfg.Stripe.SecretKey,
	})

	ledgerService := service.NewLedgerService(ledgerRepo, cfg.DefaultBalance)
	cartService := service.NewCartService(cartRepo, ledgerRepo, cfg.DefaultBalance)
	paymentService := service.NewPaymentService(paymentRepo, ledgerRepo, gateway, cfg.Stripe.AllowedStatuses)

	h := handler.NewHandler(
		handler.NewShoppingHandler(cartService, ledgerService),
		handler.NewBankHandler(ledgerService),
		handler.NewPaymentHandler(paymentService),
	)

	// 4. Setup Server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: h,
	}

	// 5. Run Server with Graceful Shutdown
	go func() {
		fmt.Printf("Starting server on port %s\n", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("Shutting down server...")

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	fmt.Println("Server exiting")
}

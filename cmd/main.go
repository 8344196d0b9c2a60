package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/juleeperween/charity-backend/internal/config"
	"github.com/juleeperween/charity-backend/internal/db"
	"github.com/juleeperween/charity-backend/internal/handlers"
	"github.com/juleeperween/charity-backend/internal/logging"
	"github.com/juleeperween/charity-backend/internal/qr"
	"github.com/juleeperween/charity-backend/internal/receipt"
	"github.com/juleeperween/charity-backend/internal/repository"
	"github.com/juleeperween/charity-backend/internal/services"
)

func main() {
	// a missing .env is fine in deployed environments
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn("error disconnecting from MongoDB", "error", err)
		}
	}()
	logger.Info("connected to MongoDB")

	repo := repository.NewMongoRepository(client.Database(cfg.MongoDatabase))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to create indexes", "error", err)
	}

	receipts := receipt.NewRenderer(receipt.DefaultOrganization(), cfg.ReceiptDir)
	stripeClient := services.NewStripeClient(cfg.StripeSecretKey, logger)
	donationService := services.NewDonationService(
		repo, qr.NewPNGEncoder(), receipts, stripeClient, logger, cfg.UPIID, cfg.Profile,
	)
	donationHandler := handlers.NewDonationHandler(donationService, logger)

	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/donations", donationHandler.CreateDonation).Methods("POST")
	api.HandleFunc("/donations", donationHandler.GetDonations).Methods("GET")
	api.HandleFunc("/donations/{donorID}", donationHandler.GetDonationByDonorID).Methods("GET")
	api.HandleFunc("/donation/{donationId}", donationHandler.GetDonationByID).Methods("GET")
	api.HandleFunc("/donation", donationHandler.GetDonationDetails).Methods("GET")
	api.HandleFunc("/update-status/{donationId}", donationHandler.UpdateStatus).Methods("PUT")
	api.HandleFunc("/update-donation/{donationId}", donationHandler.UpdateDonation).Methods("PUT")
	api.HandleFunc("/delete-donation/{donationId}", donationHandler.DeleteDonation).Methods("DELETE")
	api.HandleFunc("/download-invoice/{donationId}", donationHandler.DownloadInvoice).Methods("POST")
	api.HandleFunc("/payment-success", donationHandler.PaymentSuccess).Methods("GET")

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "port", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/loanpay/emi-service/internal/config"
	"github.com/loanpay/emi-service/internal/handler"
	"github.com/loanpay/emi-service/internal/integrations/cbr"
	"github.com/loanpay/emi-service/internal/middleware"
	"github.com/loanpay/emi-service/internal/reminder"
	"github.com/loanpay/emi-service/internal/repository"
	"github.com/loanpay/emi-service/internal/service"
	"github.com/loanpay/emi-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)

	// Mail is optional; without SMTP_HOST receipts and reminders are off.
	var notifier service.Notifier
	var reminders *cron.Cron
	if cfg.SMTPHost != "" {
		sender := email.NewSender(cfg, logger)
		notifier = sender

		reminders = cron.New()
		job := reminder.NewJob(repo, sender, logger)
		if _, err := reminders.AddJob(cfg.ReminderSchedule, job); err != nil {
			logger.Fatalf("Failed to schedule EMI reminders: %v", err)
		}
		reminders.Start()
		defer reminders.Stop()
	}

	svc := service.NewService(repo, notifier, logger)
	h := handler.NewHandler(svc)
	rates := cbr.NewClient(cfg, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	h.Register(r)
	// Central bank benchmark rate
	r.HandleFunc("/rates/key", func(w http.ResponseWriter, r *http.Request) {
		rate, err := rates.GetKeyRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get key rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"key_rate": rate})
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}

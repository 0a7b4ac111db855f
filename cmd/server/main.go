// Package main - Entry point for the partner operations server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"partnerops/api"
	"partnerops/clients/affiliate"
	"partnerops/clients/mailer"
	"partnerops/clients/subs"
	"partnerops/internal/config"
	"partnerops/internal/logging"
	"partnerops/store"
)

const version = "1.0.0"

const defaultMailFrom = "Partner Team <partners@example.com>"

func main() {
	cfgPath := flag.String("config", "", "Path to config file (JSON)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	// .env is optional; deployments set real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	opts := api.Options{Currency: cfg.Pricing.Currency}

	if cfg.Database.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := store.Connect(ctx, cfg.Database.URL)
		cancel()
		if err != nil {
			logging.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()
		opts.Repo = store.NewPostgresRepository(pool)
		logging.Info("back-office store connected")
	} else {
		logging.Info("no database configured, admin surface disabled")
	}

	if cfg.Affiliate.BaseURL != "" {
		opts.Affiliate = affiliate.NewClient(cfg.Affiliate.BaseURL, cfg.Affiliate.APIKey)
	}
	if cfg.Subscriptions.BaseURL != "" {
		opts.Subs = subs.NewClient(cfg.Subscriptions.BaseURL, cfg.Subscriptions.APIKey)
	}
	if cfg.Mail.BaseURL != "" {
		opts.Mail = mailer.NewClient(cfg.Mail.BaseURL, cfg.Mail.APIKey, defaultMailFrom)
	}

	server := api.NewServerWith(version, opts)

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	logging.Info("starting partner operations server",
		zap.String("version", version),
		zap.String("addr", listenAddr))
	if err := server.ListenAndServe(listenAddr); err != nil {
		logging.Fatal("server exited", zap.Error(err))
	}
}

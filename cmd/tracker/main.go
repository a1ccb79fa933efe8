// Command tracker runs the affiliate campaign tracker server.
//
// Configuration comes from TRACKER_* environment variables; a .env file in
// the working directory is loaded first if present.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	tracker "github.com/Pixadrop-LTD/AffiliateTracker-sub001"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init":
			if err := runInit(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Printf("tracker %s\n", version)
			return
		case "help", "-h", "--help":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; deployments usually set the environment directly.
	_ = godotenv.Load()

	var cfg tracker.Config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	app, err := tracker.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Echo.Shutdown(ctx); err != nil {
			app.Echo.Logger.Errorf("shutdown: %v", err)
		}
	}()

	return app.Start()
}

const envExample = `# AffiliateTracker configuration. Copy to .env and fill in the secrets.

# Branding
TRACKER_SITE_NAME=AffiliateTracker
TRACKER_SITE_URL=https://tracker.example.com
TRACKER_SITE_DESCRIPTION=

# Server
TRACKER_ADDR=:3000
TRACKER_DB_PATH=data/tracker.db
TRACKER_TRACK_DB_PATH=data/track.db

# Secrets (required)
TRACKER_ADMIN_PASSWORD=
TRACKER_SESSION_SECRET=

# Optional JSON reporting API; leave empty to disable.
TRACKER_API_SECRET=

# Set true when serving over HTTPS.
TRACKER_COOKIE_SECURE=false

# Tuning
TRACKER_CACHE_TTL=5m
TRACKER_METRICS_ENABLED=true
TRACKER_TIMEZONE=UTC
TRACKER_CLEANUP_SCHEDULE=0 4 * * *
`

func runInit() error {
	if _, err := os.Stat(".env.example"); err == nil {
		return fmt.Errorf(".env.example already exists")
	}
	if err := os.WriteFile(".env.example", []byte(envExample), 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote .env.example. Copy it to .env and set the secrets.")
	return nil
}

func printUsage() {
	fmt.Println(`tracker - self-hosted affiliate campaign tracking

Usage:
  tracker [command]

Running with no command starts the server.

Commands:
  init          Write a .env.example with every configuration knob
  version       Print the tracker version
  help          Show this help message`)
}

// Worker periodically sweeps expired and verified OTP challenges from the
// database. Issuance also sweeps opportunistically; this keeps the table
// bounded when no codes are being issued.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"otp-auth-service/internal/config"
	"otp-auth-service/internal/db"
	otprepo "otp-auth-service/internal/otp/repository"
)

func main() {
	interval := flag.Duration("interval", 5*time.Minute, "Time between sweeps")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("worker: DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	challenges := otprepo.NewPostgresRepository(conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: sweeping stale challenges every %s", *interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		sweepCtx, sweepCancel := context.WithTimeout(ctx, 30*time.Second)
		removed, err := challenges.DeleteStale(sweepCtx, time.Now().UTC())
		sweepCancel()
		if err != nil {
			log.Printf("worker: sweep failed: %v", err)
		} else if removed > 0 {
			log.Printf("worker: removed %d stale challenges", removed)
		}

		select {
		case <-ctx.Done():
			log.Println("worker: stopped")
			return
		case <-ticker.C:
		}
	}
}

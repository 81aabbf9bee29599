package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"everkeep/memorial-service/internal/conf"
	"everkeep/memorial-service/internal/constants"

	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	bc, err := conf.Load(flagconf)
	if err != nil {
		panic(err)
	}
	if err := bc.Validate(); err != nil {
		panic(err)
	}

	app, cleanup, err := wireApp(bc)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	staleDays := bc.App.StalePendingDays
	if staleDays < 1 {
		staleDays = constants.DefaultStalePendingDays
	}

	cronScheduler := cron.New(cron.WithSeconds())

	// 1. Abandoned checkout sweep - every day at 03:00
	_, err = cronScheduler.AddFunc("0 0 3 * * *", func() {
		log.Println("[CRON] Starting stale pending order sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, ids, err := app.Webhook.SweepStalePending(ctx, staleDays)
		if err != nil {
			log.Printf("[CRON] Error sweeping stale pending orders: %v", err)
		} else {
			log.Printf("[CRON] Marked %d stale pending orders failed: %v", count, ids)
			log.Println("[CRON] Finished stale pending order sweep")
		}
	})
	if err != nil {
		log.Printf("Failed to add stale order sweep job: %v", err)
	}

	// 2. Pending guestbook reminder - every day at 09:00
	_, err = cronScheduler.AddFunc("0 0 9 * * *", func() {
		log.Println("[CRON] Starting pending guestbook reminder...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		counts, err := app.Guestbook.PendingModerationCounts(ctx)
		if err != nil {
			log.Printf("[CRON] Error collecting pending guestbook counts: %v", err)
			return
		}

		log.Printf("[CRON] Found %d memorials with pending guestbook entries", len(counts))
		for _, c := range counts {
			// TODO: send the owner a moderation reminder email
			log.Printf("[CRON] Reminder: memorial %s (owner %s) has %d pending entries",
				c.MemorialID, c.OwnerID, c.Count)
		}
		log.Println("[CRON] Finished pending guestbook reminder")
	})
	if err != nil {
		log.Printf("Failed to add guestbook reminder job: %v", err)
	}

	cronScheduler.Start()
	log.Println("========================================")
	log.Println("Cron jobs started successfully")
	log.Println("Scheduled jobs:")
	log.Println("  - Stale order sweep:    Every day at 03:00")
	log.Println("  - Guestbook reminder:   Every day at 09:00")
	log.Println("========================================")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Cron jobs forced to stop after timeout")
	}
}

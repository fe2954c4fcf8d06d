package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/dwiputra/lending-engine/internal/config"
	"github.com/dwiputra/lending-engine/internal/repository"
	"github.com/dwiputra/lending-engine/pkg/utils"
)

func main() {
	log.Println("Starting lending scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		remindDueEMIs(loanRepo)
	})
	if err != nil {
		log.Fatalf("Error scheduling EMI reminder job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

// remindDueEMIs logs the current EMI due for every active loan. Delivery to
// borrowers is out of scope; downstream notification systems tail these logs.
func remindDueEMIs(loanRepo repository.LoanRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	loans, err := loanRepo.ListActive(ctx)
	if err != nil {
		log.Printf("EMI reminder job failed: %v", err)
		return
	}

	log.Printf("EMI reminder run: %d active loans", len(loans))
	for _, loan := range loans {
		log.Printf("reminder: loan %s (customer %s) monthly EMI %s due",
			loan.LoanID, loan.CustomerID, utils.Round2(loan.MonthlyEMI))
	}
}

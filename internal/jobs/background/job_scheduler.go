package background

import (
	"context"
	"log"
	"time"

	"rentdesk/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// Runs at 02:00 on the first of each month. Generation is idempotent, so a
// rescheduled or repeated run is harmless.
const monthlyRentCron = "0 2 1 * *"

// JobScheduler manages background jobs.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	ledgerService services.LedgerService
}

// NewJobScheduler creates a scheduler with the monthly rent generation job
// registered.
func NewJobScheduler(ledgerService services.LedgerService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		ledgerService: ledgerService,
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(monthlyRentCron, false),
		gocron.NewTask(js.generateMonthlyRent),
		gocron.WithName("monthly-rent-generation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return js, nil
}

// Start starts the job scheduler.
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler.
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) generateMonthlyRent() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	period := services.CurrentPeriod(time.Now())
	created, err := js.ledgerService.GenerateMonthly(ctx, period, nil)
	if err != nil {
		log.Printf("monthly rent generation failed for %d-%02d: %v", period.Year, period.Month, err)
		return
	}
	log.Printf("monthly rent generation for %d-%02d created %d records", period.Year, period.Month, created)
}

package background

import (
	"context"
	"log"
	"sync"
	"time"

	"mindhaven/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	expirer   *jobs.SubscriptionExpirer
	jobJobs   map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(expirer *jobs.SubscriptionExpirer) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		expirer:   expirer,
		jobJobs:   make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	// Lapsed subscription sweep - every hour
	expiryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.expirer.ExpireLapsed, context.Background()),
		gocron.WithName("subscription-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create subscription expiry job: %v", err)
	} else {
		js.jobJobs["subscription-expiry"] = expiryJob
	}

	// Streak achievement refresh - daily at 02:30 UTC
	streakJob, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(2, 30, 0))),
		gocron.NewTask(js.expirer.RefreshStreakAwards, context.Background()),
		gocron.WithName("streak-achievement-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create streak refresh job: %v", err)
	} else {
		js.jobJobs["streak-refresh"] = streakJob
	}
}

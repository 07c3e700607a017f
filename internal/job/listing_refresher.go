package job

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

type ListingRefresher interface {
	RefreshListing(ctx context.Context) error
}

// ListingJob refreshes the cached market listing on a cron schedule.
type ListingJob struct {
	tracer   trace.Tracer
	service  ListingRefresher
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

func NewListingJob(tracer trace.Tracer, service ListingRefresher, schedule string) *ListingJob {
	return &ListingJob{
		tracer:   tracer,
		service:  service,
		schedule: schedule,
		timeout:  30 * time.Second,
		cron:     cron.New(),
	}
}

// Start registers the job, runs it once, and blocks until ctx is cancelled.
func (j *ListingJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(ctx) }); err != nil {
		return fmt.Errorf("register listing refresh %q: %w", j.schedule, err)
	}

	log.Printf("Listing refresher starting (%s)", j.schedule)
	j.run(ctx)
	j.cron.Start()

	<-ctx.Done()
	stopped := j.cron.Stop()
	<-stopped.Done()
	log.Println("Listing refresher stopped")
	return nil
}

func (j *ListingJob) run(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, j.timeout)
	defer cancel()

	ctx, span := j.tracer.Start(ctx, "job.refresh-listing")
	defer span.End()

	if err := j.service.RefreshListing(ctx); err != nil {
		log.Printf("listing refresh error: %v", err)
	}
}

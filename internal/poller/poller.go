// Package poller schedules the periodic digest refresh. The caller owns
// the loop: construct, Start with a job, Stop on shutdown.
package poller

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

type Poller struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
}

// New builds a poller that fires every interval. Singleton mode keeps a
// slow refresh from overlapping the next tick.
func New(interval time.Duration) *Poller {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	return &Poller{
		scheduler: scheduler,
		interval:  interval,
	}
}

// Start registers the job and launches the scheduler in the background.
func (p *Poller) Start(job func()) error {
	if _, err := p.scheduler.Every(p.interval).Do(job); err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}
	p.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (p *Poller) Stop() {
	p.scheduler.Stop()
}

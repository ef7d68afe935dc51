package querycache

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Janitor periodically sweeps expired entries out of a Cache.
type Janitor struct {
	scheduler *gocron.Scheduler
	cache     *Cache
	log       *slog.Logger
}

// NewJanitor prepares a janitor; call Start to begin sweeping.
func NewJanitor(c *Cache, log *slog.Logger) *Janitor {
	if log == nil {
		log = slog.Default()
	}
	return &Janitor{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     c,
		log:       log,
	}
}

// Start sweeps every interval (a minute if interval is not positive).
func (j *Janitor) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	_, err := j.scheduler.Every(interval).Do(j.sweep)
	if err != nil {
		return err
	}
	j.scheduler.StartAsync()
	return nil
}

func (j *Janitor) sweep() {
	if n := j.cache.Sweep(); n > 0 {
		j.log.Debug("query cache swept", "removed", n, "remaining", j.cache.Len())
	}
}

// Stop halts future sweeps.
func (j *Janitor) Stop() {
	j.scheduler.Stop()
}

package job

import (
	"fmt"

	"evinburada/internal/logger"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSpec runs the session sweeper every five minutes.
const DefaultSweepSpec = "@every 5m"

// Evictor drops expired sessions and reports how many were removed.
type Evictor interface {
	EvictExpired() int
}

// StartSessionSweeper schedules periodic eviction of expired in-memory
// sessions. The caller stops the returned scheduler on shutdown.
func StartSessionSweeper(store Evictor, schedule string, log logger.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		sweep(store, log)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	log.Info("session sweeper started", map[string]interface{}{"schedule": schedule})
	return c, nil
}

func sweep(store Evictor, log logger.Logger) int {
	removed := store.EvictExpired()
	if removed > 0 {
		log.Info("expired sessions evicted", map[string]interface{}{"removed": removed})
	}
	return removed
}

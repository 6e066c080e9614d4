package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatsProvider exposes the most recent host sample.
type StatsProvider interface {
	Latest() (models.HostStats, bool)
}

// StatUpdater is responsible for periodically sampling host stats.
type StatUpdater struct {
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool

	mu     sync.RWMutex
	latest models.HostStats
	ok     bool
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(interval time.Duration) *StatUpdater {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatUpdater{
		interval: interval,
		done:     make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Dur("interval", su.interval).Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(su.interval)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.sample()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.sample()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// Latest returns the last successful sample.
func (su *StatUpdater) Latest() (models.HostStats, bool) {
	su.mu.RLock()
	defer su.mu.RUnlock()
	return su.latest, su.ok
}

func (su *StatUpdater) sample() {
	ctx, cancel := context.WithTimeout(context.Background(), su.interval)
	defer cancel()

	stats := models.HostStats{SampledAt: time.Now().UTC()}

	// Non-blocking: compares against the previous call.
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not read CPU usage")
		return
	}
	if len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not read memory usage")
		return
	}
	stats.MemoryPercent = vm.UsedPercent

	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not read uptime")
	}
	stats.UptimeSeconds = uptime

	su.mu.Lock()
	su.latest = stats
	su.ok = true
	su.mu.Unlock()
}

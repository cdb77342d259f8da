package monitoring

import (
	"fmt"
	"time"

	"github.com/aboutme-website/aboutme-be/internal/services"
	"github.com/aboutme-website/aboutme-be/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	diskCheckInterval = 60 * time.Second
	diskAlertPercent  = 90.0
	diskAlertCooldown = time.Hour
)

// DiskUpdater periodically samples disk usage of the public root and raises
// an alert event when the volume holding the published sites runs low.
type DiskUpdater struct {
	publicRoot string
	eventSvc   services.EventServiceProvider
	hub        *websocket.Hub
	ticker     *time.Ticker
	done       chan bool
	lastAlert  time.Time
}

// NewDiskUpdater creates a new DiskUpdater.
func NewDiskUpdater(publicRoot string, eventSvc services.EventServiceProvider, hub *websocket.Hub) *DiskUpdater {
	return &DiskUpdater{
		publicRoot: publicRoot,
		eventSvc:   eventSvc,
		hub:        hub,
		done:       make(chan bool),
	}
}

// Run starts the periodic updates.
func (du *DiskUpdater) Run() {
	log.Info().Msg("Starting background disk usage updater...")
	du.ticker = time.NewTicker(diskCheckInterval)
	defer du.ticker.Stop()

	// Run once immediately on start
	du.check()

	for {
		select {
		case <-du.done:
			log.Info().Msg("Stopping background disk usage updater.")
			return
		case <-du.ticker.C:
			du.check()
		}
	}
}

// Stop halts the periodic updates.
func (du *DiskUpdater) Stop() {
	du.done <- true
}

func (du *DiskUpdater) check() {
	usage, err := disk.Usage(du.publicRoot)
	if err != nil {
		log.Warn().Err(err).Str("path", du.publicRoot).Msg("Failed to read disk usage for public root")
		return
	}

	log.Debug().Float64("used_percent", usage.UsedPercent).Str("path", du.publicRoot).Msg("Public root disk usage")

	if usage.UsedPercent < diskAlertPercent {
		return
	}
	if time.Since(du.lastAlert) < diskAlertCooldown {
		return
	}
	du.lastAlert = time.Now()

	message := fmt.Sprintf("public root volume is %.1f%% full", usage.UsedPercent)
	log.Warn().Str("path", du.publicRoot).Msg(message)

	if du.eventSvc != nil {
		if err := du.eventSvc.CreateEvent("system.alert.disk", "warn", message, nil); err != nil {
			log.Warn().Err(err).Msg("Failed to record disk alert event")
		}
	}
	if du.hub != nil {
		du.hub.Broadcast <- websocket.NewBuildStatusMessage("", "system.alert.disk", message)
	}
}

package monitoring

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// maxWorkspaceAge is how long a scratch workspace may sit untouched before
// the janitor removes it. Workspaces are recreated from scratch on the next
// pipeline run, so deleting them only costs a template copy.
const maxWorkspaceAge = 24 * time.Hour

// Janitor periodically removes stale scratch workspaces left behind by
// finished or aborted pipeline runs.
type Janitor struct {
	scratchRoot string
	schedule    cron.Schedule
	ticker      *time.Ticker
	done        chan bool
	nextRun     time.Time
}

// NewJanitor creates a new Janitor. cronExpr is a standard 5-field cron
// expression.
func NewJanitor(scratchRoot, cronExpr string) (*Janitor, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Janitor{
		scratchRoot: scratchRoot,
		schedule:    schedule,
		done:        make(chan bool),
		nextRun:     schedule.Next(time.Now()),
	}, nil
}

// Run starts the janitor's ticking loop.
func (j *Janitor) Run() {
	log.Info().Str("scratch_root", j.scratchRoot).Time("next_run", j.nextRun).Msg("Starting workspace janitor...")
	j.ticker = time.NewTicker(1 * time.Minute)
	defer j.ticker.Stop()

	for {
		select {
		case <-j.done:
			log.Info().Msg("Stopping workspace janitor.")
			return
		case <-j.ticker.C:
			now := time.Now()
			if now.After(j.nextRun) {
				j.sweep(now)
				j.nextRun = j.schedule.Next(now)
			}
		}
	}
}

// Stop halts the janitor.
func (j *Janitor) Stop() {
	j.done <- true
}

// sweep removes source and build workspaces that have not been touched within
// maxWorkspaceAge.
func (j *Janitor) sweep(now time.Time) {
	entries, err := os.ReadDir(j.scratchRoot)
	if err != nil {
		log.Error().Err(err).Str("scratch_root", j.scratchRoot).Msg("Janitor: failed to read scratch root")
		return
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, "-source") && !strings.HasSuffix(name, "-build") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxWorkspaceAge {
			continue
		}
		path := filepath.Join(j.scratchRoot, name)
		if err := os.RemoveAll(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Janitor: failed to remove stale workspace")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Janitor: removed stale scratch workspaces")
	}
}

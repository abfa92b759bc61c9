package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Persistence writes World snapshots to a JSON file, coalescing bursts of
// non-critical saves behind a debounce interval (§4.B). Immediate saves
// bypass the debounce for shutdown and admin-triggered persistence.
//
// The write itself is atomic: encode to a temp file in the same directory,
// then rename over the target, so a crash mid-write never corrupts the last
// good snapshot (grounded on the teacher's builder-area save path).
type Persistence struct {
	path             string
	log              *slog.Logger
	migs             *migrationRegistry
	debounceInterval time.Duration
	saveCounter      metric.Int64Counter

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	world   *World
	stats   Stats
}

// Stats is a snapshot of save activity since the Persistence was created.
// Debounced counts immediate-bypassed flushes (debounceInterval <= 0) the
// same as timer-fired ones, since both originate from SaveDebounced's call
// path; Immediate counts only SaveNow.
type Stats struct {
	Immediate int64
	Debounced int64
	Errors    int64
}

// NewPersistence constructs a façade writing to path, debouncing saves by
// interval (0 disables debouncing entirely).
func NewPersistence(path string, interval time.Duration, log *slog.Logger) *Persistence {
	if log == nil {
		log = slog.Default()
	}
	counter, err := otel.Meter("tinymud/persistence").Int64Counter(
		"world_saves_total",
		metric.WithDescription("world snapshot saves, by outcome and debounce class"),
	)
	if err != nil {
		counter = noopInt64Counter()
	}
	return &Persistence{
		path:             path,
		log:              log,
		migs:             newMigrationRegistry(),
		debounceInterval: interval,
		saveCounter:      counter,
	}
}

func noopInt64Counter() metric.Int64Counter {
	c, _ := noop.NewMeterProvider().Meter("noop").Int64Counter("noop")
	return c
}

// Stats returns a snapshot of the save counters accumulated so far.
func (p *Persistence) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// SaveDebounced schedules a save of world to run after the debounce
// interval, coalescing repeated calls into a single write (§4.B). Safe to
// call from any goroutine; errors from the eventual write are logged, not
// returned, so callers on the hot path are never blocked on disk I/O.
func (p *Persistence) SaveDebounced(world *World) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.world = world
	if p.debounceInterval <= 0 {
		p.flushLocked()
		return
	}
	if p.timer != nil {
		p.pending = true
		return
	}
	p.pending = true
	p.timer = time.AfterFunc(p.debounceInterval, p.fire)
}

func (p *Persistence) fire() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer = nil
	if !p.pending {
		return
	}
	p.flushLocked()
}

func (p *Persistence) flushLocked() {
	p.pending = false
	world := p.world
	if world == nil {
		return
	}
	p.stats.Debounced++
	if err := writeWorldFile(p.path, world); err != nil {
		p.stats.Errors++
		p.saveCounter.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("class", "debounced"), attribute.Bool("error", true),
		))
		p.log.Error("world save failed", "path", p.path, "error", err,
			"save_stats_immediate", p.stats.Immediate, "save_stats_debounced", p.stats.Debounced, "save_stats_errors", p.stats.Errors)
		return
	}
	p.saveCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("class", "debounced"), attribute.Bool("error", false),
	))
	p.log.Debug("world saved", "path", p.path, "version", world.WorldVersion,
		"save_stats_immediate", p.stats.Immediate, "save_stats_debounced", p.stats.Debounced, "save_stats_errors", p.stats.Errors)
}

// SaveNow writes world immediately, bypassing the debounce. Used at shutdown
// and after admin commands the operator expects to durably land at once.
func (p *Persistence) SaveNow(world *World) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.pending = false
	p.world = world
	p.stats.Immediate++
	if err := writeWorldFile(p.path, world); err != nil {
		p.stats.Errors++
		p.saveCounter.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("class", "immediate"), attribute.Bool("error", true),
		))
		p.log.Error("world save failed", "path", p.path, "error", err,
			"save_stats_immediate", p.stats.Immediate, "save_stats_debounced", p.stats.Debounced, "save_stats_errors", p.stats.Errors)
		return wrapKindError(KindPersistence, "save world", err)
	}
	p.saveCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("class", "immediate"), attribute.Bool("error", false),
	))
	p.log.Debug("world saved", "path", p.path, "version", world.WorldVersion,
		"save_stats_immediate", p.stats.Immediate, "save_stats_debounced", p.stats.Debounced, "save_stats_errors", p.stats.Errors)
	return nil
}

func writeWorldFile(path string, world *World) error {
	world.RLock()
	defer world.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "world-*.tmp")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(world); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// LoadWorld reads path, runs pending migrations against the raw document
// tree, and unmarshals the result into a *World (§3.4, §4.A). A missing
// file is not an error: callers get a fresh world ready for bootstrap.
func LoadWorld(path string, log *slog.Logger) (*World, error) {
	if log == nil {
		log = slog.Default()
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		w := NewWorld()
		w.WorldVersion = newMigrationRegistry().latestVersion()
		return w, nil
	}
	if err != nil {
		return nil, wrapKindError(KindPersistence, "read world file", err)
	}

	var doc migrationDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, wrapKindError(KindPersistence, "parse world file", err)
	}

	if err := newMigrationRegistry().migrateToLatest(doc, log); err != nil {
		return nil, wrapKindError(KindIntegrity, "migrate world file", err)
	}

	migrated, err := json.Marshal(doc)
	if err != nil {
		return nil, wrapKindError(KindPersistence, "re-encode migrated world", err)
	}

	world := NewWorld()
	if err := json.Unmarshal(migrated, world); err != nil {
		return nil, wrapKindError(KindPersistence, "decode migrated world", err)
	}
	world.rebuildIndexes()
	return world, nil
}

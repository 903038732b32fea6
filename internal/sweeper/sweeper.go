package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pyhumph/jriit-cms-sub001/internal/event"
	"github.com/pyhumph/jriit-cms-sub001/internal/storage"
)

// DefaultMinAge keeps fresh uploads whose media record may not be committed
// yet.
const DefaultMinAge = time.Hour

type referencedPaths interface {
	ReferencedPaths(ctx context.Context) (map[string]struct{}, error)
}

type uploadArea interface {
	Walk(fn func(storage.StoredFile) error) error
	RemoveIfExists(storedPath string) error
}

// SweepResult reports one pass over the upload root.
type SweepResult struct {
	Scanned    int      `json:"scanned"`
	Orphaned   int      `json:"orphaned"`
	Removed    int      `json:"removed"`
	FreedBytes int64    `json:"freed_bytes"`
	Failed     []string `json:"failed,omitempty"`
	Paths      []string `json:"paths,omitempty"`
	DryRun     bool     `json:"dry_run"`
}

// Sweeper removes uploaded files that no media record points at. It is the
// deferred cleanup for files left behind when a purge's file removal fails
// or times out.
type Sweeper struct {
	cron   *cron.Cron
	media  referencedPaths
	files  uploadArea
	bus    event.Bus
	dryRun bool
	minAge time.Duration
	now    func() time.Time

	mu        sync.Mutex
	isRunning bool
}

func New(media referencedPaths, files uploadArea, bus event.Bus, dryRun bool) *Sweeper {
	return &Sweeper{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		media:  media,
		files:  files,
		bus:    bus,
		dryRun: dryRun,
		minAge: DefaultMinAge,
		now:    time.Now,
	}
}

// Start schedules Sweep with a standard cron spec such as "@daily" or
// "30 3 * * *".
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		result, err := s.Sweep(ctx)
		if err != nil {
			slog.Error("orphaned upload sweep failed", "error", err)
			return
		}
		slog.Info("orphaned upload sweep finished",
			"scanned", result.Scanned,
			"orphaned", result.Orphaned,
			"removed", result.Removed,
			"freed_bytes", result.FreedBytes,
			"dry_run", result.DryRun)
	})
	if err != nil {
		return fmt.Errorf("schedule orphan sweep %q: %w", schedule, err)
	}

	s.cron.Start()
	s.mu.Lock()
	s.isRunning = true
	s.mu.Unlock()

	slog.Info("orphaned upload sweeper scheduled", "schedule", schedule, "dry_run", s.dryRun)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	running := s.isRunning
	s.isRunning = false
	s.mu.Unlock()

	if running {
		<-s.cron.Stop().Done()
	}
}

func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	result := SweepResult{DryRun: s.dryRun}

	referenced, err := s.media.ReferencedPaths(ctx)
	if err != nil {
		return result, fmt.Errorf("load referenced media paths: %w", err)
	}

	known := make(map[string]struct{}, len(referenced))
	for p := range referenced {
		known[normalize(p)] = struct{}{}
	}

	cutoff := s.now().Add(-s.minAge).Unix()
	orphans := make([]storage.StoredFile, 0)

	err = s.files.Walk(func(f storage.StoredFile) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Scanned++
		if _, ok := known[normalize(f.Path)]; ok {
			return nil
		}
		if f.ModTime > cutoff {
			return nil
		}
		orphans = append(orphans, f)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walk upload root: %w", err)
	}

	result.Orphaned = len(orphans)
	for _, f := range orphans {
		result.Paths = append(result.Paths, f.Path)
		if s.dryRun {
			continue
		}
		if err := s.files.RemoveIfExists(f.Path); err != nil {
			slog.Warn("failed to remove orphaned upload", "path", f.Path, "error", err)
			result.Failed = append(result.Failed, f.Path)
			continue
		}
		result.Removed++
		result.FreedBytes += f.Size
	}

	if s.bus != nil && result.Removed > 0 {
		s.bus.Publish(event.New(event.TypeOrphansSwept, "", result))
	}

	return result, nil
}

func normalize(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

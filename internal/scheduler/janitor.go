package scheduler

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BatmanBruc/handy-image-converter/types"
)

// fileGrace is added to MaxAge before a scratch file counts as stale. A
// source file is written shortly before its pending entry starts its TTL.
const fileGrace = time.Minute

// Janitor periodically drops expired pending conversions and scratch files
// nobody references anymore.
type Janitor struct {
	store      types.ConversationStore
	scratchDir string
	interval   time.Duration
	maxAge     time.Duration
	now        func() time.Time
	log        *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

type Config struct {
	// Interval between sweeps. Zero disables the background loop.
	Interval time.Duration
	// MaxAge of a scratch file before it is removed, plus fileGrace.
	// Zero keeps files.
	MaxAge time.Duration
}

type SweepResult struct {
	Expired      int
	FilesRemoved int
}

func NewJanitor(store types.ConversationStore, scratchDir string, config Config, log *slog.Logger) *Janitor {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Janitor{
		store:      store,
		scratchDir: scratchDir,
		interval:   config.Interval,
		maxAge:     config.MaxAge,
		now:        time.Now,
		log:        log.With("component", "janitor"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (j *Janitor) Start() {
	j.mu.Lock()
	if j.running || j.interval <= 0 {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.log.Info("janitor started", slog.Duration("interval", j.interval), slog.Duration("max_age", j.maxAge))

	j.wg.Add(1)
	go j.loop()
}

func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	j.cancel()
	j.wg.Wait()
	j.log.Info("janitor stopped")
}

func (j *Janitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(j.ctx)
		}
	}
}

// Sweep runs one cleanup pass.
func (j *Janitor) Sweep(ctx context.Context) SweepResult {
	var res SweepResult
	now := j.now()

	if expirer, ok := j.store.(types.Expirer); ok {
		expired, err := expirer.Expire(ctx, now)
		if err != nil {
			j.log.ErrorContext(ctx, "expire pending conversions failed",
				slog.String("event", "janitor.sweep"),
				slog.String("err", err.Error()),
			)
		}
		for _, p := range expired {
			if p.SourcePath != "" {
				_ = os.Remove(p.SourcePath)
			}
		}
		res.Expired = len(expired)
	}

	if j.maxAge > 0 {
		res.FilesRemoved = j.removeStaleFiles(ctx, now)
	}

	if res.Expired > 0 || res.FilesRemoved > 0 {
		j.log.InfoContext(ctx, "sweep finished",
			slog.String("event", "janitor.sweep"),
			slog.Int("expired", res.Expired),
			slog.Int("files_removed", res.FilesRemoved),
		)
	}
	return res
}

func (j *Janitor) removeStaleFiles(ctx context.Context, now time.Time) int {
	entries, err := os.ReadDir(j.scratchDir)
	if err != nil {
		if !os.IsNotExist(err) {
			j.log.ErrorContext(ctx, "read scratch dir failed",
				slog.String("event", "janitor.sweep"),
				slog.String("dir", j.scratchDir),
				slog.String("err", err.Error()),
			)
		}
		return 0
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < j.maxAge+fileGrace {
			continue
		}
		path := filepath.Join(j.scratchDir, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			j.log.WarnContext(ctx, "remove stale file failed", slog.String("path", path), slog.String("err", err.Error()))
			continue
		}
		removed++
	}
	return removed
}

package watch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "icsdiff/internal/log"
)

// RunFunc performs one diff run.
type RunFunc func(ctx context.Context) error

type fileState struct {
	size    int64
	modTime time.Time
}

// Watcher re-runs a diff on a cron schedule, but only when one of the
// watched files changed (size or mtime) since the last successful run.
type Watcher struct {
	schedule cron.Schedule
	spec     string
	paths    []string
	run      RunFunc

	mu   sync.Mutex
	last map[string]fileState
}

// New validates the standard 5-field cron spec (descriptors like "@hourly"
// are accepted too).
func New(spec string, paths []string, run RunFunc) (*Watcher, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("watch schedule %q: %w", spec, err)
	}
	if run == nil {
		return nil, fmt.Errorf("watch: run func is nil")
	}
	return &Watcher{
		schedule: sched,
		spec:     spec,
		paths:    paths,
		run:      run,
		last:     make(map[string]fileState),
	}, nil
}

// Start performs an initial Tick, then ticks on the schedule until ctx is
// canceled. It blocks.
func (w *Watcher) Start(ctx context.Context) error {
	w.tickAndLog(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(w.schedule, cron.FuncJob(func() {
		w.tickAndLog(ctx)
	}))

	appLog.Info("watch started", "schedule", w.spec, "paths", len(w.paths))
	c.Start()

	<-ctx.Done()

	// Wait for a running job to finish before returning.
	<-c.Stop().Done()
	appLog.Info("watch stopped")
	return nil
}

// Next reports when the schedule fires after t.
func (w *Watcher) Next(t time.Time) time.Time {
	return w.schedule.Next(t)
}

// Tick runs the diff if any watched file changed. It reports whether the
// diff ran.
func (w *Watcher) Tick(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := make(map[string]fileState, len(w.paths))
	changed := false
	for _, p := range w.paths {
		info, err := os.Stat(p)
		if err != nil {
			return false, err
		}
		st := fileState{size: info.Size(), modTime: info.ModTime()}
		current[p] = st

		prev, ok := w.last[p]
		if !ok || prev.size != st.size || !prev.modTime.Equal(st.modTime) {
			changed = true
		}
	}

	if !changed {
		appLog.Debug("watch: inputs unchanged; skipping")
		return false, nil
	}

	if err := w.run(ctx); err != nil {
		// State is not recorded, so the next tick retries.
		return true, err
	}
	w.last = current
	return true, nil
}

func (w *Watcher) tickAndLog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ran, err := w.Tick(ctx)
	if err != nil {
		appLog.Error("watch: diff run failed", err)
		return
	}
	if ran {
		appLog.Info("watch: diff run completed")
	}
}

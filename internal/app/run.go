// Package app wires one diff invocation: check inputs, parse both snapshots,
// diff, annotate, serialize and hand the calendar to a sink.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"icsdiff/internal/diff"
	"icsdiff/internal/export"
	"icsdiff/internal/ics"
	appLog "icsdiff/internal/log"
	"icsdiff/internal/model"
)

// ErrPathNotFound is wrapped when an input path is not a readable file.
var ErrPathNotFound = errors.New("path not found")

// Sink accepts the serialized output calendar and returns where it went.
type Sink interface {
	Write(ctx context.Context, data []byte) (string, error)
}

// Options describes a single run.
type Options struct {
	BasePath    string
	ChangedPath string

	Policy    diff.Policy
	Markers   export.Markers
	ProductID string

	// Clock stamps DTSTAMP; nil means the system clock.
	Clock export.Clock
	// Sink receives the output. Nil or DryRun skips writing.
	Sink   Sink
	DryRun bool
}

// Outcome is everything a run produced.
type Outcome struct {
	Result   diff.Result
	Events   []model.Event
	Calendar string
	// OutputPath is empty when nothing was written.
	OutputPath string
}

// Run executes the diff pipeline. Both paths are checked before either file
// is parsed; any error aborts before the sink is called, so no output is
// produced on failure.
func Run(ctx context.Context, opts Options) (Outcome, error) {
	var out Outcome

	if err := checkPath("base", opts.BasePath); err != nil {
		return out, err
	}
	if err := checkPath("changed", opts.ChangedPath); err != nil {
		return out, err
	}

	base, err := load(ctx, "base", opts.BasePath)
	if err != nil {
		return out, err
	}
	changed, err := load(ctx, "changed", opts.ChangedPath)
	if err != nil {
		return out, err
	}

	policy := opts.Policy
	if policy == "" {
		policy = diff.DefaultPolicy
	}
	clock := opts.Clock
	if clock == nil {
		clock = export.SystemClock
	}

	out.Result = diff.Diff(diff.NewEventSet(base), diff.NewEventSet(changed), policy)
	out.Events = export.Annotate(out.Result, opts.Markers)
	out.Calendar = ics.Serialize(out.Events, ics.SerializeOptions{
		ProductID: opts.ProductID,
		Stamp:     clock.Now(),
	})

	if opts.DryRun || opts.Sink == nil {
		appLog.Info("dry run; export not written", "events", len(out.Events))
		return out, nil
	}

	path, err := opts.Sink.Write(ctx, []byte(out.Calendar))
	if err != nil {
		return out, err
	}
	out.OutputPath = path
	return out, nil
}

func checkPath(role, path string) error {
	if path == "" {
		return fmt.Errorf("%s file not given: %w", role, ErrPathNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s file %s does not exist: %w", role, path, ErrPathNotFound)
		}
		return fmt.Errorf("%s file %s: %w: %w", role, path, ErrPathNotFound, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s file %s is a directory: %w", role, path, ErrPathNotFound)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s file %s is not readable: %w: %w", role, path, ErrPathNotFound, err)
	}
	return f.Close()
}

func load(ctx context.Context, role, path string) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s file %s: %w", role, path, err)
	}
	return ics.Parse(role+" file "+path, body)
}

package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	appLog "icsdiff/internal/log"
)

// DefaultTimestampLayout mirrors %Y%m%d%H%M%S.
const DefaultTimestampLayout = "20060102150405"

const fileSuffix = "-export.ics"

// maxNameAttempts bounds the "-N" suffix search for a free filename.
const maxNameAttempts = 1000

// Clock is the time source for output names and DTSTAMP values.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// WriteError reports a failure to create the output directory or file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// FileSink writes each export to a new timestamped file in Dir.
type FileSink struct {
	Dir    string
	Layout string
	Clock  Clock
}

// NewFileSink returns a sink for dir ("" means the current directory).
func NewFileSink(dir, layout string, clock Clock) *FileSink {
	if dir == "" {
		dir = "."
	}
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	if clock == nil {
		clock = SystemClock
	}
	return &FileSink{Dir: dir, Layout: layout, Clock: clock}
}

// Write stores data as <timestamp>-export.ics (or <timestamp>-export-N.ics
// if that name is taken) and returns the final path.
//
// Implementation details:
//   - Creates Dir (0755) if needed.
//   - Writes to a temp file in Dir, syncs, then hard-links it to the
//     first free name. An existing file is never replaced.
//   - On any failure the temp file is removed; no partial file is left
//     under the final name.
func (s *FileSink) Write(ctx context.Context, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", &WriteError{Path: s.Dir, Err: err}
	}

	tmp, err := os.CreateTemp(s.Dir, ".icsdiff-export-*.tmp")
	if err != nil {
		return "", &WriteError{Path: s.Dir, Err: err}
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", &WriteError{Path: tmpName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", &WriteError{Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &WriteError{Path: tmpName, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", &WriteError{Path: tmpName, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.link(tmpName)
	if err != nil {
		return "", err
	}

	appLog.Info("export written", "path", path, "bytes", len(data))
	return path, nil
}

// link publishes tmpName under the first free "-export[-N].ics" name. A hard
// link fails with fs.ErrExist instead of replacing, so a file that appears
// between attempts is never clobbered.
func (s *FileSink) link(tmpName string) (string, error) {
	stamp := s.Clock.Now().Format(s.Layout)

	for i := 0; i < maxNameAttempts; i++ {
		name := stamp + fileSuffix
		if i > 0 {
			name = stamp + "-export-" + strconv.Itoa(i) + ".ics"
		}
		path := filepath.Join(s.Dir, name)

		err := os.Link(tmpName, path)
		if err == nil {
			return path, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return "", &WriteError{Path: path, Err: err}
	}
	return "", &WriteError{
		Path: filepath.Join(s.Dir, stamp+fileSuffix),
		Err:  errors.New("no free output filename"),
	}
}

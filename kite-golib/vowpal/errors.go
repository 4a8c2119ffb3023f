package vowpal

import (
	"fmt"

	"github.com/kiteco/govw/kite-golib/errors"
)

var (
	// ErrStreamClosed is returned by Stream.Add after Close.
	ErrStreamClosed = errors.New("vowpal: stream is closed")
	// ErrBadPrefix is returned when a file prefix does not contain exactly one %s.
	ErrBadPrefix = errors.New("vowpal: file prefix must contain exactly one %%s")
)

// LabelError reports a training record without a label, or a test record with one.
type LabelError struct {
	Index    int
	ID       string
	Training bool
}

func (e *LabelError) Error() string {
	if e.Training {
		return fmt.Sprintf("vowpal: training record %d (id %s) has no label", e.Index, e.ID)
	}
	return fmt.Sprintf("vowpal: test record %d (id %s) has a label", e.Index, e.ID)
}

// OrderError reports a training record that follows a test record. Line is the
// 1-based position of the offending record in the data artifact at Path.
type OrderError struct {
	Path string
	Line int
	ID   string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("vowpal: %s:%d: training record (id %s) follows a test record", e.Path, e.Line, e.ID)
}

// MalformedError reports a data or predictions line that could not be parsed.
type MalformedError struct {
	Path   string
	Line   int
	Text   string
	Reason string
}

func (e *MalformedError) Error() string {
	path := e.Path
	if path == "" {
		path = "<input>"
	}
	if e.Line == 0 {
		return fmt.Sprintf("vowpal: %s: %s: %q", path, e.Reason, e.Text)
	}
	return fmt.Sprintf("vowpal: %s:%d: %s: %q", path, e.Line, e.Reason, e.Text)
}

// ToolError reports a vw invocation that did not exit cleanly. ExitCode is -1
// when the process could not be started or was killed.
type ToolError struct {
	Binary   string
	LogPath  string
	ExitCode int
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("vowpal: %s exited with status %d, check log file %s", e.Binary, e.ExitCode, e.LogPath)
}

// Unwrap returns the underlying exec error.
func (e *ToolError) Unwrap() error {
	return e.Err
}

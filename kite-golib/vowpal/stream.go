package vowpal

import (
	"bufio"
	"io"
	"os"

	"github.com/kiteco/govw/kite-golib/errors"
)

// recordWriter appends records to a data artifact and enforces that every
// training record comes before every test record.
type recordWriter struct {
	path    string
	w       *bufio.Writer
	written int
	inTest  bool
	numTest int
}

func newRecordWriter(path string, w io.Writer) *recordWriter {
	return &recordWriter{path: path, w: bufio.NewWriter(w)}
}

func (rw *recordWriter) write(rec *Record) error {
	if err := rec.Validate(); err != nil {
		merr := err.(*MalformedError)
		merr.Path = rw.path
		merr.Line = rw.written + 1
		return merr
	}

	switch {
	case !rw.inTest && !rec.Labeled():
		rw.inTest = true
	case rw.inTest && rec.Labeled():
		return &OrderError{Path: rw.path, Line: rw.written + 1, ID: rec.ID()}
	}

	if _, err := rw.w.WriteString(rec.String()); err != nil {
		return errors.Wrapf(err, "error writing record %s to %s", rec.ID(), rw.path)
	}
	if err := rw.w.WriteByte('\n'); err != nil {
		return errors.Wrapf(err, "error writing record %s to %s", rec.ID(), rw.path)
	}
	rw.written++
	if rw.inTest {
		rw.numTest++
	}
	return nil
}

func (rw *recordWriter) flush() error {
	return errors.WrapfOrNil(rw.w.Flush(), "error flushing %s", rw.path)
}

// Stream accumulates records into a data file as they arrive. All training
// records must be added before the first test record.
type Stream struct {
	f      *os.File
	rw     *recordWriter
	closed bool
}

// NewStream creates (or truncates) the data file at path.
func NewStream(path string) (*Stream, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating stream file %s", path)
	}
	return &Stream{f: f, rw: newRecordWriter(path, f)}, nil
}

// Add appends rec to the stream. It returns an *OrderError if rec is labeled
// and a test record has already been added, and a *MalformedError if rec
// fails Validate.
func (s *Stream) Add(rec *Record) error {
	if s.closed {
		return ErrStreamClosed
	}
	return s.rw.write(rec)
}

// Close flushes and closes the data file. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.rw.flush()
	if cerr := s.f.Close(); cerr != nil {
		err = errors.Combine(err, errors.Wrapf(cerr, "error closing %s", s.rw.path))
	}
	return err
}

// NumTest returns the number of test records added so far.
func (s *Stream) NumTest() int {
	return s.rw.numTest
}

// Len returns the number of records added so far.
func (s *Stream) Len() int {
	return s.rw.written
}

// Path returns the data file the stream writes to.
func (s *Stream) Path() string {
	return s.rw.path
}

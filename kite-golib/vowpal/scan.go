package vowpal

import (
	"bufio"
	"io"
	"strings"

	"github.com/kiteco/govw/kite-golib/errors"
)

const maxLineSize = 64 << 20

func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return s
}

// ScanTestCount reads a vw data file and returns the number of test records
// in it. A header of 3 tokens (label, weight, id) is a training record, 2
// tokens (weight, id) is a test record. Training records after a test record
// are an *OrderError, any other header is a *MalformedError.
func ScanTestCount(r io.Reader) (int, error) {
	h, err := scanHeaders("", r)
	return h.numTest, err
}

// headerCounts summarizes the records already in a data file.
type headerCounts struct {
	lines   int
	numTest int
}

func scanHeaders(path string, r io.Reader) (headerCounts, error) {
	var h headerCounts

	s := newLineScanner(r)
	for s.Scan() {
		h.lines++
		line := h.lines
		text := s.Text()

		header := text
		if i := strings.IndexByte(text, '|'); i >= 0 {
			header = text[:i]
		}
		tokens := strings.Fields(header)

		switch len(tokens) {
		case 3:
			if h.numTest > 0 {
				return headerCounts{}, &OrderError{Path: path, Line: line, ID: tokens[2]}
			}
		case 2:
			h.numTest++
		default:
			return headerCounts{}, &MalformedError{
				Path:   path,
				Line:   line,
				Text:   text,
				Reason: "expected 2 or 3 header tokens",
			}
		}
	}
	if err := s.Err(); err != nil {
		return headerCounts{}, errors.Wrapf(err, "error scanning %s", path)
	}
	return h, nil
}

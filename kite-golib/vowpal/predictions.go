package vowpal

import (
	"io"
	"strconv"
	"strings"

	"github.com/kiteco/govw/kite-golib/errors"
)

// Prediction is a score vw produced for one test record.
type Prediction struct {
	ID    string  `json:"id" csv:"id"`
	Value float64 `json:"value" csv:"prediction"`
}

// ReadPredictions parses "<value> <id>" lines from r and returns the last n of
// them, oldest first. Earlier lines are left over from previous runs.
func ReadPredictions(r io.Reader, n int) ([]Prediction, error) {
	preds, _, err := readPredictions("", r, n)
	return preds, err
}

// readPredictions also returns the total number of lines read.
func readPredictions(path string, r io.Reader, n int) ([]Prediction, int, error) {
	if n < 0 {
		n = 0
	}
	ring := make([]Prediction, n)
	var total int

	s := newLineScanner(r)
	for s.Scan() {
		text := s.Text()
		tokens := strings.Fields(text)
		if len(tokens) != 2 {
			return nil, total, &MalformedError{
				Path:   path,
				Line:   total + 1,
				Text:   text,
				Reason: "expected <value> <id>",
			}
		}
		value, err := strconv.ParseFloat(tokens[0], 64)
		if err != nil {
			return nil, total, &MalformedError{
				Path:   path,
				Line:   total + 1,
				Text:   text,
				Reason: "invalid prediction value",
			}
		}
		if n > 0 {
			ring[total%n] = Prediction{ID: tokens[1], Value: value}
		}
		total++
	}
	if err := s.Err(); err != nil {
		return nil, total, errors.Wrapf(err, "error reading predictions %s", path)
	}

	switch {
	case n == 0:
		return []Prediction{}, total, nil
	case total <= n:
		return ring[:total], total, nil
	}
	// total > n > 0: the oldest kept entry sits at the write cursor
	start := total % n
	out := make([]Prediction, 0, n)
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, total, nil
}

// ByID maps each prediction's id to its value.
func ByID(preds []Prediction) map[string]float64 {
	m := make(map[string]float64, len(preds))
	for _, p := range preds {
		m[p.ID] = p.Value
	}
	return m
}

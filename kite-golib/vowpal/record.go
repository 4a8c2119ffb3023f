// Package vowpal writes feature records in the Vowpal Wabbit input format, runs
// the vw binary over them and reads back its predictions.
package vowpal

import (
	"strconv"
	"strings"
	"unicode"
)

// weight is the importance weight written for every record.
const weight = "1.0"

// NullFloat is a float64 that may be absent, in the manner of sql.NullFloat64.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Missing is the absent NullFloat.
var Missing = NullFloat{}

// Float returns a present NullFloat holding v.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// String formats the value the way it appears in a vw line, or "" if absent.
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return formatFloat(n.Float64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Feature is a single key within a section. A feature without a value is unary.
type Feature struct {
	Key   string
	Value NullFloat
}

// Unary returns a feature that is present without a value.
func Unary(key string) Feature {
	return Feature{Key: key}
}

// Numeric returns a feature with value v.
func Numeric(key string, v float64) Feature {
	return Feature{Key: key, Value: Float(v)}
}

// Section is a named group of features, a namespace in vw terms.
type Section struct {
	Name     string
	Features []Feature
}

// Record is a single example. A record with a label is a training record, a
// record without one is a test record to be scored.
//
// The id and feature keys must be non-empty and, like section names, must not
// contain whitespace, '|' or ':'. Validate reports records that break this;
// Stream.Add and Runner.PredictRecords reject them.
type Record struct {
	id       string
	label    NullFloat
	sections []Section
}

// NewRecord returns a record with no sections.
func NewRecord(id string, label NullFloat) *Record {
	return &Record{id: id, label: label}
}

// ID returns the identifier vw echoes back next to each prediction.
func (r *Record) ID() string {
	return r.id
}

// Label returns the record's label, which is absent for test records.
func (r *Record) Label() NullFloat {
	return r.label
}

// Labeled returns true for training records.
func (r *Record) Labeled() bool {
	return r.label.Valid
}

// AddSection appends a namespace to the record. The features are copied, so
// later changes to the caller's slice do not reach the record.
func (r *Record) AddSection(name string, features ...Feature) *Record {
	r.sections = append(r.sections, Section{
		Name:     name,
		Features: append([]Feature(nil), features...),
	})
	return r
}

// Sections returns a copy of the record's sections in the order they were added.
func (r *Record) Sections() []Section {
	out := make([]Section, 0, len(r.sections))
	for _, s := range r.sections {
		out = append(out, Section{
			Name:     s.Name,
			Features: append([]Feature(nil), s.Features...),
		})
	}
	return out
}

// String returns the record as a single vw input line, without a newline:
//   [<label> ]1.0 <id>|<section> <key>[:<value>] ...|<section> ...
func (r *Record) String() string {
	var b strings.Builder
	if r.label.Valid {
		b.WriteString(r.label.String())
		b.WriteByte(' ')
	}
	b.WriteString(weight)
	b.WriteByte(' ')
	b.WriteString(r.id)

	for _, s := range r.sections {
		b.WriteByte('|')
		b.WriteString(s.Name)
		for _, f := range s.Features {
			b.WriteByte(' ')
			b.WriteString(f.Key)
			if f.Value.Valid {
				b.WriteByte(':')
				b.WriteString(f.Value.String())
			}
		}
	}
	return b.String()
}

// ValidToken reports whether s can be written as a single token of a vw line.
func ValidToken(s string) bool {
	return s != "" && validName(s)
}

// validName allows the empty string, which vw reads as the default namespace.
func validName(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '|' || r == ':'
	}) < 0
}

// Validate returns a *MalformedError if the record's id, section names or
// feature keys would break the vw line format.
func (r *Record) Validate() error {
	malformed := func(reason string) error {
		return &MalformedError{Text: r.String(), Reason: reason}
	}
	if !ValidToken(r.id) {
		return malformed("invalid record id " + strconv.Quote(r.id))
	}
	for _, s := range r.sections {
		if !validName(s.Name) {
			return malformed("invalid section name " + strconv.Quote(s.Name))
		}
		for _, f := range s.Features {
			if !ValidToken(f.Key) {
				return malformed("invalid feature key " + strconv.Quote(f.Key))
			}
		}
	}
	return nil
}

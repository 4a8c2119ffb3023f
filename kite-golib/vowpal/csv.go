package vowpal

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/gocarina/gocsv"
	"github.com/kiteco/govw/kite-golib/errors"
)

// CSVOptions names the special columns of a CSV table.
type CSVOptions struct {
	IDColumn         string
	LabelColumn      string
	DefaultNamespace string
}

// DefaultCSVOptions reads ids from "id", labels from "label" and puts columns
// without a namespace into "default".
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		IDColumn:         "id",
		LabelColumn:      "label",
		DefaultNamespace: "default",
	}
}

type csvColumn struct {
	index     int
	namespace string
	feature   string
}

// ReadCSV builds one record per row of a CSV table with a header. Feature
// columns are named "<namespace>.<feature>"; an empty cell omits the feature,
// a numeric cell becomes feature:value and any other text becomes the unary
// feature feature=text. An empty label cell makes the row a test record.
func ReadCSV(r io.Reader, opts CSVOptions) ([]*Record, error) {
	reader := gocsv.DefaultCSVReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading csv header")
	}

	idCol, labelCol := -1, -1
	var namespaces []string
	byNamespace := make(map[string][]csvColumn)
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch name {
		case opts.IDColumn:
			idCol = i
			continue
		case opts.LabelColumn:
			labelCol = i
			continue
		}

		ns, feature := opts.DefaultNamespace, name
		if dot := strings.IndexByte(name, '.'); dot >= 0 {
			ns, feature = name[:dot], name[dot+1:]
		}
		ns = sanitize(ns)
		if _, seen := byNamespace[ns]; !seen {
			namespaces = append(namespaces, ns)
		}
		byNamespace[ns] = append(byNamespace[ns], csvColumn{index: i, namespace: ns, feature: sanitize(feature)})
	}
	if idCol < 0 {
		return nil, &MalformedError{Line: 1, Text: strings.Join(header, ","), Reason: "missing id column " + opts.IDColumn}
	}

	var recs []*Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "error reading csv line %d", line)
		}

		id := sanitize(strings.TrimSpace(row[idCol]))
		if id == "" {
			return nil, &MalformedError{Line: line, Text: strings.Join(row, ","), Reason: "empty id"}
		}

		label := Missing
		if labelCol >= 0 {
			if cell := strings.TrimSpace(row[labelCol]); cell != "" {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, &MalformedError{Line: line, Text: strings.Join(row, ","), Reason: "invalid label"}
				}
				label = Float(v)
			}
		}

		rec := NewRecord(id, label)
		for _, ns := range namespaces {
			var features []Feature
			for _, col := range byNamespace[ns] {
				cell := strings.TrimSpace(row[col.index])
				if cell == "" {
					continue
				}
				if v, err := strconv.ParseFloat(cell, 64); err == nil {
					features = append(features, Numeric(col.feature, v))
				} else {
					features = append(features, Unary(col.feature+"="+sanitize(cell)))
				}
			}
			if len(features) > 0 {
				rec.AddSection(ns, features...)
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// sanitize replaces characters that would break a vw line.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '|' || r == ':' {
			return '_'
		}
		return r
	}, s)
}

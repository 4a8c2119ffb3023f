package main

import (
	"github.com/kiteco/govw/kite-golib/vowpal"
)

type feature struct {
	Key   string   `json:"key"`
	Value *float64 `json:"value"`
}

type section struct {
	Name     string    `json:"name"`
	Features []feature `json:"features"`
}

type record struct {
	ID       string    `json:"id"`
	Label    *float64  `json:"label"`
	Sections []section `json:"sections"`
}

type predictRequest struct {
	Training []record `json:"training"`
	Testing  []record `json:"testing"`
}

type predictResponse struct {
	Predictions []vowpal.Prediction `json:"predictions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func nullFloat(v *float64) vowpal.NullFloat {
	if v == nil {
		return vowpal.Missing
	}
	return vowpal.Float(*v)
}

func (r record) toRecord() (*vowpal.Record, error) {
	rec := vowpal.NewRecord(r.ID, nullFloat(r.Label))
	for _, s := range r.Sections {
		features := make([]vowpal.Feature, 0, len(s.Features))
		for _, f := range s.Features {
			features = append(features, vowpal.Feature{Key: f.Key, Value: nullFloat(f.Value)})
		}
		rec.AddSection(s.Name, features...)
	}
	return rec, rec.Validate()
}

func toRecords(recs []record) ([]*vowpal.Record, error) {
	out := make([]*vowpal.Record, 0, len(recs))
	for _, r := range recs {
		rec, err := r.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

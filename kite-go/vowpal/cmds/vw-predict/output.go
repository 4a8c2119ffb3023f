package main

import (
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/kiteco/govw/kite-golib/errors"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/kiteco/govw/kite-golib/vowpal"
	"github.com/montanaflynn/stats"
)

func writePredictions(path string, preds []vowpal.Prediction) (err error) {
	var w io.Writer = os.Stdout
	if path != "" {
		var f *os.File
		if f, err = os.Create(path); err != nil {
			return errors.Wrapf(err, "error creating %s", path)
		}
		defer errors.Defer(&err, f.Close)
		w = f
	}
	return errors.WrapfOrNil(gocsv.Marshal(&preds, w), "error writing predictions")
}

type summary struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	P90    float64
}

func summarize(preds []vowpal.Prediction) (summary, error) {
	s := summary{Count: len(preds)}
	if len(preds) == 0 {
		return s, nil
	}

	data := make(stats.Float64Data, 0, len(preds))
	for _, p := range preds {
		data = append(data, p.Value)
	}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.P90, err = stats.Percentile(data, 90); err != nil {
		return s, err
	}
	return s, nil
}

func report(logger kitelog.Interface, preds []vowpal.Prediction) {
	s, err := summarize(preds)
	if err != nil {
		logger.Printf("error summarizing predictions: %v", err)
		return
	}
	logger.Printf("%d predictions: mean %.4f, median %.4f, min %.4f, max %.4f, p90 %.4f",
		s.Count, s.Mean, s.Median, s.Min, s.Max, s.P90)
}

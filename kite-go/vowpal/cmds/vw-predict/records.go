package main

import (
	"time"

	"github.com/kiteco/govw/kite-golib/cmdline"
	"github.com/kiteco/govw/kite-golib/errors"
	"github.com/kiteco/govw/kite-golib/fileutil"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/kiteco/govw/kite-golib/vowpal"
)

var recordsCmd = cmdline.Command{
	Name:     "records",
	Synopsis: "train and predict on the rows of a csv table",
	Args:     &recordsArgs{CSVArgs: defaultCSVArgs()},
}

// CSVArgs are the flags for commands reading a csv table.
type CSVArgs struct {
	In          string `arg:"--in,required" help:"csv table, local path or s3:// uri"`
	IDColumn    string `arg:"--id-column" help:"column holding record ids"`
	LabelColumn string `arg:"--label-column" help:"column holding labels, empty for test rows"`
}

func defaultCSVArgs() CSVArgs {
	opts := vowpal.DefaultCSVOptions()
	return CSVArgs{IDColumn: opts.IDColumn, LabelColumn: opts.LabelColumn}
}

func (a CSVArgs) load() (recs []*vowpal.Record, err error) {
	r, err := fileutil.NewReader(a.In)
	if err != nil {
		return nil, err
	}
	defer errors.Defer(&err, r.Close)

	opts := vowpal.DefaultCSVOptions()
	opts.IDColumn = a.IDColumn
	opts.LabelColumn = a.LabelColumn
	recs, err = vowpal.ReadCSV(r, opts)
	return recs, errors.WrapfOrNil(err, "error loading %s", a.In)
}

type recordsArgs struct {
	CSVArgs
	RunnerArgs
	Split int `arg:"--split" help:"treat the first N rows as training and the rest as test, by label if zero"`
}

func (a *recordsArgs) Validate() error {
	if a.Split < 0 {
		return errors.New("--split must not be negative")
	}
	return nil
}

// split divides recs into training and test records. With n > 0 the first n
// records are training, otherwise records are divided by whether they have a
// label.
func split(recs []*vowpal.Record, n int) (training, testing []*vowpal.Record) {
	if n > 0 {
		if n > len(recs) {
			n = len(recs)
		}
		return recs[:n], recs[n:]
	}
	for _, rec := range recs {
		if rec.Labeled() {
			training = append(training, rec)
		} else {
			testing = append(testing, rec)
		}
	}
	return training, testing
}

func (a *recordsArgs) Handle() error {
	logger := kitelog.Basic.WithDurations()
	defer logger.Durations.Flush(logger)

	opts, err := a.options()
	if err != nil {
		return err
	}
	opts.Logger = logger

	start := time.Now()
	recs, err := a.load()
	if err != nil {
		return err
	}
	training, testing := split(recs, a.Split)
	logger.Durations.Since("load", start)
	logger.Printf("loaded %d training and %d test records from %s", len(training), len(testing), a.In)

	r, err := vowpal.NewRunner(opts)
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	start = time.Now()
	preds, err := r.PredictRecords(ctx, training, testing)
	if err != nil {
		return err
	}
	logger.Durations.Since("predict", start)

	report(logger, preds)
	return writePredictions(a.Out, preds)
}

package main

import (
	"time"

	"github.com/kiteco/govw/kite-golib/cmdline"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/kiteco/govw/kite-golib/vowpal"
)

var fileCmd = cmdline.Command{
	Name:     "file",
	Synopsis: "predict from a data file already in vw format",
	Args:     &fileArgs{},
}

type fileArgs struct {
	RunnerArgs
	Data string `arg:"--data,required" help:"vw data file, local path or s3:// uri"`
}

func (a *fileArgs) Handle() error {
	logger := kitelog.Basic.WithDurations()
	defer logger.Durations.Flush(logger)

	opts, err := a.options()
	if err != nil {
		return err
	}
	opts.Logger = logger

	r, err := vowpal.NewRunner(opts)
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	start := time.Now()
	preds, err := r.PredictFile(ctx, a.Data)
	if err != nil {
		return err
	}
	logger.Durations.Since("predict", start)

	report(logger, preds)
	return writePredictions(a.Out, preds)
}

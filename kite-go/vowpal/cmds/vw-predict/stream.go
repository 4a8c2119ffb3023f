package main

import (
	"time"

	"github.com/kiteco/govw/kite-golib/cmdline"
	"github.com/kiteco/govw/kite-golib/errors"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/kiteco/govw/kite-golib/vowpal"
)

var streamCmd = cmdline.Command{
	Name:     "stream",
	Synopsis: "feed the rows of a csv table through a record stream, training rows first",
	Args:     &streamArgs{CSVArgs: defaultCSVArgs()},
}

type streamArgs struct {
	CSVArgs
	RunnerArgs
}

func (a *streamArgs) Handle() error {
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

	start := time.Now()
	recs, err := a.load()
	if err != nil {
		return err
	}

	s, err := vowpal.NewStream(r.Paths().Data)
	if err != nil {
		return err
	}
	defer s.Close()

	for i, rec := range recs {
		if err := s.Add(rec); err != nil {
			return errors.Wrapf(err, "row %d of %s", i+1, a.In)
		}
	}
	logger.Durations.Since("stream", start)
	logger.Printf("streamed %d records, %d for test", s.Len(), s.NumTest())

	ctx, cancel := a.context()
	defer cancel()

	start = time.Now()
	preds, err := r.PredictStream(ctx, s)
	if err != nil {
		return err
	}
	logger.Durations.Since("predict", start)

	report(logger, preds)
	return writePredictions(a.Out, preds)
}

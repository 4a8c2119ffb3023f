package vowpal

import (
	"context"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kiteco/govw/kite-golib/awsutil"
	"github.com/kiteco/govw/kite-golib/errors"
	"github.com/kiteco/govw/kite-golib/exec"
	"github.com/kiteco/govw/kite-golib/fileutil"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/shirou/gopsutil/process"
)

const (
	// DefaultBinary is used when Options.Binary is empty.
	DefaultBinary = "vw"
	// DefaultPasses is the number of training passes vw makes unless overridden.
	DefaultPasses = "100"
	// DefaultL2 is the default L2 regularization strength.
	DefaultL2 = "0.001"
)

var sampleInterval = 100 * time.Millisecond

// Options configures a Runner.
type Options struct {
	// Binary is the path to vw.
	Binary string
	// FilePrefix derives the artifact paths, it must contain exactly one %s.
	FilePrefix string
	// Args are overlaid onto the default options.
	Args Args
	// Logger defaults to kitelog.Basic.
	Logger kitelog.Interface
}

// Runner invokes vw over a data artifact and reads back its predictions. A
// Runner owns its artifacts and must not be used concurrently.
type Runner struct {
	binary string
	paths  Artifacts
	args   Args
	logger kitelog.Interface

	// data is the artifact vw reads, it is paths.Data unless a stream or file was adopted.
	data    string
	numTest int
}

// NewRunner derives the artifact paths from opts.FilePrefix and removes any
// files left at them by an earlier runner.
func NewRunner(opts Options) (*Runner, error) {
	paths, err := DeriveArtifacts(opts.FilePrefix)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		binary: opts.Binary,
		paths:  paths,
		args:   opts.Args,
		logger: opts.Logger,
		data:   paths.Data,
	}
	if r.binary == "" {
		r.binary = DefaultBinary
	}
	if r.logger == nil {
		r.logger = kitelog.Basic
	}
	if err := r.reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// reset clears stale artifacts. It runs once per Runner.
func (r *Runner) reset() error {
	return errors.WrapfOrNil(r.paths.reset(), "error resetting artifacts")
}

// Paths returns the runner's artifact paths.
func (r *Runner) Paths() Artifacts {
	return r.paths
}

// NumTest returns the number of test records expected from the last run.
func (r *Runner) NumTest() int {
	return r.numTest
}

func (r *Runner) defaultArgs() Args {
	return Args{
		Flag("--conjugate_gradient"),
		Option("--passes", DefaultPasses),
		Option("--l2", DefaultL2),
		Option("--cache_file", r.paths.Cache),
		Option("--predictions", r.paths.Preds),
		Option("--data", r.data),
	}
}

// CommandLine returns the full argv Run would execute.
func (r *Runner) CommandLine() []string {
	return append([]string{r.binary}, r.defaultArgs().Merge(r.args).Flatten()...)
}

// Run executes vw once with its output sent to the log artifact. A nonzero exit
// status is returned as a *ToolError. No timeout is applied beyond ctx.
func (r *Runner) Run(ctx context.Context) (err error) {
	argv := r.CommandLine()

	logf, err := os.Create(r.paths.Log)
	if err != nil {
		return errors.Wrapf(err, "error creating log file %s", r.paths.Log)
	}
	defer errors.Defer(&err, logf.Close)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = logf
	cmd.Stderr = logf

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &ToolError{Binary: r.binary, LogPath: r.paths.Log, ExitCode: -1, Err: err}
	}

	done := make(chan struct{})
	peak := samplePeakRSS(cmd.Process.Pid, done)
	werr := cmd.Wait()
	close(done)
	rss := <-peak

	r.logger.Printf("vw ran for %s over %s, peak rss %s, log %s",
		time.Since(start), dataSize(r.data), humanize.Bytes(rss), r.paths.Log)

	if werr != nil {
		return &ToolError{Binary: r.binary, LogPath: r.paths.Log, ExitCode: exec.ExitCode(werr), Err: werr}
	}
	return nil
}

// samplePeakRSS polls the resident memory of pid until done is closed and then
// sends the largest value seen. Sampling errors leave the peak unchanged.
func samplePeakRSS(pid int, done <-chan struct{}) <-chan uint64 {
	out := make(chan uint64, 1)
	go func() {
		var peak uint64
		defer func() { out <- peak }()

		proc, err := process.NewProcess(int32(pid))
		if err != nil {
			return
		}
		sample := func() {
			if mem, err := proc.MemoryInfo(); err == nil && mem.RSS > peak {
				peak = mem.RSS
			}
		}

		ticker := time.NewTicker(sampleInterval)
		defer ticker.Stop()
		sample()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				sample()
			}
		}
	}()
	return out
}

func dataSize(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "unknown size"
	}
	return humanize.Bytes(uint64(fi.Size()))
}

// PredictRecords appends training then testing to the data artifact, runs vw
// and returns the predictions for testing in order. Every training record must
// be labeled and every testing record unlabeled, otherwise a *LabelError is
// returned. Records already in the data artifact stay there, so training
// records may only be added while it holds no test records.
func (r *Runner) PredictRecords(ctx context.Context, training, testing []*Record) ([]Prediction, error) {
	for i, rec := range training {
		if !rec.Labeled() {
			return nil, &LabelError{Index: i, ID: rec.ID(), Training: true}
		}
	}
	for i, rec := range testing {
		if rec.Labeled() {
			return nil, &LabelError{Index: i, ID: rec.ID(), Training: false}
		}
	}
	for _, recs := range [][]*Record{training, testing} {
		for _, rec := range recs {
			if err := rec.Validate(); err != nil {
				return nil, err
			}
		}
	}

	if err := r.appendRecords(training, testing); err != nil {
		return nil, err
	}
	r.data = r.paths.Data
	r.numTest = len(testing)

	if err := r.Run(ctx); err != nil {
		return nil, err
	}
	preds, err := r.readPredictions()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(testing))
	for _, rec := range testing {
		ids[rec.ID()] = true
	}
	out := preds[:0]
	for _, p := range preds {
		if ids[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// appendRecords continues the phase of whatever paths.Data already holds,
// whether it was written by an earlier call, a Stream or a copied file.
func (r *Runner) appendRecords(training, testing []*Record) (err error) {
	var existing headerCounts
	if _, serr := os.Stat(r.paths.Data); serr == nil {
		if existing, err = scanFile(r.paths.Data); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(r.paths.Data, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "error opening data file %s", r.paths.Data)
	}
	defer errors.Defer(&err, f.Close)

	rw := newRecordWriter(r.paths.Data, f)
	rw.written = existing.lines
	rw.inTest = existing.numTest > 0

	for _, recs := range [][]*Record{training, testing} {
		for _, rec := range recs {
			if err := rw.write(rec); err != nil {
				return err
			}
		}
	}
	return rw.flush()
}

// PredictStream closes s, runs vw over its file and returns the predictions for
// the test records it received.
func (r *Runner) PredictStream(ctx context.Context, s *Stream) ([]Prediction, error) {
	if err := s.Close(); err != nil {
		return nil, err
	}
	r.data = s.Path()
	r.numTest = s.NumTest()

	if err := r.Run(ctx); err != nil {
		return nil, err
	}
	return r.readPredictions()
}

// PredictFile runs vw over an existing data file and returns the predictions
// for its test records. The test count is found by scanning the file's
// headers. s3:// paths are first copied into the data artifact.
func (r *Runner) PredictFile(ctx context.Context, path string) ([]Prediction, error) {
	if awsutil.IsS3URI(path) {
		n, err := fileutil.CopyToLocal(path, r.paths.Data)
		if err != nil {
			return nil, err
		}
		r.logger.Printf("copied %s from %s to %s", humanize.Bytes(uint64(n)), path, r.paths.Data)
		path = r.paths.Data
	}

	h, err := scanFile(path)
	if err != nil {
		return nil, err
	}
	r.data = path
	r.numTest = h.numTest

	if err := r.Run(ctx); err != nil {
		return nil, err
	}
	return r.readPredictions()
}

func scanFile(path string) (h headerCounts, err error) {
	f, err := os.Open(path)
	if err != nil {
		return h, errors.Wrapf(err, "error opening data file %s", path)
	}
	defer errors.Defer(&err, f.Close)
	return scanHeaders(path, f)
}

func (r *Runner) readPredictions() (preds []Prediction, err error) {
	f, err := os.Open(r.paths.Preds)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening predictions %s", r.paths.Preds)
	}
	defer errors.Defer(&err, f.Close)

	preds, total, err := readPredictions(r.paths.Preds, f, r.numTest)
	if err != nil {
		return nil, err
	}
	if total < r.numTest {
		r.logger.Printf("expected %d predictions in %s, found %d", r.numTest, r.paths.Preds, total)
	}
	return preds, nil
}

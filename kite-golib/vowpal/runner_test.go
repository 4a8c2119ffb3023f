package vowpal

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiteco/govw/kite-golib/errors"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, dir string, args Args) *Runner {
	bin, err := os.Executable()
	require.NoError(t, err)

	r, err := NewRunner(Options{
		Binary:     bin,
		FilePrefix: filepath.Join(dir, "run.%s"),
		Args:       args,
		Logger:     kitelog.Nop,
	})
	require.NoError(t, err)
	return r
}

func readLog(t *testing.T, r *Runner) string {
	buf, err := ioutil.ReadFile(r.Paths().Log)
	require.NoError(t, err)
	return string(buf)
}

func TestRunnerCommandLine(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	r := newTestRunner(t, dir, Args{Option("--passes", "5"), Flag("--quiet")})
	paths := r.Paths()
	assert.Equal(t, []string{
		"--conjugate_gradient",
		"--passes", "5",
		"--l2", DefaultL2,
		"--cache_file", paths.Cache,
		"--predictions", paths.Preds,
		"--data", paths.Data,
		"--quiet",
	}, r.CommandLine()[1:])
}

func TestRunnerPassesOverride(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	r := newTestRunner(t, dir, Args{Option("--passes", "5")})
	_, err := r.PredictRecords(context.Background(), []*Record{labeled("a", 1)}, []*Record{unlabeled("b")})
	require.NoError(t, err)

	log := readLog(t, r)
	assert.Contains(t, log, "--passes 5")
	assert.NotContains(t, log, "--passes 100")
}

func TestNewRunnerBadPrefix(t *testing.T) {
	_, err := NewRunner(Options{FilePrefix: "/tmp/run"})
	assert.Equal(t, ErrBadPrefix, err)
}

func TestNewRunnerResets(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	stale := filepath.Join(dir, "run.preds")
	require.NoError(t, ioutil.WriteFile(stale, []byte("9 old\n"), 0644))
	newTestRunner(t, dir, nil)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestPredictRecords(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	r := newTestRunner(t, dir, nil)
	training := []*Record{labeled("a", 1), labeled("b", 0)}
	test := []*Record{unlabeled("c"), unlabeled("d")}

	preds, err := r.PredictRecords(context.Background(), training, test)
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{ID: "c", Value: 0.3}, {ID: "d", Value: 0.4}}, preds)
	assert.Equal(t, 2, r.NumTest())

	buf, err := ioutil.ReadFile(r.Paths().Data)
	require.NoError(t, err)
	assert.Equal(t, "1 1.0 a|f x\n0 1.0 b|f x\n1.0 c|f x\n1.0 d|f x\n", string(buf))
}

func TestPredictRecordsLabels(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)

	_, err := r.PredictRecords(context.Background(), []*Record{labeled("a", 1), unlabeled("b")}, nil)
	require.Error(t, err)
	lerr, ok := errors.Cause(err).(*LabelError)
	require.True(t, ok, "expected *LabelError, got %T", err)
	assert.Equal(t, 1, lerr.Index)
	assert.True(t, lerr.Training)

	_, err = r.PredictRecords(context.Background(), nil, []*Record{unlabeled("a"), unlabeled("b"), labeled("c", 1)})
	require.Error(t, err)
	lerr, ok = errors.Cause(err).(*LabelError)
	require.True(t, ok, "expected *LabelError, got %T", err)
	assert.Equal(t, 2, lerr.Index)
	assert.False(t, lerr.Training)

	// nothing is written when labels are wrong
	_, err = os.Stat(r.Paths().Data)
	assert.True(t, os.IsNotExist(err))
}

func TestPredictRecordsAppends(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)
	ctx := context.Background()

	_, err := r.PredictRecords(ctx, []*Record{labeled("a", 1)}, []*Record{unlabeled("b")})
	require.NoError(t, err)

	// more test records can follow, and only their predictions are returned
	preds, err := r.PredictRecords(ctx, nil, []*Record{unlabeled("c")})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, "c", preds[0].ID)

	// training records cannot follow the test records already written
	_, err = r.PredictRecords(ctx, []*Record{labeled("d", 1)}, nil)
	require.Error(t, err)
	_, ok := errors.Cause(err).(*OrderError)
	assert.True(t, ok, "expected *OrderError, got %T", err)
}

func TestPredictStream(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)

	s, err := NewStream(filepath.Join(dir, "stream.data"))
	require.NoError(t, err)
	for _, rec := range []*Record{labeled("a", 1), labeled("b", 2), unlabeled("c"), unlabeled("d"), unlabeled("e")} {
		require.NoError(t, s.Add(rec))
	}

	preds, err := r.PredictStream(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{ID: "c", Value: 0.3}, {ID: "d", Value: 0.4}, {ID: "e", Value: 0.5}}, preds)
	assert.Contains(t, readLog(t, r), "--data "+s.Path())
	assert.Equal(t, ErrStreamClosed, s.Add(unlabeled("f")))
}

func TestPredictFile(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)

	path := filepath.Join(dir, "input.vw")
	data := "1 1.0 a|f x\n0 1.0 b|f y:2\n1.0 c|f x\n1.0 d|f x\n"
	require.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))

	preds, err := r.PredictFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{ID: "c", Value: 0.3}, {ID: "d", Value: 0.4}}, preds)
	assert.Equal(t, 2, r.NumTest())
}

func TestPredictFileOrder(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)

	path := filepath.Join(dir, "input.vw")
	require.NoError(t, ioutil.WriteFile(path, []byte("1 1.0 a|f x\n1.0 b|f x\n1 1.0 c|f x\n"), 0644))

	_, err := r.PredictFile(context.Background(), path)
	require.Error(t, err)
	oerr, ok := errors.Cause(err).(*OrderError)
	require.True(t, ok, "expected *OrderError, got %T", err)
	assert.Equal(t, path, oerr.Path)

	// vw is never started
	_, err = os.Stat(r.Paths().Log)
	assert.True(t, os.IsNotExist(err))
}

func TestPredictStalePredictions(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)

	// a leftover predictions file from an earlier run that was not cleaned up
	require.NoError(t, ioutil.WriteFile(r.Paths().Preds, []byte("9 old1\n9 old2\n"), 0644))

	preds, err := r.PredictRecords(context.Background(), []*Record{labeled("a", 1)}, []*Record{unlabeled("b")})
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{ID: "b", Value: 0.2}}, preds)
}

func TestRunnerToolError(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)

	os.Setenv(fakeExitEnv, "3")
	defer os.Unsetenv(fakeExitEnv)

	preds, err := r.PredictRecords(context.Background(), []*Record{labeled("a", 1)}, []*Record{unlabeled("b")})
	require.Error(t, err)
	assert.Nil(t, preds)

	terr, ok := errors.Cause(err).(*ToolError)
	require.True(t, ok, "expected *ToolError, got %T", err)
	assert.Equal(t, 3, terr.ExitCode)
	assert.Equal(t, r.Paths().Log, terr.LogPath)
	assert.Contains(t, err.Error(), r.Paths().Log)
	assert.Contains(t, readLog(t, r), "fake vw failure")
}

func TestRunnerMissingBinary(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	r, err := NewRunner(Options{
		Binary:     filepath.Join(dir, "no-such-vw"),
		FilePrefix: filepath.Join(dir, "run.%s"),
		Logger:     kitelog.Nop,
	})
	require.NoError(t, err)

	err = r.Run(context.Background())
	require.Error(t, err)
	terr, ok := errors.Cause(err).(*ToolError)
	require.True(t, ok, "expected *ToolError, got %T", err)
	assert.Equal(t, -1, terr.ExitCode)
}

func TestRunnerCancelled(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.PredictRecords(ctx, []*Record{labeled("a", 1)}, []*Record{unlabeled("b")})
	require.Error(t, err)
	_, ok := errors.Cause(err).(*ToolError)
	assert.True(t, ok, "expected *ToolError, got %T", err)
	assert.True(t, strings.Contains(err.Error(), "check log file"))
}

func TestPredictRecordsAfterStream(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)
	ctx := context.Background()

	s, err := NewStream(r.Paths().Data)
	require.NoError(t, err)
	require.NoError(t, s.Add(labeled("a", 1)))
	require.NoError(t, s.Add(unlabeled("b")))
	_, err = r.PredictStream(ctx, s)
	require.NoError(t, err)

	_, err = r.PredictRecords(ctx, []*Record{labeled("late", 1)}, []*Record{unlabeled("c")})
	require.Error(t, err)
	oerr, ok := errors.Cause(err).(*OrderError)
	require.True(t, ok, "expected *OrderError, got %T", err)
	assert.Equal(t, "late", oerr.ID)
	assert.Equal(t, 3, oerr.Line)

	buf, err := ioutil.ReadFile(r.Paths().Data)
	require.NoError(t, err)
	assert.Equal(t, "1 1.0 a|f x\n1.0 b|f x\n", string(buf))

	// test records can still follow
	preds, err := r.PredictRecords(ctx, nil, []*Record{unlabeled("c")})
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{ID: "c", Value: 0.3}}, preds)
}

func TestPredictRecordsAfterFile(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)
	ctx := context.Background()

	require.NoError(t, ioutil.WriteFile(r.Paths().Data, []byte("1 1.0 a|f x\n1.0 b|f x\n"), 0644))
	_, err := r.PredictFile(ctx, r.Paths().Data)
	require.NoError(t, err)

	_, err = r.PredictRecords(ctx, []*Record{labeled("late", 1)}, nil)
	require.Error(t, err)
	_, ok := errors.Cause(err).(*OrderError)
	assert.True(t, ok, "expected *OrderError, got %T", err)
}

func TestPredictRecordsInvalidToken(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	r := newTestRunner(t, dir, nil)

	_, err := r.PredictRecords(context.Background(), nil, []*Record{unlabeled("a"), unlabeled("b c")})
	require.Error(t, err)
	_, ok := errors.Cause(err).(*MalformedError)
	assert.True(t, ok, "expected *MalformedError, got %T", err)

	_, err = os.Stat(r.Paths().Data)
	assert.True(t, os.IsNotExist(err))
}

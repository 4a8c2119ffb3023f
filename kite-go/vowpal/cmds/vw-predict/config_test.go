package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiteco/govw/kite-golib/vowpal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
binary: /opt/vw/bin/vw
file_prefix: /data/vw/run-%s
args:
  --passes: 20
  --loss_function: logistic
  --quiet:
  --l2: 0.5
`

func writeConfig(t *testing.T, dir string) string {
	path := filepath.Join(dir, "runner.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(testConfig), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "vw-predict")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	c, err := loadConfig(writeConfig(t, dir))
	require.NoError(t, err)
	assert.Equal(t, "/opt/vw/bin/vw", c.Binary)
	assert.Equal(t, "/data/vw/run-%s", c.FilePrefix)

	args, err := c.vwArgs()
	require.NoError(t, err)
	assert.Equal(t, vowpal.Args{
		vowpal.Option("--passes", "20"),
		vowpal.Option("--loss_function", "logistic"),
		vowpal.Flag("--quiet"),
		vowpal.Option("--l2", "0.5"),
	}, args)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := loadConfig("/nonexistent/runner.yaml")
	assert.Error(t, err)
}

func TestOptionsPrecedence(t *testing.T) {
	dir, err := ioutil.TempDir("", "vw-predict")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	a := RunnerArgs{
		Config: writeConfig(t, dir),
		VW:     "/usr/bin/vw",
		Passes: 3,
	}
	opts, err := a.options()
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/vw", opts.Binary)
	assert.Equal(t, "/data/vw/run-%s", opts.FilePrefix)
	passes, ok := opts.Args.Get("--passes")
	require.True(t, ok)
	assert.Equal(t, "3", passes.Value)
	assert.Equal(t, "--passes", opts.Args[0].Name)
}

func TestOptionsDefaults(t *testing.T) {
	opts, err := RunnerArgs{}.options()
	require.NoError(t, err)
	assert.NotEmpty(t, opts.Binary)
	assert.Contains(t, opts.FilePrefix, "%s")
	assert.Empty(t, opts.Args)
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kiteco/govw/kite-golib/envutil"
	"github.com/kiteco/govw/kite-golib/errors"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/kiteco/govw/kite-golib/vowpal"
	yaml "gopkg.in/yaml.v2"
)

// config is the yaml runner configuration, e.g.
//   binary: /usr/local/bin/vw
//   file_prefix: /data/vw/run-%s
//   args:
//     --passes: 20
//     --loss_function: logistic
//     --quiet:
// A key without a value is passed as a bare flag. Options keep file order.
type config struct {
	Binary     string        `yaml:"binary"`
	FilePrefix string        `yaml:"file_prefix"`
	Args       yaml.MapSlice `yaml:"args"`
}

func loadConfig(path string) (config, error) {
	var c config
	f, err := os.Open(path)
	if err != nil {
		return c, errors.Wrapf(err, "error opening config %s", path)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return c, errors.Wrapf(err, "error decoding config %s", path)
	}
	return c, nil
}

func (c config) vwArgs() (vowpal.Args, error) {
	var args vowpal.Args
	for _, item := range c.Args {
		name, ok := item.Key.(string)
		if !ok {
			return nil, errors.Errorf("option name %v is not a string", item.Key)
		}
		switch v := item.Value.(type) {
		case nil:
			args = append(args, vowpal.Flag(name))
		case float64:
			args = append(args, vowpal.Option(name, strconv.FormatFloat(v, 'g', -1, 64)))
		default:
			args = append(args, vowpal.Option(name, fmt.Sprint(v)))
		}
	}
	return args, nil
}

// RunnerArgs are the flags shared by every command.
type RunnerArgs struct {
	Config  string        `arg:"--config" help:"yaml runner config"`
	VW      string        `arg:"--vw" help:"path to the vw binary"`
	Prefix  string        `arg:"--prefix" help:"artifact path template containing one %s"`
	Passes  int           `arg:"--passes" help:"number of training passes, overrides the config"`
	Out     string        `arg:"--out" help:"predictions csv, stdout if empty"`
	Timeout time.Duration `arg:"--timeout" help:"kill vw after this long, no limit if zero"`
}

func (a RunnerArgs) context() (context.Context, context.CancelFunc) {
	if a.Timeout > 0 {
		return context.WithTimeout(context.Background(), a.Timeout)
	}
	return context.WithCancel(context.Background())
}

// options resolves the runner options from the environment, then the config
// file, then the flags.
func (a RunnerArgs) options() (vowpal.Options, error) {
	opts := vowpal.Options{
		Binary:     envutil.GetenvDefault("VW_PATH", vowpal.DefaultBinary),
		FilePrefix: envutil.GetenvDefault("VW_FILE_PREFIX", filepath.Join(os.TempDir(), "vw-predict-%s")),
		Logger:     kitelog.Basic,
	}

	if a.Config != "" {
		c, err := loadConfig(a.Config)
		if err != nil {
			return opts, err
		}
		if c.Binary != "" {
			opts.Binary = c.Binary
		}
		if c.FilePrefix != "" {
			opts.FilePrefix = c.FilePrefix
		}
		if opts.Args, err = c.vwArgs(); err != nil {
			return opts, errors.Wrapf(err, "error in config %s", a.Config)
		}
	}

	if a.VW != "" {
		opts.Binary = a.VW
	}
	if a.Prefix != "" {
		opts.FilePrefix = a.Prefix
	}
	if a.Passes > 0 {
		opts.Args = opts.Args.Set(vowpal.Option("--passes", strconv.Itoa(a.Passes)))
	}
	return opts, nil
}

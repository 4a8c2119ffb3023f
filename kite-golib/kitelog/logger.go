package kitelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	region  = os.Getenv("REGION")
	release = os.Getenv("RELEASE")
)

// Basic tags each line with the region & release identifiers. Error level
// lines go to stderr, everything else to stdout.
var Basic = New(os.Stdout, os.Stderr)

// Nop discards everything it is given.
var Nop = &Logger{Default: zap.NewNop().Sugar()}

// Logger encapsulates a zap logger along with a durations tracker
type Logger struct {
	Default   *zap.SugaredLogger
	Durations Durations
}

// Interface encapsulates the relevant methods of log.Logger
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// New returns a Logger writing JSON lines to out, and error level lines to errOut.
func New(out, errOut io.Writer) *Logger {
	isErrorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	isInfoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel
	})

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewJSONEncoder(config)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(errOut)), isErrorLevel),
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), isInfoLevel),
	)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(
		zap.String("region", region),
		zap.String("release", release),
	)
	return &Logger{Default: logger.Sugar()}
}

// Printf implements Interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Default.Infof(format, v...)
}

// Println implements Interface
func (l *Logger) Println(v ...interface{}) {
	l.Default.Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Errorf logs at error level
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.Default.Errorf(format, v...)
}

// With returns a derived Logger that adds the given key/value pairs to every line
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{Default: l.Default.With(keysAndValues...)}
}

// Sync flushes any buffered lines
func (l *Logger) Sync() error {
	return l.Default.Sync()
}

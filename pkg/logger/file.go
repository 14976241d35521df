package logger

import (
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig configures the rotating log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewFileWriter returns a size-rotated writer backed by lumberjack.
func NewFileWriter(cfg FileConfig) *lumberjack.Logger {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  false,
	}
}

// Options is the flat, config-file friendly form used by the service entrypoint.
type Options struct {
	Level  string
	Caller bool
	File   FileConfig
}

// NewFromOptions builds a logger that writes to stdout and, when a file
// path is set, tees into a rotating file. The returned closer releases the
// file and is a no-op when no file is configured.
func NewFromOptions(opts Options) (Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if opts.File.Path != "" {
		fw := NewFileWriter(opts.File)
		out = io.MultiWriter(os.Stdout, fw)
		closer = fw
	}

	return New(&Config{
		Level:  level,
		Output: out,
		Caller: opts.Caller,
	}), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

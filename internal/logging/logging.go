package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"bingo-battle/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu      sync.RWMutex
	writer  io.Writer = os.Stdout
	logFile *sizeLimitedWriter
)

// Init configures the global zerolog logger. When cfg.File is set, output is
// also appended to that file, which is truncated once it reaches cfg.MaxMB.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	var raw io.Writer = os.Stdout
	out := console
	var file *sizeLimitedWriter
	if path := strings.TrimSpace(cfg.File); path != "" {
		f, err := newSizeLimitedWriter(path, cfg.MaxMB)
		if err != nil {
			return err
		}
		file = f
		raw = io.MultiWriter(os.Stdout, f)
		out = zerolog.MultiLevelWriter(console, f)
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	writer = raw
	mu.Unlock()

	log.Logger = logger
	return nil
}

// Writer is the plain JSON sink the HTTP access log writes to.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return writer
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	writer = os.Stdout
	return err
}

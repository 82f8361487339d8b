package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"mines-client/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	outputMu sync.RWMutex
	output   io.Writer = os.Stdout
)

// Init configures the global zerolog logger. The returned closer releases the
// log file when LOG_FILE is set and is a no-op otherwise.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if path := strings.TrimSpace(cfg.File); path != "" {
		fw, err := newSizeLimitedWriter(path, cfg.MaxMB)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stdout, fw)
		closer = fw
	}
	setWriter(w)

	var console io.Writer = w
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: w}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(console).With().Timestamp()
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return closer, nil
}

// Writer returns the sink the global logger writes to, for libraries that
// want their own handler (httplog's slog handler) on the same stream.
func Writer() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return output
}

func setWriter(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

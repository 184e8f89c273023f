package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

var DefaultConfig = Config{
	Debug:        false,
	PrettyFormat: false,
}

// New builds a logger writing to stdout. The caller owns it and hands it to
// whatever needs it; nothing here touches the zerolog global.
func New(conf Config) zerolog.Logger {
	return NewWithWriter(conf, os.Stdout)
}

func NewWithWriter(conf Config, w io.Writer) zerolog.Logger {
	var l zerolog.Logger
	if conf.PrettyFormat {
		l = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(w).With().Timestamp().Logger()
	}

	if conf.Debug {
		l = l.Level(zerolog.DebugLevel)
	} else {
		l = l.Level(zerolog.InfoLevel)
	}

	return l.With().Caller().Logger()
}

// Component tags every event from l with the emitting component.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

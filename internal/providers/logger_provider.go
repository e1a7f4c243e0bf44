package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gamatrix/internal/structures"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
	TypeIngest
	TypeStore
)

func (t TypeEnum) String() string {
	switch t {
	case TypeGet:
		return "get"
	case TypePost:
		return "post"
	case TypeIngest:
		return "ingest"
	case TypeStore:
		return "store"
	default:
		return "app"
	}
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes request logs to access.log and everything else to
// app.log, both rotated by lumberjack.
type LogProvider struct {
	app     zerolog.Logger
	access  zerolog.Logger
	closers []io.Closer
}

func (l *LogProvider) pick(t TypeEnum) *zerolog.Logger {
	if t == TypeGet || t == TypePost {
		return &l.access
	}
	return &l.app
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.pick(t).Error().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.pick(t).Warn().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.pick(t).Debug().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.pick(t).Info().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.pick(t).Fatal().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Close() {
	for _, c := range l.closers {
		_ = c.Close()
	}
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	info, err := os.Stat(conf.Logger.Dir)
	if err != nil {
		return nil, fmt.Errorf("log directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("log directory %s is not a directory", conf.Logger.Dir)
	}

	provider := &LogProvider{}
	open := func(name string) (io.Writer, error) {
		path := filepath.Join(conf.Logger.Dir, name)
		// lumberjack keeps the mode of an existing file
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			return nil, err
		}
		_ = f.Close()

		w := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		provider.closers = append(provider.closers, w)
		if conf.Debug {
			return zerolog.MultiLevelWriter(w, zerolog.ConsoleWriter{Out: os.Stderr}), nil
		}
		return w, nil
	}

	appWriter, err := open("app.log")
	if err != nil {
		return nil, err
	}
	accessWriter, err := open("access.log")
	if err != nil {
		provider.Close()
		return nil, err
	}

	provider.app = zerolog.New(appWriter).Level(level).With().Timestamp().Logger()
	provider.access = zerolog.New(accessWriter).Level(level).With().Timestamp().Logger()
	return provider, nil
}

// NewConsoleLogger logs to stderr only; the CLI uses it for one-shot
// commands that should not touch the daemon's log files.
func NewConsoleLogger(debug bool) Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return &LogProvider{app: l, access: l}
}

// NewCliLogProvider is NewConsoleLogger wired from the command line flags.
func NewCliLogProvider(flags *structures.CliFlags) Logger {
	return NewConsoleLogger(flags.DebugMode)
}

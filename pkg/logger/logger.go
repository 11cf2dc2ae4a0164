package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Logger is the shared instance; nil until Init, in which case the
	// package falls back to the logrus standard logger.
	Logger *logrus.Logger
	mu     sync.Mutex
)

// Config controls log level, format and file rotation.
type Config struct {
	Level      string // debug, info, warn, error
	OutputFile string // optional; empty logs to stdout only
	MaxSize    int    // max file size in MB before rotation
	MaxBackups int    // rotated files to keep
	MaxAge     int    // days to keep rotated files
	Compress   bool   // gzip rotated files
}

// Init sets up the shared logger. Safe to call more than once; the last
// call wins.
func Init(config Config) error {
	mu.Lock()
	defer mu.Unlock()

	log := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05",
	})

	writers := []io.Writer{os.Stdout}

	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0o755); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.OutputFile,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
	}

	log.SetOutput(io.MultiWriter(writers...))

	Logger = log
	return nil
}

// InitDefault initializes with info level to stdout.
func InitDefault() error {
	return Init(Config{Level: "info"})
}

func base() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if Logger != nil {
		return Logger
	}
	return logrus.StandardLogger()
}

// WithComponent returns an entry tagged with the originating component.
func WithComponent(name string) *logrus.Entry {
	return base().WithField("component", name)
}

// WithFields returns an entry carrying the given fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return base().WithFields(fields)
}

func Debugf(format string, args ...interface{}) { base().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { base().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { base().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { base().Errorf(format, args...) }

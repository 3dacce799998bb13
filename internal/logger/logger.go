package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

var Log = slog.New(slog.NewTextHandler(io.Discard, nil))

// file is the --log-file handle of the current logger, if any.
var file *os.File

// ParseLevel maps a level name to a slog level. Unknown names mean warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Init installs the global logger. Output goes to stderr so command output
// on stdout stays machine-readable; logFile, when set, gets a copy. Text
// when stderr is a terminal, JSON otherwise. A log file opened by an
// earlier Init is closed.
func Init(level string, logFile string) error {
	if err := Close(); err != nil {
		return err
	}
	writers := []io.Writer{os.Stderr}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		file = f
		writers = append(writers, f)
	}

	w := io.MultiWriter(writers...)
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: ParseLevel(level),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				// Shorten time format
				if a.Key == slog.TimeKey {
					return slog.String("time", a.Value.Time().Format("15:04:05"))
				}
				return a
			},
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
	return nil
}

// Close closes the log file, if any, and drops the logger back to stderr.
func Close() error {
	if file == nil {
		return nil
	}
	f := file
	file = nil
	Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(Log)
	return f.Close()
}

func Debug(msg string, args ...any) { Log.Debug(msg, args...) }
func Info(msg string, args ...any)  { Log.Info(msg, args...) }
func Warn(msg string, args ...any)  { Log.Warn(msg, args...) }
func Error(msg string, args ...any) { Log.Error(msg, args...) }

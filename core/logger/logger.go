package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	Init("info", "json")
}

// Init configures the global logger. format is "json" or "console".
func Init(level string, format string) {
	InitWithWriter(level, format, os.Stderr)
}

func InitWithWriter(level string, format string, out io.Writer) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()
}

func get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug(msg string, kv ...any) {
	write(get().Debug(), msg, kv)
}

func Info(msg string, kv ...any) {
	write(get().Info(), msg, kv)
}

func Warn(msg string, kv ...any) {
	write(get().Warn(), msg, kv)
}

func Error(msg string, kv ...any) {
	write(get().Error(), msg, kv)
}

func Fatal(msg string, kv ...any) {
	write(get().Fatal(), msg, kv)
}

// write attaches kv as alternating key/value pairs. A lone trailing value is
// logged under "error" when it is an error and under "extra" otherwise.
func write(e *zerolog.Event, msg string, kv []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			if err, ok := kv[i].(error); ok {
				e = e.Err(err)
			} else {
				e = e.Interface("extra", kv[i])
			}
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if err, ok := kv[i+1].(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

package mtclient

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// LogHandler is the pluggable sink behind Logger, generalized from the
// teacher's mtproto.go LogHandler interface.
type LogHandler interface {
	Error(err error, format string, args ...interface{})
	Warn(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Logger is a thin indirection over LogHandler, mirroring the teacher's
// `Logger{hnd LogHandler}` wrapper so call sites stay short
// (`m.log.Info(...)`) regardless of which handler is wired in.
type Logger struct{ hnd LogHandler }

func NewLogger(hnd LogHandler) Logger { return Logger{hnd: hnd} }

func (l Logger) Error(err error, format string, args ...interface{}) {
	if l.hnd != nil {
		l.hnd.Error(err, format, args...)
	}
}
func (l Logger) Warn(format string, args ...interface{}) {
	if l.hnd != nil {
		l.hnd.Warn(format, args...)
	}
}
func (l Logger) Info(format string, args ...interface{}) {
	if l.hnd != nil {
		l.hnd.Info(format, args...)
	}
}
func (l Logger) Debug(format string, args ...interface{}) {
	if l.hnd != nil {
		l.hnd.Debug(format, args...)
	}
}

// SimpleLogHandler writes to stderr with no coloring, the teacher's
// zero-dependency fallback (mtproto.go's SimpleLogHandler).
type SimpleLogHandler struct{}

func (SimpleLogHandler) Error(err error, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+": %v\n", append(args, err)...)
}
func (SimpleLogHandler) Warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "WARN: "+format+"\n", args...)
}
func (SimpleLogHandler) Info(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
}
func (SimpleLogHandler) Debug(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "DEBUG: "+format+"\n", args...)
}

// ColorLogHandler is the teacher's human-readable console handler,
// generalized to use fatih/color instead of raw ANSI escapes.
type ColorLogHandler struct{}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorWarn  = color.New(color.FgYellow)
	colorInfo  = color.New(color.FgGreen)
	colorDebug = color.New(color.FgCyan)
)

func (ColorLogHandler) Error(err error, format string, args ...interface{}) {
	colorError.Fprintf(os.Stderr, format+": %v\n", append(args, err)...)
}
func (ColorLogHandler) Warn(format string, args ...interface{}) {
	colorWarn.Fprintf(os.Stderr, format+"\n", args...)
}
func (ColorLogHandler) Info(format string, args ...interface{}) {
	colorInfo.Fprintf(os.Stderr, format+"\n", args...)
}
func (ColorLogHandler) Debug(format string, args ...interface{}) {
	colorDebug.Fprintf(os.Stderr, format+"\n", args...)
}

// ZerologHandler emits structured, field-based logs via zerolog, grounded
// in 9seconds/mtg's logging setup. Useful once a client is multiplexing
// several dcs at once and plain text lines stop being greppable.
type ZerologHandler struct {
	log zerolog.Logger
}

// NewZerologHandler wraps an existing zerolog.Logger (so the caller
// controls output format/level/fields globally).
func NewZerologHandler(log zerolog.Logger) ZerologHandler {
	return ZerologHandler{log: log}
}

func (h ZerologHandler) Error(err error, format string, args ...interface{}) {
	h.log.Error().Err(err).Msg(fmt.Sprintf(format, args...))
}
func (h ZerologHandler) Warn(format string, args ...interface{}) {
	h.log.Warn().Msg(fmt.Sprintf(format, args...))
}
func (h ZerologHandler) Info(format string, args ...interface{}) {
	h.log.Info().Msg(fmt.Sprintf(format, args...))
}
func (h ZerologHandler) Debug(format string, args ...interface{}) {
	h.log.Debug().Msg(fmt.Sprintf(format, args...))
}

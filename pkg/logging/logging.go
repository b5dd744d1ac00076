package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/json"

	"github.com/warptools/fwsetup/fsapi"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelProgress
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelProgress:
		return "PROGRESS"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes console output and fans every line out to attached sinks.
// Copies of a Logger share the same sinks.
type Logger struct {
	out     io.Writer
	err     io.Writer
	json    bool
	quiet   bool
	verbose bool
	sinks   *sinkSet
}

func DefaultLogger() Logger {
	return NewLogger(os.Stdout, os.Stderr, false, false, false)
}

func NewLogger(out, err io.Writer, json, quiet, verbose bool) Logger {
	return Logger{
		out:     out,
		err:     err,
		json:    json,
		quiet:   quiet,
		verbose: verbose,
		sinks:   &sinkSet{},
	}
}

type ctxKey struct{}

// WithContext returns a new context carrying the logger.
func (l Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Ctx returns the logger stored in ctx.
// A default logger is returned if none was set.
func Ctx(ctx context.Context) *Logger {
	l, ok := ctx.Value(ctxKey{}).(Logger)
	if !ok {
		l = DefaultLogger()
	}
	return &l
}

// AddSink attaches a sink. Every copy of this logger will write to it.
func (l *Logger) AddSink(s Sink) {
	l.sinks.add(s)
}

// Close closes all attached sinks and detaches them.
func (l *Logger) Close() error {
	return l.sinks.close()
}

func (l *Logger) Out(f string, args ...interface{}) {
	fmt.Fprintf(l.out, f+"\n", args...)
}

func (l *Logger) OutRaw(s string) {
	fmt.Fprintf(l.out, "%s", s)
}

// Progress reports a step of the overall run, e.g. "## Syncing Git repositories...".
func (l *Logger) Progress(f string, args ...interface{}) {
	msg := fmt.Sprintf(f, args...)
	l.sinks.log(LevelProgress, "", msg)
	if l.quiet {
		return
	}
	l.print(LevelProgress, color.New(color.FgHiCyan, color.Bold), "", msg)
}

func (l *Logger) Info(tag string, f string, args ...interface{}) {
	msg := fmt.Sprintf(f, args...)
	l.sinks.log(LevelInfo, tag, msg)
	if l.quiet {
		return
	}
	l.print(LevelInfo, color.New(color.FgHiGreen), tag, msg)
}

func (l *Logger) Warn(tag string, f string, args ...interface{}) {
	msg := fmt.Sprintf(f, args...)
	l.sinks.log(LevelWarn, tag, msg)
	l.print(LevelWarn, color.New(color.FgHiYellow), tag, msg)
}

func (l *Logger) Error(tag string, f string, args ...interface{}) {
	msg := fmt.Sprintf(f, args...)
	l.sinks.log(LevelError, tag, msg)
	l.print(LevelError, color.New(color.FgHiRed, color.Bold), tag, msg)
}

func (l *Logger) Debug(tag string, f string, args ...interface{}) {
	msg := fmt.Sprintf(f, args...)
	l.sinks.log(LevelDebug, tag, msg)
	if l.verbose {
		l.print(LevelDebug, color.New(color.FgGreen), tag, msg)
	}
}

func (l *Logger) print(level Level, tagColor *color.Color, tag, msg string) {
	if l.json {
		printJson(l.err, level, msg)
		return
	}
	for _, line := range strings.Split(msg, "\n") {
		if tag == "" {
			fmt.Fprintf(l.err, "%s\n", tagColor.Sprint(line))
			continue
		}
		fmt.Fprintf(l.err, "%s  %s\n",
			tagColor.Sprint(tag),
			color.WhiteString(line))
	}
}

func printJson(w io.Writer, level Level, msg string) {
	out := fsapi.ApiOutput{Log: &fsapi.LogOutput{Level: level.String(), Msg: fsapi.LogString(msg)}}
	serial, err := ipld.Marshal(json.Encode, &out, fsapi.TypeSystem.TypeByName("ApiOutput"))
	if err != nil {
		panic("failed to serialize log output")
	}
	fmt.Fprintf(w, "%s\n", serial)
}

// Writer is an io.Writer that turns each written line into a debug log line.
type Writer struct {
	logger *Logger
	tag    string
}

// DebugWriter returns a writer suitable for streaming subprocess output into the debug log.
func (l *Logger) DebugWriter(tag string) *Writer {
	return &Writer{
		logger: l,
		tag:    tag,
	}
}

func (w *Writer) Write(data []byte) (n int, err error) {
	str := strings.TrimSpace(strings.ReplaceAll(string(data), "\r", "\n"))
	if str == "" {
		return len(data), nil
	}
	for _, line := range strings.Split(str, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		w.logger.Debug(w.tag, "%s", line)
	}
	return len(data), nil
}

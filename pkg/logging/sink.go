package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/warptools/fwsetup/fsapi"
)

// Default directory (relative to the workspace root) and base name of the setup log files.
const (
	LogDirName  = "Build"
	LogBaseName = "SETUPLOG"
)

// LogFileNames returns the workspace-relative paths of the text and markdown log files,
// using forward slashes so they can be handed to git as pathspecs.
func LogFileNames() (txt string, md string) {
	return LogDirName + "/" + LogBaseName + ".txt", LogDirName + "/" + LogBaseName + ".md"
}

// Sink receives every log line regardless of console verbosity.
type Sink interface {
	Log(level Level, tag string, msg string)
	Close() error
}

type sinkSet struct {
	mu    sync.Mutex
	sinks []Sink
}

func (s *sinkSet) add(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

func (s *sinkSet) log(level Level, tag, msg string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sink := range s.sinks {
		sink.Log(level, tag, msg)
	}
}

func (s *sinkSet) close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.sinks = nil
	return first
}

// TextSink writes plain, uncolored lines.
type TextSink struct {
	w   io.WriteCloser
	now func() time.Time
}

func NewTextSink(w io.WriteCloser) *TextSink {
	return &TextSink{w: w, now: time.Now}
}

func (s *TextSink) Log(level Level, tag string, msg string) {
	stamp := s.now().Format("15:04:05.000")
	for _, line := range strings.Split(msg, "\n") {
		if tag != "" {
			line = tag + "  " + line
		}
		fmt.Fprintf(s.w, "%s %-8s - %s\n", stamp, level, line)
	}
}

func (s *TextSink) Close() error {
	return s.w.Close()
}

// MarkdownSink writes a markdown document: progress lines are emitted as-is
// (they usually carry their own heading markers), everything else as list items.
type MarkdownSink struct {
	w io.WriteCloser
}

func NewMarkdownSink(w io.WriteCloser, title string) *MarkdownSink {
	s := &MarkdownSink{w: w}
	fmt.Fprintf(w, "# %s\n\n", title)
	return s
}

func (s *MarkdownSink) Log(level Level, tag string, msg string) {
	msg = strings.TrimRight(msg, "\n")
	if msg == "" {
		return
	}
	switch level {
	case LevelProgress:
		if strings.HasPrefix(msg, "#") {
			fmt.Fprintf(s.w, "\n%s\n\n", msg)
		} else {
			fmt.Fprintf(s.w, "%s\n", msg)
		}
		return
	case LevelError:
		msg = "**ERROR** " + msg
	case LevelWarn:
		msg = "_WARNING_ " + msg
	case LevelDebug:
		msg = "`" + strings.ReplaceAll(msg, "`", "'") + "`"
	}
	if tag != "" {
		msg = tag + ": " + msg
	}
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintf(s.w, "- %s\n", line)
	}
}

func (s *MarkdownSink) Close() error {
	return s.w.Close()
}

// OpenFileSinks creates (or truncates) the text and markdown log files under dir/Build
// and attaches them to the logger.
//
// Errors:
//
//   - fwsetup-error-io -- when the log directory or files cannot be created
func (l *Logger) OpenFileSinks(workspaceRoot string, title string) error {
	dir := filepath.Join(workspaceRoot, LogDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fsapi.ErrorIo("cannot create log directory", dir, err)
	}
	txtName, mdName := LogFileNames()
	txtPath := filepath.Join(workspaceRoot, filepath.FromSlash(txtName))
	txt, err := os.Create(txtPath)
	if err != nil {
		return fsapi.ErrorIo("cannot create log file", txtPath, err)
	}
	mdPath := filepath.Join(workspaceRoot, filepath.FromSlash(mdName))
	md, err := os.Create(mdPath)
	if err != nil {
		txt.Close()
		return fsapi.ErrorIo("cannot create log file", mdPath, err)
	}
	l.AddSink(NewTextSink(txt))
	l.AddSink(NewMarkdownSink(md, title))
	return nil
}

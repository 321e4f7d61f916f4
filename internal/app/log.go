package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const logFileName = "fv.log"

// fvHandler writes one tab-separated line per record:
//
//	<timestamp>\t<level>\t<opID>\t<subject>\t<message>\t<key=value ...>
//
// The subject column is "<file>@<version>" built from the "file" and
// "version" attrs, so every line about one version can be grepped for
// "notes.txt@v2". Records with no file attr get "-".
type fvHandler struct {
	w     io.Writer
	opID  string
	level slog.Leveler
	attrs []slog.Attr
}

func (h *fvHandler) Enabled(_ context.Context, l slog.Level) bool {
	if h.level == nil {
		return l >= slog.LevelInfo
	}
	return l >= h.level.Level()
}

func (h *fvHandler) Handle(_ context.Context, r slog.Record) error {
	var file, version string
	var rest []slog.Attr
	collect := func(a slog.Attr) bool {
		switch a.Key {
		case "file":
			file = a.Value.String()
		case "version":
			version = a.Value.String()
		default:
			rest = append(rest, a)
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s",
		r.Time.UTC().Format("2006-01-02T15:04:05Z"), r.Level, h.opID, subject(file, version), r.Message)
	for _, a := range rest {
		fmt.Fprintf(&b, "\t%s=%v", a.Key, a.Value)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(h.w, b.String())
	return err
}

func subject(file, version string) string {
	switch {
	case file == "":
		return "-"
	case version == "":
		return file
	default:
		return file + "@" + version
	}
}

func (h *fvHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fvHandler{
		w:     h.w,
		opID:  h.opID,
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *fvHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a logger that appends to logDir/fv.log and, when verbose,
// also writes to stderr at debug level. An empty logDir disables the file.
// The returned file (possibly nil) must be closed by the caller.
func newLogger(logDir, opID string, verbose bool, stderr io.Writer) (*slog.Logger, *os.File, error) {
	var handlers []*fvHandler
	var f *os.File

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		handlers = append(handlers, &fvHandler{w: f, opID: opID, level: slog.LevelInfo})
	}
	if verbose {
		handlers = append(handlers, &fvHandler{w: stderr, opID: opID, level: slog.LevelDebug})
	}

	return slog.New(fanout(handlers)), f, nil
}

// fanout sends each record to every handler that accepts its level.
type fanout []*fvHandler

func (fo fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range fo {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (fo fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range fo {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (fo fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(fo))
	for i, h := range fo {
		out[i] = h.WithAttrs(attrs).(*fvHandler)
	}
	return out
}

func (fo fanout) WithGroup(string) slog.Handler { return fo }

// slogAdapter wraps *slog.Logger to satisfy the fv.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

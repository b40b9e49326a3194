package dataset

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// recordJSONHandler is a slog handler writing every record as one JSON line
// with a "time" field and all attributes at the top level. The level and the
// message are dropped.
type recordJSONHandler struct {
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
}

// NewRecordJSONHandler creates a handler writing JSON lines to out.
func NewRecordJSONHandler(out io.Writer) slog.Handler {
	return &recordJSONHandler{out: out, mu: &sync.Mutex{}}
}

// Handle serializes r as a JSON object followed by a newline.
func (h *recordJSONHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs)+1)
	attrs["time"] = r.Time.Format("2006-01-02 15:04:05")

	add := func(a slog.Attr) bool {
		if a.Key != "" && a.Value.Any() != nil {
			attrs[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(append(data, '\n'))
	return err
}

// WithAttrs returns a handler that adds attrs to every line.
func (h *recordJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &recordJSONHandler{out: h.out, mu: h.mu, attrs: merged}
}

// WithGroup is a no-op: lines are always flat.
func (h *recordJSONHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *recordJSONHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// JsonResultRepository writes scored schemes to a JSON lines file rotated and
// compressed by lumberjack. Safe for concurrent use.
type JsonResultRepository struct {
	lumberjack *lumberjack.Logger
	logger     *slog.Logger
}

// NewJsonResultRepository creates a result sink.
// Parameters:
//   - file: path of the output file
//   - maxSize: size in MB after which the file is rotated
//   - maxBackups: number of rotated files to keep
func NewJsonResultRepository(file string, maxSize, maxBackups int) *JsonResultRepository {
	repo := JsonResultRepository{}
	repo.lumberjack = &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	repo.logger = slog.New(NewRecordJSONHandler(repo.lumberjack))
	return &repo
}

// Append writes one record.
func (r *JsonResultRepository) Append(rec Record) {
	r.logger.Info("",
		"run", rec.Run,
		"scheme", rec.Scheme,
		"value", rec.Value,
		"lowerBound", rec.LowerBound,
		"classes", rec.Classes,
		"outliers", rec.Outliers,
	)
}

// Close closes the underlying file.
func (r *JsonResultRepository) Close() {
	if err := r.lumberjack.Close(); err != nil {
		slog.Warn("Unable to close results file", "error", err)
	}
}

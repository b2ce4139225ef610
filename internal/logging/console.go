package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one header line per record followed by an indented
// "- key: value" line per attribute. Component, batch and job attributes are
// lifted into the header instead of being listed.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool
	attrs     []slog.Attr
	groups    []string
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]field, 0, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		fields = appendField(fields, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.groups, attr)
		return true
	})

	var subj subject
	body := fields[:0]
	for _, f := range fields {
		if !subj.take(f) {
			body = append(body, f)
		}
	}
	body = lastWins(body)

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var buf bytes.Buffer
	buf.WriteString(ts.In(time.Local).Format(time.DateTime))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if header := subj.String(); header != "" {
		buf.WriteByte(' ')
		buf.WriteString(header)
	}
	buf.WriteString(" – ")
	buf.WriteString(msg)
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	buf.WriteByte('\n')
	for _, f := range body {
		fmt.Fprintf(&buf, "    - %s: %s\n", f.key, renderValue(f.value, true))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(slices.Clone(h.attrs), attrs...)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(slices.Clone(h.groups), name)
	return &next
}

// subject collects the attributes shown in the header, keeping the first
// value seen for each.
type subject struct {
	component string
	batchID   string
	jobIndex  string
}

func (s *subject) take(f field) bool {
	var dst *string
	switch f.key {
	case FieldComponent:
		dst = &s.component
	case FieldBatchID:
		dst = &s.batchID
	case FieldJobIndex:
		dst = &s.jobIndex
	default:
		return false
	}
	if *dst == "" {
		*dst = strings.TrimSpace(renderValue(f.value, false))
	}
	return true
}

// String renders "[component] Batch 1a2b3c4d · Job #3". Batch IDs are cut to
// eight characters and job numbers are one-based.
func (s subject) String() string {
	var parts []string
	if s.component != "" {
		parts = append(parts, "["+s.component+"]")
	}
	var ids []string
	if s.batchID != "" {
		ids = append(ids, "Batch "+shorten(s.batchID, 8))
	}
	if s.jobIndex != "" {
		job := s.jobIndex
		if n, err := strconv.Atoi(job); err == nil {
			job = strconv.Itoa(n + 1)
		}
		ids = append(ids, "Job #"+job)
	}
	if len(ids) > 0 {
		parts = append(parts, strings.Join(ids, " · "))
	}
	return strings.Join(parts, " ")
}

func shorten(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

type field struct {
	key   string
	value slog.Value
}

// appendField flattens groups into dotted keys.
func appendField(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			groups = append(slices.Clip(groups), attr.Key)
		}
		for _, member := range value.Group() {
			dst = appendField(dst, groups, member)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(append(slices.Clip(groups), key), ".")
		key = strings.TrimSuffix(key, ".")
	}
	return append(dst, field{key: key, value: value})
}

// lastWins drops empty keys and repeated keys, keeping the first position and
// the last value.
func lastWins(fields []field) []field {
	seen := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if i, ok := seen[f.key]; ok {
			out[i].value = f.value
			continue
		}
		seen[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func renderValue(v slog.Value, quote bool) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		return v.Time().In(time.Local).Format(time.DateTime)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		switch val := v.Any().(type) {
		case error:
			s = val.Error()
		case []string:
			s = strings.Join(val, ", ")
		default:
			s = fmt.Sprint(val)
		}
	default:
		return v.String()
	}
	if quote && (s == "" || strings.ContainsFunc(s, func(r rune) bool { return r < ' ' || r == '"' })) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

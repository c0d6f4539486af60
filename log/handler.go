// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// termHandler formats records for human readability on a terminal:
//
//	[LEVEL] [time] message key=value key=value ...
type termHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	level    slog.Level
	useColor bool
	attrs    []slog.Attr
}

func newTermHandler(wr io.Writer, level slog.Level, useColor bool) *termHandler {
	return &termHandler{wr: wr, level: level, useColor: useColor}
}

func (h *termHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *termHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *termHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &termHandler{
		wr:       h.wr,
		level:    h.level,
		useColor: h.useColor,
		attrs:    append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

const (
	colorRed    = 31
	colorYellow = 33
	colorGreen  = 32
	colorCyan   = 36
)

func (h *termHandler) label(level slog.Level) string {
	var (
		text  string
		color int
	)
	switch {
	case level >= slog.LevelError:
		text, color = "EROR", colorRed
	case level >= slog.LevelWarn:
		text, color = "WARN", colorYellow
	case level >= slog.LevelInfo:
		text, color = "INFO", colorGreen
	default:
		text, color = "DBUG", colorCyan
	}
	if h.useColor {
		return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, text)
	}
	return text
}

func (h *termHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", h.label(r.Level), r.Time.Format(time.DateTime), r.Message)

	writeAttr := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.wr, b.String())
	return err
}

// Package output provides consistent CLI output formatting for search
// results and status messages.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/docsearch/internal/search"
)

// ANSI color codes, applied only when the destination is a terminal.
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"
	colorCyan  = "\033[36m"
	colorRed   = "\033[31m"
	colorAmber = "\033[33m"
)

// Writer provides formatted output for the CLI.
type Writer struct {
	out      io.Writer
	useColor bool
}

// New creates a Writer, enabling color when out is a terminal.
func New(out io.Writer) *Writer {
	return &Writer{
		out:      out,
		useColor: isTerminal(out),
	}
}

// NewPlain creates a Writer with color disabled.
func NewPlain(out io.Writer) *Writer {
	return &Writer{out: out}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (w *Writer) paint(color, text string) string {
	if !w.useColor {
		return text
	}
	return color + text + colorReset
}

// Response renders a search response as human-readable text.
func (w *Writer) Response(resp *search.Response) {
	header := fmt.Sprintf("%d results for %q (%s", len(resp.Results), resp.Query, resp.Strategy)
	if resp.Degraded {
		header += ", " + w.paint(colorAmber, "degraded")
	}
	header += fmt.Sprintf(") in %s", resp.Took.Round(time.Millisecond))
	_, _ = fmt.Fprintln(w.out, w.paint(colorBold, header))

	for i, r := range resp.Results {
		_, _ = fmt.Fprintf(w.out, "%2d. %s %s\n", i+1,
			w.paint(colorCyan, r.Doc.Title),
			w.paint(colorDim, fmt.Sprintf("(score %.4f)", r.Score)))
		if desc := strings.TrimSpace(r.Doc.Description); desc != "" {
			_, _ = fmt.Fprintf(w.out, "    %s\n", truncate(desc, 120))
		}
		if r.Doc.Source != "" {
			_, _ = fmt.Fprintf(w.out, "    %s\n", w.paint(colorDim, r.Doc.Source))
		}
	}
	if len(resp.Results) == 0 {
		_, _ = fmt.Fprintln(w.out, "no matching documents")
	}
}

// ResponseJSON renders a search response as indented JSON.
func (w *Writer) ResponseJSON(resp *search.Response) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	_, _ = fmt.Fprintf(w.out, "✅ %s\n", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	_, _ = fmt.Fprintf(w.out, "⚠️  %s\n", w.paint(colorAmber, msg))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	_, _ = fmt.Fprintf(w.out, "❌ %s\n", w.paint(colorRed, msg))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Statusf prints a plain status line.
func (w *Writer) Statusf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}

// truncate shortens s to max characters, cutting on a rune boundary so
// multibyte text never renders as broken UTF-8.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// Package ui provides terminal output helpers for wallhop.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Symbols for different message types
const (
	SymbolSuccess = "✔"
	SymbolError   = "✖"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
	SymbolArrow   = "→"
)

// Output wraps an io.Writer with UI utilities.
type Output struct {
	w       io.Writer
	noColor bool
	quiet   bool
	verbose bool
}

// NewOutput creates a new Output.
func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

// DefaultOutput creates an Output for stdout.
func DefaultOutput() *Output {
	return NewOutput(os.Stdout)
}

// SetNoColor disables colors.
func (o *Output) SetNoColor(noColor bool) {
	o.noColor = noColor
}

// SetQuiet enables quiet mode (only errors).
func (o *Output) SetQuiet(quiet bool) {
	o.quiet = quiet
}

// SetVerbose enables verbose mode.
func (o *Output) SetVerbose(verbose bool) {
	o.verbose = verbose
}


// paint renders text with attrs unless colors are off. fatih/color also
// turns colors off on its own when stdout is not a terminal or NO_COLOR is set.
func (o *Output) paint(text string, attrs ...color.Attribute) string {
	if o.noColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

func (o *Output) line(symbol string, attr color.Attribute, format string, args []interface{}) {
	fmt.Fprintf(o.w, "%s %s\n", o.paint(symbol, attr), fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (o *Output) Success(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	o.line(SymbolSuccess, color.FgGreen, format, args)
}

// Error prints an error message. Errors are shown even in quiet mode.
func (o *Output) Error(format string, args ...interface{}) {
	o.line(SymbolError, color.FgRed, format, args)
}

// ErrorWithHint prints an error message with a hint.
func (o *Output) ErrorWithHint(err, hint string) {
	fmt.Fprintf(o.w, "%s %s\n", o.paint(SymbolError, color.FgRed), err)
	fmt.Fprintf(o.w, "  %s %s\n", o.paint("Hint:", color.FgHiBlack), hint)
}

// Warning prints a warning message.
func (o *Output) Warning(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	o.line(SymbolWarning, color.FgYellow, format, args)
}

// Info prints an info message.
func (o *Output) Info(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	o.line(SymbolInfo, color.FgBlue, format, args)
}

// Print prints a plain message.
func (o *Output) Print(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, format+"\n", args...)
}

// Debug prints a debug message (only in verbose mode).
func (o *Output) Debug(format string, args ...interface{}) {
	if !o.verbose {
		return
	}
	fmt.Fprintf(o.w, "%s %s\n", o.paint("[DEBUG]", color.FgHiBlack), fmt.Sprintf(format, args...))
}

// Field prints a labeled field.
func (o *Output) Field(label, value string) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "  %s %s\n", o.paint(label+":", color.FgHiBlack), value)
}

// FieldColored prints a labeled field with colored value.
func (o *Output) FieldColored(label, value string, attr color.Attribute) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.w, "  %s %s\n", o.paint(label+":", color.FgHiBlack), o.paint(value, attr))
}

// Table prints a simple table.
func (o *Output) Table(headers []string, rows [][]string) {
	if o.quiet {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header, sep strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&header, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("-", widths[i]) + "  ")
	}
	fmt.Fprintln(o.w, o.paint(strings.TrimSpace(header.String()), color.Bold))
	fmt.Fprintln(o.w, o.paint(strings.TrimSpace(sep.String()), color.FgHiBlack))

	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(o.w, strings.TrimSpace(b.String()))
	}
}

// Wallpaper describes an applied wallpaper for WallpaperInfo.
type Wallpaper struct {
	Title      string
	Scope      string
	Source     string
	ID         string
	Label      string
	Resolution string
	Path       string
	Size       int64
	SetAt      time.Time
}

// WallpaperInfo prints formatted wallpaper information.
func (o *Output) WallpaperInfo(w Wallpaper) {
	if w.Title == "" {
		w.Title = "Wallpaper set"
	}
	o.Success("%s", w.Title)
	o.Field("Scope", w.Scope)
	if w.Source != "" {
		o.Field("Source", w.Source)
	}
	if w.ID != "" {
		o.Field("ID", w.ID)
	}
	if w.Label != "" {
		o.Field("Label", w.Label)
	}
	if w.Resolution != "" {
		o.Field("Resolution", w.Resolution)
	}
	o.Field("File", w.Path)
	if w.Size > 0 {
		o.Field("Size", humanize.Bytes(uint64(w.Size)))
	}
	if !w.SetAt.IsZero() {
		o.Field("Set at", w.SetAt.Format("2006-01-02 15:04:05"))
	}
}

// Spinner represents a CLI spinner.
type Spinner struct {
	out      *Output
	message  string
	frames   []string
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	active   bool
}

// NewSpinner creates a new spinner.
func NewSpinner(out *Output, message string) *Spinner {
	return &Spinner{
		out:      out,
		message:  message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 80 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start starts the spinner. It stays silent in quiet mode and when output
// is not a terminal.
func (s *Spinner) Start() {
	if s.out.quiet || s.out.noColor || color.NoColor {
		return
	}
	s.active = true

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			frame := s.frames[i%len(s.frames)]
			fmt.Fprintf(s.out.w, "\r%s %s", s.out.paint(frame, color.FgCyan), s.message)

			select {
			case <-s.stop:
				fmt.Fprintf(s.out.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner.
func (s *Spinner) Stop() {
	if !s.active {
		return
	}
	s.active = false
	close(s.stop)
	<-s.done
}

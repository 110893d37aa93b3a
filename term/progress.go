// Package term renders crawl progress to a terminal.
package term

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// Progress bar defaults.
const (
	DefaultWidth          = 80
	DefaultRedrawInterval = 100 * time.Millisecond
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// StdoutWidth returns the width of the terminal attached to stdout.
func StdoutWidth() (int, error) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	return width, err
}

// ProgressBar draws a single-line progress bar that is redrawn in place.
// It is safe for concurrent use.
type ProgressBar struct {
	mu      sync.Mutex
	w       io.Writer
	total   int
	width   func() (int, error)
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a ProgressBar.
type Option func(*ProgressBar)

// WithWidth sets the function used to look up the terminal width.
// A nil fn keeps the default.
func WithWidth(fn func() (int, error)) Option {
	return func(b *ProgressBar) {
		if fn != nil {
			b.width = fn
		}
	}
}

// WithRedrawInterval sets the minimum time between redraws.
// Zero redraws on every update.
func WithRedrawInterval(d time.Duration) Option {
	return func(b *ProgressBar) {
		if d <= 0 {
			b.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		b.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLogger sets the logger that receives drawing failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *ProgressBar) {
		b.logger = logger
	}
}

// NewProgressBar creates a ProgressBar drawing to w, counting up to total.
func NewProgressBar(w io.Writer, total int, opts ...Option) *ProgressBar {
	b := &ProgressBar{
		w:       w,
		total:   total,
		width:   StdoutWidth,
		limiter: rate.NewLimiter(rate.Every(DefaultRedrawInterval), 1),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Update redraws the bar unless it was redrawn too recently.
func (b *ProgressBar) Update(hits int, suffix string) {
	if !b.limiter.Allow() {
		return
	}
	b.draw(hits, suffix)
}

// Finish draws the final state and moves to the next line.
func (b *ProgressBar) Finish(hits int) {
	b.draw(hits, "")

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, "\n"); err != nil {
		b.logger.Warn("draw progress", "err", err)
	}
}

func (b *ProgressBar) draw(hits int, suffix string) {
	line := b.Render(hits, suffix)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, line); err != nil {
		b.logger.Warn("draw progress", "err", err)
	}
}

// Render returns the bar line for hits, padded to the terminal width and
// ending in a carriage return. The bar takes a third of the width and
// suffix is cut to fit the rest.
func (b *ProgressBar) Render(hits int, suffix string) string {
	width := b.terminalWidth()
	barLen := width / 3

	var ratio float64
	if b.total > 0 {
		ratio = float64(hits) / float64(b.total)
	}
	filled := min(max(int(math.Round(float64(barLen)*ratio)), 0), barLen)
	percent := math.Round(1000*ratio) / 10

	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(strings.Repeat("#", filled))
	sb.WriteString(strings.Repeat(".", barLen-filled))
	fmt.Fprintf(&sb, "] %.1f%% %d/%d...", percent, hits, b.total)

	if room := width - sb.Len() - 1; room > 0 {
		sb.WriteString(truncate(suffix, room))
	}
	if pad := width - sb.Len() - 1; pad > 0 {
		sb.WriteString(strings.Repeat(" ", pad))
	}
	sb.WriteString("\r")
	return sb.String()
}

func (b *ProgressBar) terminalWidth() int {
	width, err := b.width()
	if err != nil {
		b.logger.Warn("terminal width", "err", err)
		return DefaultWidth
	}
	if width <= 0 {
		return DefaultWidth
	}
	return width
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

package view

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultClearAfter is how long a transient banner stays current. Display
// nicety only; no protocol timeout hangs off it.
const DefaultClearAfter = 3 * time.Second

// Level classifies a banner message.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "ok"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Banner holds the single transient status message. Every error path in the
// client ends here; there is no separate error log.
type Banner struct {
	mu         sync.Mutex
	out        io.Writer
	clearAfter time.Duration
	text       string
	level      Level
	timer      *time.Timer
}

// NewBanner creates a banner writing messages to out.
func NewBanner(out io.Writer) *Banner {
	return &Banner{out: out, clearAfter: DefaultClearAfter}
}

// SetClearAfter overrides the auto-clear interval. Used by tests.
func (b *Banner) SetClearAfter(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearAfter = d
}

// Show displays a message, replacing any current one and restarting the
// auto-clear timer.
func (b *Banner) Show(level Level, text string) {
	b.mu.Lock()
	b.text = text
	b.level = level
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.clearAfter, b.clear)
	out := b.out
	b.mu.Unlock()

	if out != nil {
		fmt.Fprintf(out, "[%s] %s\n", level, text)
	}
}

// Info shows an informational message.
func (b *Banner) Info(format string, args ...interface{}) {
	b.Show(LevelInfo, fmt.Sprintf(format, args...))
}

// Success shows a success message.
func (b *Banner) Success(format string, args ...interface{}) {
	b.Show(LevelSuccess, fmt.Sprintf(format, args...))
}

// Error shows an error message.
func (b *Banner) Error(format string, args ...interface{}) {
	b.Show(LevelError, fmt.Sprintf(format, args...))
}

// Current returns the message on display, empty once it has auto-cleared.
func (b *Banner) Current() (string, Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, b.level
}

func (b *Banner) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
	b.level = LevelInfo
}

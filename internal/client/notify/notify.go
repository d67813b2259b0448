// Package notify delivers transient, user-facing notices. Every operation
// boundary in the client converts its outcome into exactly one notice instead
// of letting errors escape.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notice struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notice)
}

func Info(n Notifier, msg string)    { n.Notify(Notice{Level: LevelInfo, Message: msg}) }
func Success(n Notifier, msg string) { n.Notify(Notice{Level: LevelSuccess, Message: msg}) }
func Error(n Notifier, msg string)   { n.Notify(Notice{Level: LevelError, Message: msg}) }

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Writer prints notices as styled lines. Safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (p *Writer) Notify(n Notice) {
	var line string
	switch n.Level {
	case LevelSuccess:
		line = successStyle.Render("✓ " + n.Message)
	case LevelError:
		line = errorStyle.Render("✗ " + n.Message)
	default:
		line = infoStyle.Render("• " + n.Message)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Messages returns the messages of notices at level l.
func (r *Recorder) Messages(l Level) []string {
	var out []string
	for _, n := range r.Notices() {
		if n.Level == l {
			out = append(out, n.Message)
		}
	}
	return out
}

// Package notify carries user-facing notifications (the toasts of the storefront UI)
// from the commerce core to whatever surface hosts it.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notifier receives user-facing messages
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// Nop drops every notification
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Info(string)    {}
func (Nop) Error(string)   {}

// Log writes notifications to a logger
type Log struct {
	log logrus.FieldLogger
}

func NewLog(log logrus.FieldLogger) *Log {
	return &Log{log: log.WithField("component", "notify")}
}

func (l *Log) Success(msg string) { l.log.WithField("notification", LevelSuccess).Info(msg) }
func (l *Log) Info(msg string)    { l.log.WithField("notification", LevelInfo).Info(msg) }
func (l *Log) Error(msg string)   { l.log.WithField("notification", LevelError).Warn(msg) }

// Writer prints one line per notification, prefixed with its level
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer { return &Writer{out: out} }

func (w *Writer) write(l Level, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "[%s] %s\n", l, msg)
}

func (w *Writer) Success(msg string) { w.write(LevelSuccess, msg) }
func (w *Writer) Info(msg string)    { w.write(LevelInfo, msg) }
func (w *Writer) Error(msg string)   { w.write(LevelError, msg) }

// Notification is one recorded message
type Notification struct {
	Level   Level
	Message string
}

// Recorder keeps notifications in memory, for tests and for surfaces that drain them
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) add(l Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: l, Message: msg})
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

// All returns a copy of everything recorded so far
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Drain returns and forgets everything recorded
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

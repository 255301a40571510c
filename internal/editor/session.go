package editor

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/interchange"
	"github.com/jonathan/resume-builder/internal/types"
)

// ApplyFunc receives the data and layout selector after a successful apply.
type ApplyFunc func(data types.ResumeData, layout string)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDelay sets the auto-apply delay.
func WithDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.delay = d }
}

// OnApply registers the callback run after each successful apply.
func OnApply(fn ApplyFunc) SessionOption {
	return func(s *Session) { s.onApply = fn }
}

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// Session is a JSON editor bound to resume data. Edits are parsed once typing
// pauses; valid text replaces the data wholesale, invalid text leaves the data
// alone and is reported by Err.
type Session struct {
	delay    time.Duration
	onApply  ApplyFunc
	log      *zap.Logger
	debounce *Debouncer

	mu      sync.Mutex
	data    types.ResumeData
	layout  string
	text    string
	err     error
	applied int
}

// NewSession creates a Session holding initial.
func NewSession(initial types.ResumeData, opts ...SessionOption) *Session {
	s := &Session{log: zap.NewNop(), data: initial.Clone()}
	for _, opt := range opts {
		opt(s)
	}
	s.debounce = NewDebouncer(s.delay)
	return s
}

// Edit records the editor text and restarts the apply delay.
func (s *Session) Edit(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	s.debounce.Trigger(func() { s.apply(text) })
}

// Flush applies a pending edit immediately.
func (s *Session) Flush() {
	s.debounce.Flush()
}

// Pending reports whether an edit is waiting to be applied.
func (s *Session) Pending() bool {
	return s.debounce.Pending()
}

// Close drops any pending edit.
func (s *Session) Close() {
	s.debounce.Cancel()
}

func (s *Session) apply(text string) {
	imported, err := interchange.Parse([]byte(text))

	s.mu.Lock()
	if err != nil {
		s.err = err
		s.mu.Unlock()
		s.log.Warn("editor text not applied", zap.Error(err))
		return
	}
	s.data = imported.Resume
	if imported.Layout != "" {
		s.layout = imported.Layout
	}
	s.err = nil
	s.applied++
	data, layout, fn := s.data.Clone(), s.layout, s.onApply
	s.mu.Unlock()

	s.log.Debug("editor text applied",
		zap.Int("work_entries", len(data.WorkExperience)),
		zap.String("layout", layout))
	if fn != nil {
		fn(data, layout)
	}
}

// Data returns a copy of the current data.
func (s *Session) Data() types.ResumeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Layout returns the layout selected by the last applied document, if any.
func (s *Session) Layout() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Err returns the parse error of the last apply attempt.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Applied returns how many edits have been applied.
func (s *Session) Applied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Text returns the last edited text, or the current data as indented JSON when
// nothing was edited yet.
func (s *Session) Text() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text != "" {
		return s.text, nil
	}
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

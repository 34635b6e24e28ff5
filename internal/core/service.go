package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/csvgrid/csvgrid/internal/csvparse"
	"github.com/csvgrid/csvgrid/internal/table"
	"github.com/google/uuid"
)

// Options control upload limits and session behavior.
type Options struct {
	MaxFileSize       int64
	AllowedExtensions []string
	DefaultDelimiter  rune
	FilterDebounce    time.Duration
	SessionTTL        time.Duration
}

// DefaultOptions returns the limits used when the caller passes a zero
// Options value.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:       50 * 1024 * 1024,
		AllowedExtensions: []string{".csv", ".txt", ".tsv"},
		DefaultDelimiter:  csvparse.DefaultDelimiter,
		FilterDebounce:    300 * time.Millisecond,
		SessionTTL:        time.Hour,
	}
}

// Service owns the grid sessions. Each session holds one immutable Dataset
// plus the mutable table state views are computed from. A new upload
// replaces a dataset wholesale and resets its state to defaults.
type Service struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*session
}

// session pairs a parsed dataset with its view state. The debouncer
// buffers rapid filter keystrokes; pending input is flushed before any
// view is computed, so reads always see the latest input no matter what
// the quiet interval is.
type session struct {
	mu       sync.Mutex
	id       string
	fileName string
	dataset  *csvparse.Dataset
	state    table.State
	lastSeen time.Time

	filterColumn string
	debounce     *table.Debouncer
}

// NewService creates a Service. Zero fields in opts fall back to defaults.
func NewService(opts Options) *Service {
	def := DefaultOptions()
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = def.MaxFileSize
	}
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = def.AllowedExtensions
	}
	if opts.DefaultDelimiter == 0 {
		opts.DefaultDelimiter = def.DefaultDelimiter
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = def.SessionTTL
	}

	return &Service{
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

// CreateSession validates, parses and installs an uploaded file, returning
// the new session ID and its initial view. On any error nothing is
// installed - there is never a half-loaded session.
func (s *Service) CreateSession(fileName string, data []byte, delimiter rune) (string, table.View, error) {
	if err := s.checkFile(fileName, int64(len(data))); err != nil {
		return "", table.View{}, err
	}
	if delimiter == 0 {
		delimiter = s.opts.DefaultDelimiter
	}

	text := string(sanitizeUTF8(data))

	ds, err := csvparse.Parse(text, delimiter)
	if err != nil {
		return "", table.View{}, err
	}
	if len(ds.Rows) == 0 {
		return "", table.View{}, ErrNoDataRows
	}

	sess := &session{
		id:       uuid.NewString(),
		fileName: fileName,
		dataset:  ds,
		state:    table.NewState(),
		lastSeen: time.Now(),
	}
	sess.debounce = table.NewDebouncer(s.opts.FilterDebounce, func(text string) {
		sess.mu.Lock()
		sess.state = sess.state.WithFilter(sess.filterColumn, text)
		sess.mu.Unlock()
	})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	slog.Info("session created",
		"session_id", sess.id,
		"file", fileName,
		"headers", len(ds.Headers),
		"rows", len(ds.Rows),
	)

	return sess.id, table.Compute(ds, sess.state), nil
}

// checkFile rejects files before any parsing work happens.
func (s *Service) checkFile(fileName string, size int64) error {
	if size == 0 {
		return csvparse.ErrEmptyInput
	}
	if size > s.opts.MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d byte limit", ErrFileTooLarge, size, s.opts.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range s.opts.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrBadExtension, ext)
}

// get looks up a live session and refreshes its idle timer.
func (s *Service) get(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.lastSeen = time.Now()
	sess.mu.Unlock()
	return sess, nil
}

// SetFilterText updates the text filter for one column. The input goes
// through the session debouncer; rapid calls for the same column coalesce.
func (s *Service) SetFilterText(id, column, text string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	switchColumn := sess.filterColumn != column
	sess.mu.Unlock()

	if switchColumn {
		// Commit whatever was pending for the previous column first.
		sess.debounce.Flush()
		sess.mu.Lock()
		sess.filterColumn = column
		sess.mu.Unlock()
	}

	sess.debounce.Put(text)
	return nil
}

// SetDateFilter sets the exact-match date filter; an empty value clears it.
func (s *Service) SetDateFilter(id, column, value string) error {
	return s.transition(id, func(st table.State) table.State {
		if strings.TrimSpace(value) == "" {
			return st.WithoutDateFilter()
		}
		return st.WithDateFilter(column, value)
	})
}

// ClickSort advances the three-state sort toggle for a column.
func (s *Service) ClickSort(id, column string) error {
	return s.transition(id, func(st table.State) table.State {
		return st.WithSortClick(column)
	})
}

// SetColumnVisible shows or hides a column.
func (s *Service) SetColumnVisible(id, column string, visible bool) error {
	return s.transition(id, func(st table.State) table.State {
		return st.WithColumnVisible(column, visible)
	})
}

// ShowAllColumns clears the hidden-column set.
func (s *Service) ShowAllColumns(id string) error {
	return s.transition(id, func(st table.State) table.State {
		return st.WithAllColumnsVisible()
	})
}

// SetPage requests a page; the computed view clamps it.
func (s *Service) SetPage(id string, page int) error {
	return s.transition(id, func(st table.State) table.State {
		return st.WithPage(page)
	})
}

// SetPageSize switches to one of the allowed page sizes.
func (s *Service) SetPageSize(id string, size int) error {
	return s.transition(id, func(st table.State) table.State {
		return st.WithPageSize(size)
	})
}

// transition applies a pure state transition under the session lock.
func (s *Service) transition(id string, fn func(table.State) table.State) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.state = fn(sess.state)
	sess.mu.Unlock()
	return nil
}

// View computes the currently visible slice for a session. Pending filter
// input is committed first so the view always reflects the latest input.
func (s *Service) View(id string) (table.View, error) {
	sess, err := s.get(id)
	if err != nil {
		return table.View{}, err
	}

	sess.debounce.Flush()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return table.Compute(sess.dataset, sess.state), nil
}

// Headers returns all headers of a session's dataset, visible or not,
// together with the current hidden set. The column menu needs both.
func (s *Service) Headers(id string) ([]string, map[string]bool, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	headers := make([]string, len(sess.dataset.Headers))
	copy(headers, sess.dataset.Headers)
	hidden := make(map[string]bool, len(sess.state.Hidden))
	for k, v := range sess.state.Hidden {
		hidden[k] = v
	}
	return headers, hidden, nil
}

// DateFilter returns the session's active date filter, if any.
func (s *Service) DateFilter(id string) (table.DateFilter, error) {
	sess, err := s.get(id)
	if err != nil {
		return table.DateFilter{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Date, nil
}

// FileName returns the name of the file a session was created from.
func (s *Service) FileName(id string) (string, error) {
	sess, err := s.get(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.fileName, nil
}

// Clear discards a session and its dataset.
func (s *Service) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// SessionCount reports how many sessions are live.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor evicts idle sessions until ctx is cancelled. Sweep cadence
// is a quarter of the TTL.
func (s *Service) StartJanitor(ctx context.Context) {
	interval := s.opts.SessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(time.Now())
		}
	}
}

func (s *Service) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen)
		sess.mu.Unlock()

		if idle > s.opts.SessionTTL {
			delete(s.sessions, id)
			slog.Debug("session expired", "session_id", id, "idle", idle)
		}
	}
}

// Package taskstore keeps the state of submitted render tasks in memory.
// Task records live only as long as the process; clients poll for status
// and terminal records are evicted oldest-first once the store is full.
package taskstore

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/lyricframe/api/internal/model"
)

// ErrNotFound is returned for task IDs the store has never seen or has
// already evicted.
var ErrNotFound = errors.New("task not found")

const (
	// maxLogLines bounds the per-task log; older lines are dropped first.
	maxLogLines = 100

	// defaultRetention caps the number of records kept before terminal
	// tasks start being evicted.
	defaultRetention = 500
)

// Store is a concurrency-safe in-memory task registry.
type Store struct {
	mu        sync.RWMutex
	tasks     map[string]*model.Task
	order     []string // insertion order, for eviction
	retention int
}

// New returns a Store with the default retention cap.
func New() *Store {
	return NewWithRetention(defaultRetention)
}

// NewWithRetention returns a Store that keeps at most n records.
func NewWithRetention(n int) *Store {
	if n < 1 {
		n = 1
	}
	return &Store{
		tasks:     make(map[string]*model.Task),
		retention: n,
	}
}

// Create registers a new queued task.
func (s *Store) Create(id string, kind model.JobKind) *model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &model.Task{
		ID:        id,
		Kind:      kind,
		Status:    model.JobStatusQueued,
		Message:   "queued",
		CreatedAt: time.Now(),
	}
	s.tasks[id] = t
	s.order = append(s.order, id)
	s.evictLocked()
	return snapshot(t)
}

// Start marks a task running. Starting a terminal task is a no-op.
func (s *Store) Start(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return nil
	}
	now := time.Now()
	t.Status = model.JobStatusRunning
	t.StartedAt = &now
	t.Message = "running"
	return nil
}

// SetProgress updates a task's progress percentage and message. Progress
// never moves backwards; a lower value only updates the message.
func (s *Store) SetProgress(id string, percent int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return nil
	}
	if percent > 100 {
		percent = 100
	}
	if percent > t.Progress {
		t.Progress = percent
	}
	if message != "" {
		t.Message = message
	}
	return nil
}

// AppendLog adds a line to the task's log, dropping the oldest line when
// the cap is reached.
func (s *Store) AppendLog(id, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.Logs = append(t.Logs, line)
	if len(t.Logs) > maxLogLines {
		t.Logs = t.Logs[len(t.Logs)-maxLogLines:]
	}
	return nil
}

// Complete marks the task successful and attaches its result document.
// Terminal states are final; completing a failed task is a no-op.
func (s *Store) Complete(id string, result any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	now := time.Now()
	t.Status = model.JobStatusCompleted
	t.Progress = 100
	t.Message = "completed"
	t.Result = raw
	t.CompletedAt = &now
	return nil
}

// Fail marks the task failed with the given reason.
func (s *Store) Fail(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return nil
	}
	now := time.Now()
	t.Status = model.JobStatusFailed
	t.Message = "failed"
	t.Error = &reason
	t.CompletedAt = &now
	return nil
}

// Get returns a copy of the task so callers can read it without holding
// the store's lock.
func (s *Store) Get(id string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(t), nil
}

// Len reports how many records the store currently holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// evictLocked removes the oldest terminal tasks until the store fits the
// retention cap. Live tasks are never evicted.
func (s *Store) evictLocked() {
	if len(s.tasks) <= s.retention {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		t := s.tasks[id]
		if len(s.tasks) > s.retention && t != nil && t.Status.Terminal() {
			delete(s.tasks, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

func snapshot(t *model.Task) *model.Task {
	cp := *t
	cp.Logs = append([]string(nil), t.Logs...)
	cp.Result = append(json.RawMessage(nil), t.Result...)
	if t.Error != nil {
		e := *t.Error
		cp.Error = &e
	}
	if t.StartedAt != nil {
		v := *t.StartedAt
		cp.StartedAt = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		cp.CompletedAt = &v
	}
	return &cp
}

package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps jobs in process memory. State does not survive a
// daemon restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (m *MemoryStore) Create(ctx context.Context) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return job.Clone(), nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

func (m *MemoryStore) update(id string, apply func(*Job) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if err := apply(job); err != nil {
		return err
	}
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) SetStatus(ctx context.Context, id string, status Status) error {
	return m.update(id, func(job *Job) error {
		if err := validateTransition(job.Status, status); err != nil {
			return err
		}
		job.Status = status
		return nil
	})
}

func (m *MemoryStore) SetProgress(ctx context.Context, id, progress string) error {
	return m.update(id, func(job *Job) error {
		job.Progress = progress
		return nil
	})
}

func (m *MemoryStore) Complete(ctx context.Context, id string, result *Result, warnings []string) error {
	return m.update(id, func(job *Job) error {
		if err := validateTransition(job.Status, StatusCompleted); err != nil {
			return err
		}
		job.Status = StatusCompleted
		job.Result = result
		job.Warnings = append([]string(nil), warnings...)
		job.Progress = ""
		return nil
	})
}

func (m *MemoryStore) Fail(ctx context.Context, id, message string) error {
	return m.update(id, func(job *Job) error {
		if err := validateTransition(job.Status, StatusFailed); err != nil {
			return err
		}
		job.Status = StatusFailed
		job.Error = message
		job.Progress = ""
		return nil
	})
}

func (m *MemoryStore) Close() error { return nil }

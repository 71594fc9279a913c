package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/toolshelf/internal/domain"
)

// fakeStore is an in-memory Store with switchable failures.
type fakeStore struct {
	mu     sync.Mutex
	docs   map[string]domain.Record
	order  []string
	nextID int

	createErr error
	listErr   error
	deleteErr error
	updateErr error

	// gate, when set, holds every Create until it is closed
	gate chan struct{}
	// deleteGate and updateGate do the same for Delete and Update
	deleteGate chan struct{}
	updateGate chan struct{}
	// afterList runs once, after ListAll has taken its snapshot and
	// before it returns
	afterList func()

	deleteCalls int
	updateCalls int

	creates int
	deleted []string
	updated []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]domain.Record)}
}

func (s *fakeStore) Create(ctx context.Context, rec domain.Record) (string, error) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return "", &domain.StoreError{Op: "create", Err: s.createErr}
	}
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	s.docs[id] = rec
	s.order = append(s.order, id)
	return id, nil
}

func (s *fakeStore) ListAll(ctx context.Context) ([]*domain.Tool, error) {
	s.mu.Lock()
	if s.listErr != nil {
		s.mu.Unlock()
		return nil, &domain.StoreError{Op: "list", Err: s.listErr}
	}
	out := make([]*domain.Tool, 0, len(s.order))
	for _, id := range s.order {
		if rec, ok := s.docs[id]; ok {
			out = append(out, domain.FromRecord(id, rec))
		}
	}
	hook := s.afterList
	s.afterList = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deleteCalls++
	gate := s.deleteGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return &domain.StoreError{Op: "delete", ID: id, Err: s.deleteErr}
	}
	delete(s.docs, id)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, tool *domain.Tool) error {
	s.mu.Lock()
	s.updateCalls++
	gate := s.updateGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, tool.ID)
	if s.updateErr != nil {
		return &domain.StoreError{Op: "update", ID: tool.ID, Err: s.updateErr}
	}
	if _, ok := s.docs[tool.ID]; !ok {
		return &domain.StoreError{Op: "update", ID: tool.ID, Err: domain.ErrNotFound}
	}
	s.docs[tool.ID] = tool.Record()
	return nil
}

func (s *fakeStore) seed(id string, rec domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = rec
	s.order = append(s.order, id)
}

func (s *fakeStore) doc(id string) (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[id]
	return rec, ok
}

func (s *fakeStore) deletedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *fakeStore) updatedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.updated...)
}

func (s *fakeStore) deleteCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteCalls
}

func (s *fakeStore) updateCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCalls
}

func (s *fakeStore) set(fn func(s *fakeStore)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

type fakeMirror struct {
	mu     sync.Mutex
	writes int
	last   []*domain.Tool
}

func (m *fakeMirror) Write(tools []*domain.Tool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.last = tools
	return nil
}

func (m *fakeMirror) snapshot() (int, []*domain.Tool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes, m.last
}

package roster

import (
	"context"
	"sync"
)

// Store keeps the active result dataset. Every import is a wholesale
// replacement; there is no merge or update-by-ID.
type Store interface {
	ReplaceAll(ctx context.Context, students []Student) error
	Lookup(ctx context.Context, nationalID string, level GradeLevel) (Student, bool, error)
	Get(ctx context.Context, id string) (Student, bool, error)
	All(ctx context.Context) ([]Student, error)
	Count(ctx context.Context) (int, error)
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	students []Student
	byLookup map[string]int // nationalID|level -> index of first match
	byID     map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reindex(nil)
	return s
}

func (s *MemoryStore) reindex(students []Student) {
	s.students = students
	s.byLookup = make(map[string]int, len(students))
	s.byID = make(map[string]int, len(students))
	for i, st := range students {
		key := lookupKey(st.NationalID, st.GradeLevel)
		if _, exists := s.byLookup[key]; !exists {
			s.byLookup[key] = i
		}
		s.byID[st.ID] = i
	}
}

func (s *MemoryStore) ReplaceAll(_ context.Context, students []Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reindex(append([]Student(nil), students...))
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, nationalID string, level GradeLevel) (Student, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byLookup[lookupKey(nationalID, level)]
	if !ok {
		return Student{}, false, nil
	}
	return s.students[i], true, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Student, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Student{}, false, nil
	}
	return s.students[i], true, nil
}

func (s *MemoryStore) All(_ context.Context) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Student(nil), s.students...), nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students), nil
}

func lookupKey(nationalID string, level GradeLevel) string {
	return nationalID + "|" + string(level)
}

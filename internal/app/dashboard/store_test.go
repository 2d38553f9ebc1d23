package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// memStore is an in-memory Store that records every call
type memStore struct {
	mu       sync.Mutex
	students map[string]models.Student
	nextID   int
	calls    []string

	listErr  error
	writeErr error
}

func newMemStore(seed ...models.StudentFields) *memStore {
	s := &memStore{students: make(map[string]models.Student)}
	for _, f := range seed {
		s.insert(f)
	}
	s.calls = nil
	return s
}

func (s *memStore) insert(f models.StudentFields) models.Student {
	s.nextID++
	st := models.Student{ID: fmt.Sprintf("00000000-0000-4000-8000-%012d", s.nextID), StudentFields: f}
	s.students[st.ID] = st
	return st
}

func (s *memStore) List(ctx context.Context) ([]*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "list")
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.Student, 0, len(s.students))
	for _, st := range s.students {
		c := st
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) Create(ctx context.Context, fields models.StudentFields) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "create")
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	st := s.insert(fields)
	return &st, nil
}

func (s *memStore) Update(ctx context.Context, id string, fields models.StudentFields) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "update:"+id)
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	st, ok := s.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	st.StudentFields = fields
	s.students[id] = st
	return &st, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete:"+id)
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(s.students, id)
	return nil
}

func (s *memStore) callCount(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func fields(name string) models.StudentFields {
	return models.StudentFields{
		FullName:       name,
		Email:          "someone@x.com",
		NationalID:     "N-" + name,
		BirthDate:      "1999-09-09",
		EnrollmentDate: "2023-02-01",
		Active:         true,
	}
}

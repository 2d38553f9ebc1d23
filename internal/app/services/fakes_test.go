package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[string]*models.Student
	err      error
	calls    []string
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*models.Student)}
}

func (r *fakeStudentRepo) record(op string) error {
	r.calls = append(r.calls, op)
	return r.err
}

func (r *fakeStudentRepo) List(ctx context.Context) ([]*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("list"); err != nil {
		return nil, err
	}
	out := make([]*models.Student, 0, len(r.students))
	for _, s := range r.students {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *fakeStudentRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("get"); err != nil {
		return nil, err
	}
	s, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	c := *s
	return &c, nil
}

func (r *fakeStudentRepo) Create(ctx context.Context, fields models.StudentFields) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("create"); err != nil {
		return nil, err
	}
	s := &models.Student{ID: uuid.NewString(), StudentFields: fields, CreatedAt: time.Now()}
	r.students[s.ID] = s
	c := *s
	return &c, nil
}

func (r *fakeStudentRepo) Update(ctx context.Context, id string, fields models.StudentFields) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("update"); err != nil {
		return nil, err
	}
	s, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	s.StudentFields = fields
	c := *s
	return &c, nil
}

func (r *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("delete"); err != nil {
		return err
	}
	if _, ok := r.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(r.students, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	r.nextID++
	u := &models.User{ID: r.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.users[email] = u
	return u, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	users    *fakeUserRepo
}

func newFakeSessionRepo(users *fakeUserRepo) *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session), users: users}
}

func (r *fakeSessionRepo) Create(ctx context.Context, userID int64, expiresAt time.Time) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &models.Session{ID: uuid.NewString(), UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	r.sessions[s.ID] = s
	c := *s
	return &c, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	c := *s
	if u, err := r.users.GetByID(ctx, s.UserID); err == nil {
		c.Email = u.Email
	}
	return &c, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	s.Revoked = true
	return nil
}

func (r *fakeSessionRepo) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.Revoked || s.ExpiresAt.Before(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository *StudentRepository
	UserRepository    *UserRepository
	SessionRepository *SessionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		StudentRepository: NewStudentRepository(db),
		UserRepository:    NewUserRepository(db),
		SessionRepository: NewSessionRepository(db),
	}
}

// Package dashboard holds the state of the student management screen: the
// record list and the create/edit form. It talks to the store and the
// notification surface only through interfaces, so controllers build one per
// request and tests drive it against an in-memory store.
package dashboard

import (
	"context"
	"errors"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/dberrors"
)

// Store is the student table as the dashboard sees it
type Store interface {
	List(ctx context.Context) ([]*models.Student, error)
	Create(ctx context.Context, fields models.StudentFields) (*models.Student, error)
	Update(ctx context.Context, id string, fields models.StudentFields) (*models.Student, error)
	Delete(ctx context.Context, id string) error
}

// Notification titles
const (
	TitleLoadFailed   = "Error loading students"
	TitleCreated      = "Student created"
	TitleCreateFailed = "Error creating student"
	TitleUpdated      = "Student updated"
	TitleUpdateFailed = "Error updating student"
	TitleDeleted      = "Student deleted"
	TitleDeleteFailed = "Error deleting student"
)

// errorMessage is the text shown for a failed store call. Database errors
// are surfaced with the server's own message.
func errorMessage(err error) string {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return dberrors.Message(err)
}

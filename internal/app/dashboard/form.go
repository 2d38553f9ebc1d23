package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/helpers"
	"github.com/yigit/studentdesk/internal/pkg/notify"
	"github.com/yigit/studentdesk/internal/pkg/validation"
)

// ErrFormClosed is returned when submitting a form that is not open
var ErrFormClosed = errors.New("form is not open")

// Mode is the form's state: CreateMode or EditMode
type Mode interface {
	isMode()
}

// CreateMode binds no record; submitting inserts a new one
type CreateMode struct{}

// EditMode binds the record with the given id; submitting updates it
type EditMode struct {
	ID string
}

func (CreateMode) isMode() {}
func (EditMode) isMode() {}

// RefreshFunc is called after a successful write
type RefreshFunc func(ctx context.Context) error

// Form is the create/edit dialog for one student
type Form struct {
	store    Store
	notifier notify.Notifier
	clock    helpers.Clock
	refresh  RefreshFunc

	mu        sync.Mutex
	open      bool
	mode      Mode
	values    models.StudentFields
	fieldErrs map[string]string
}

// NewForm creates a closed form. refresh may be nil.
func NewForm(store Store, notifier notify.Notifier, clock helpers.Clock, refresh RefreshFunc) *Form {
	if notifier == nil {
		notifier = notify.Discard
	}
	if clock == nil {
		clock = time.Now
	}
	return &Form{
		store:    store,
		notifier: notifier,
		clock:    clock,
		refresh:  refresh,
		mode:     CreateMode{},
	}
}

// OpenCreate opens a blank form: empty fields, enrolled today, active.
func (f *Form) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	f.mode = CreateMode{}
	f.values = models.NewStudentFields(f.clock())
	f.fieldErrs = nil
}

// OpenEdit opens the form bound to student with every field copied from it.
func (f *Form) OpenEdit(student *models.Student) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	f.mode = EditMode{ID: student.ID}
	f.values = student.StudentFields
	f.fieldErrs = nil
}

// SetValues replaces the entered values
func (f *Form) SetValues(values models.StudentFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
}

// Cancel closes the form without writing
func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.fieldErrs = nil
}

// IsOpen reports whether the form is shown
func (f *Form) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Mode returns the current mode
func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Values returns the entered values
func (f *Form) Values() models.StudentFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// FieldErrors returns the per-field messages of the last failed submit
func (f *Form) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs
}

// Title is the dialog heading
func (f *Form) Title() string {
	if _, ok := f.Mode().(EditMode); ok {
		return "Edit student"
	}
	return "New student"
}

// SubmitLabel is the caption of the submit button
func (f *Form) SubmitLabel() string {
	if _, ok := f.Mode().(EditMode); ok {
		return "Save"
	}
	return "Create"
}

// Submit validates the entered values and writes them. On any failure the
// form stays open with the values intact. On success the refresh callback
// runs and the form closes.
func (f *Form) Submit(ctx context.Context) (*models.Student, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return nil, ErrFormClosed
	}
	mode := f.mode
	values := f.values.Normalized()
	f.mu.Unlock()

	failTitle, okTitle := TitleCreateFailed, TitleCreated
	if _, ok := mode.(EditMode); ok {
		failTitle, okTitle = TitleUpdateFailed, TitleUpdated
	}

	if errs := validation.Default().Struct(values); errs != nil {
		f.setErrors(errs)
		f.notifier.Notify(notify.Failure(failTitle, validation.RequiredFieldsMessage))
		return nil, apperrors.NewValidationError(validation.RequiredFieldsMessage, errs)
	}

	var (
		student *models.Student
		err     error
	)
	switch m := mode.(type) {
	case EditMode:
		student, err = f.store.Update(ctx, m.ID, values)
	default:
		student, err = f.store.Create(ctx, values)
	}
	if err != nil {
		f.setErrors(apperrors.FieldErrors(err))
		f.notifier.Notify(notify.Failure(failTitle, errorMessage(err)))
		return nil, err
	}

	f.notifier.Notify(notify.Success(okTitle, student.FullName))
	if f.refresh != nil {
		// A failed reload reports itself; the write already succeeded.
		_ = f.refresh(ctx)
	}

	f.mu.Lock()
	f.open = false
	f.fieldErrs = nil
	f.mu.Unlock()
	return student, nil
}

func (f *Form) setErrors(errs map[string]string) {
	f.mu.Lock()
	f.fieldErrs = errs
	f.mu.Unlock()
}

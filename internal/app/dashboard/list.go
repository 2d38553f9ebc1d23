package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/notify"
)

// EmptyPlaceholder replaces the table when there is nothing to show
const EmptyPlaceholder = "No students registered yet"

// Row is one rendered line of the student table
type Row struct {
	ID         string
	FullName   string
	Email      string
	NationalID string
	Program    string
	Cohort     string
	Status     string
	Active     bool
}

// Table is the rendered list. When Empty is set, Placeholder is shown
// instead of rows.
type Table struct {
	Rows        []Row
	Empty       bool
	Loading     bool
	Placeholder string
}

// DeletePrompt asks the user to confirm removing one student
type DeletePrompt struct {
	Student *models.Student
	Message string
}

// Decision is the user's answer to a DeletePrompt
type Decision int

const (
	Cancel Decision = iota
	Confirm
)

// ListView keeps the last successfully loaded list of students
type ListView struct {
	store    Store
	notifier notify.Notifier

	mu       sync.Mutex
	students []*models.Student
	loading  bool
}

// NewListView creates an empty list view
func NewListView(store Store, notifier notify.Notifier) *ListView {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &ListView{
		store:    store,
		notifier: notifier,
	}
}

// Load fetches every student ordered by name. On failure the previous list
// stays in place and an error notification is raised.
func (v *ListView) Load(ctx context.Context) error {
	v.setLoading(true)
	defer v.setLoading(false)

	students, err := v.store.List(ctx)
	if err != nil {
		v.notifier.Notify(notify.Failure(TitleLoadFailed, errorMessage(err)))
		return err
	}

	v.mu.Lock()
	v.students = students
	v.mu.Unlock()
	return nil
}

func (v *ListView) setLoading(loading bool) {
	v.mu.Lock()
	v.loading = loading
	v.mu.Unlock()
}

// Loading reports whether a load is in flight
func (v *ListView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Students returns the currently displayed list
func (v *ListView) Students() []*models.Student {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*models.Student, len(v.students))
	copy(out, v.students)
	return out
}

// Find returns the displayed student with the given id
func (v *ListView) Find(id string) (*models.Student, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.students {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Render builds the table for the current list
func (v *ListView) Render() Table {
	v.mu.Lock()
	defer v.mu.Unlock()

	table := Table{Loading: v.loading}
	if len(v.students) == 0 {
		table.Empty = !v.loading
		if table.Empty {
			table.Placeholder = EmptyPlaceholder
		}
		return table
	}

	table.Rows = make([]Row, 0, len(v.students))
	for _, s := range v.students {
		table.Rows = append(table.Rows, Row{
			ID:         s.ID,
			FullName:   s.FullName,
			Email:      s.Email,
			NationalID: s.NationalID,
			Program:    orDash(s.Program),
			Cohort:     orDash(s.Cohort),
			Status:     s.StatusLabel(),
			Active:     s.Active,
		})
	}
	return table
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Edit opens form in edit mode for the selected student
func (v *ListView) Edit(form *Form, student *models.Student) {
	form.OpenEdit(student)
}

// PromptDelete builds the confirmation prompt naming the student
func (v *ListView) PromptDelete(student *models.Student) DeletePrompt {
	return DeletePrompt{
		Student: student,
		Message: fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", student.FullName),
	}
}

// ResolveDelete acts on the user's answer. A cancelled prompt issues no
// request. A failed delete leaves the list as it was; a successful one
// reloads it.
func (v *ListView) ResolveDelete(ctx context.Context, prompt DeletePrompt, decision Decision) error {
	if decision != Confirm || prompt.Student == nil {
		return nil
	}

	if err := v.store.Delete(ctx, prompt.Student.ID); err != nil {
		v.notifier.Notify(notify.Failure(TitleDeleteFailed, errorMessage(err)))
		return err
	}

	v.notifier.Notify(notify.Success(TitleDeleted, prompt.Student.FullName+" was removed"))
	return v.Load(ctx)
}

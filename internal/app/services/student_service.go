package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/repositories"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/logger"
	"github.com/yigit/studentdesk/internal/pkg/validation"
)

// StudentService handles student record operations
type StudentService struct {
	studentRepo repositories.IStudentRepository
	validator   *validation.Validator
}

// NewStudentService creates a new student service instance
func NewStudentService(studentRepo repositories.IStudentRepository) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		validator:   validation.Default(),
	}
}

// ValidateFields normalizes a field set and checks the required fields.
// It returns the normalized fields, or a validation error carrying one
// message per failing field.
func (s *StudentService) ValidateFields(fields models.StudentFields) (models.StudentFields, error) {
	fields = fields.Normalized()
	if errs := s.validator.Struct(fields); errs != nil {
		return fields, apperrors.NewValidationError(validation.RequiredFieldsMessage, errs)
	}
	return fields, nil
}

// checkID rejects identifiers that cannot name a stored record
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// List returns every student ordered by full name
func (s *StudentService) List(ctx context.Context) ([]*models.Student, error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrReadFailed, err)
	}
	return students, nil
}

// Get retrieves a single student
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrReadFailed, err)
	}
	return student, nil
}

// Create validates and inserts a new student
func (s *StudentService) Create(ctx context.Context, fields models.StudentFields) (*models.Student, error) {
	fields, err := s.ValidateFields(fields)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.Create(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWriteFailed, err)
	}

	logger.Info().Str("studentID", student.ID).Msg("Student created")
	return student, nil
}

// Update validates and replaces every field of an existing student
func (s *StudentService) Update(ctx context.Context, id string, fields models.StudentFields) (*models.Student, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	fields, err := s.ValidateFields(fields)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWriteFailed, err)
	}

	logger.Info().Str("studentID", id).Msg("Student updated")
	return student, nil
}

// Delete removes a student by ID
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	if err := s.studentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", apperrors.ErrWriteFailed, err)
	}

	logger.Info().Str("studentID", id).Msg("Student deleted")
	return nil
}

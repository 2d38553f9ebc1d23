package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/dberrors"
	"github.com/yigit/studentdesk/internal/pkg/helpers"
	"github.com/yigit/studentdesk/internal/pkg/logger"
)

const studentsTable = "students"

// Dates travel as YYYY-MM-DD text in both directions.
var studentColumns = []string{
	"id::text",
	"full_name",
	"email",
	"national_id",
	"to_char(birth_date, 'YYYY-MM-DD')",
	"phone",
	"address",
	"city",
	"state",
	"postal_code",
	"program",
	"cohort",
	"to_char(enrollment_date, 'YYYY-MM-DD')",
	"active",
	"created_at",
	"updated_at",
}

// IStudentRepository defines the operations on the students table
type IStudentRepository interface {
	List(ctx context.Context) ([]*models.Student, error)
	GetByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, fields models.StudentFields) (*models.Student, error)
	Update(ctx context.Context, id string, fields models.StudentFields) (*models.Student, error)
	Delete(ctx context.Context, id string) error
}

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StudentRepository) listQuery() (string, []interface{}, error) {
	return r.sb.Select(studentColumns...).
		From(studentsTable).
		OrderBy("full_name ASC", "id ASC").
		ToSql()
}

func (r *StudentRepository) getQuery(id string) (string, []interface{}, error) {
	return r.sb.Select(studentColumns...).
		From(studentsTable).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
}

// fieldValues maps a field set onto column values. Optional text columns
// are written as NULL when empty.
func fieldValues(f models.StudentFields) map[string]interface{} {
	return map[string]interface{}{
		"full_name":       f.FullName,
		"email":           f.Email,
		"national_id":     f.NationalID,
		"birth_date":      squirrel.Expr("to_date(?, 'YYYY-MM-DD')", string(f.BirthDate)),
		"phone":           helpers.GetContentNullString(f.Phone),
		"address":         helpers.GetContentNullString(f.Address),
		"city":            helpers.GetContentNullString(f.City),
		"state":           helpers.GetContentNullString(f.State),
		"postal_code":     helpers.GetContentNullString(f.PostalCode),
		"program":         helpers.GetContentNullString(f.Program),
		"cohort":          helpers.GetContentNullString(f.Cohort),
		"enrollment_date": squirrel.Expr("to_date(?, 'YYYY-MM-DD')", string(f.EnrollmentDate)),
		"active":          f.Active,
	}
}

func (r *StudentRepository) insertQuery(f models.StudentFields) (string, []interface{}, error) {
	return r.sb.Insert(studentsTable).
		SetMap(fieldValues(f)).
		Suffix("RETURNING " + strings.Join(studentColumns, ", ")).
		ToSql()
}

func (r *StudentRepository) updateQuery(id string, f models.StudentFields) (string, []interface{}, error) {
	return r.sb.Update(studentsTable).
		SetMap(fieldValues(f)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(studentColumns, ", ")).
		ToSql()
}

func (r *StudentRepository) deleteQuery(id string) (string, []interface{}, error) {
	return r.sb.Delete(studentsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	var birthDate, enrollmentDate string
	var phone, address, city, state, postal, program, cohort *string

	err := row.Scan(
		&s.ID,
		&s.FullName,
		&s.Email,
		&s.NationalID,
		&birthDate,
		&phone,
		&address,
		&city,
		&state,
		&postal,
		&program,
		&cohort,
		&enrollmentDate,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.BirthDate = models.Date(birthDate)
	s.EnrollmentDate = models.Date(enrollmentDate)
	s.Phone = helpers.StringValue(phone)
	s.Address = helpers.StringValue(address)
	s.City = helpers.StringValue(city)
	s.State = helpers.StringValue(state)
	s.PostalCode = helpers.StringValue(postal)
	s.Program = helpers.StringValue(program)
	s.Cohort = helpers.StringValue(cohort)
	return &s, nil
}

// List returns every student ordered by full name
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	query, args, err := r.listQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, err
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query, args, err := r.getQuery(id)
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidInput(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// Create inserts a student; the database assigns the identifier.
func (r *StudentRepository) Create(ctx context.Context, fields models.StudentFields) (*models.Student, error) {
	query, args, err := r.insertQuery(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build create student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		logger.Error().Err(err).Str("email", fields.Email).Msg("Error executing create student query")
		return nil, err
	}
	return student, nil
}

// Update replaces every field of the student with the given id
func (r *StudentRepository) Update(ctx context.Context, id string, fields models.StudentFields) (*models.Student, error) {
	query, args, err := r.updateQuery(id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build update student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidInput(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentID", id).Msg("Error executing update student query")
		return nil, err
	}
	return student, nil
}

// Delete deletes a student by ID
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.deleteQuery(id)
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if dberrors.IsInvalidInput(err) {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentID", id).Msg("Error executing delete student query")
		return err
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

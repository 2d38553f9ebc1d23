package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/dashboard"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/middleware"
)

// StudentService is what the student handlers need from the service layer
type StudentService interface {
	dashboard.Store
	Get(ctx context.Context, id string) (*models.Student, error)
}

// StudentController serves the student records JSON API
type StudentController struct {
	studentService StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// ListStudents returns every student ordered by full name
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 502 {object} dto.ErrorResponse "Store error"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	students, err := c.studentService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.StudentListResponse{
		Students: students,
		Total:    len(students),
	}, ""))
}

// GetStudent returns one student
// @Summary Get student by ID
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student, ""))
}

// CreateStudent inserts a student. An omitted active flag means active.
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student fields"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 502 {object} dto.ErrorResponse "Store error"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), req.ToFields())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(student, "Student created"))
}

// UpdateStudent replaces every field of a student
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Param request body dto.StudentRequest true "Student fields"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), ctx.Param("id"), req.ToFields())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student, "Student updated"))
}

// DeleteStudent removes a student
// @Summary Delete student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	if err := c.studentService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Student deleted"))
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/dashboard"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/helpers"
	"github.com/yigit/studentdesk/internal/pkg/notify"
)

const (
	studentsTemplate   = "students.html"
	invalidFormMessage = "The form could not be read"
)

// DashboardController serves the server-rendered student pages
type DashboardController struct {
	studentService StudentService
	clock          helpers.Clock
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(studentService StudentService, clock helpers.Clock) *DashboardController {
	return &DashboardController{
		studentService: studentService,
		clock:          clock,
	}
}

// screen is the per-request dashboard state
type screen struct {
	queue *notify.Queue
	list  *dashboard.ListView
	form  *dashboard.Form
}

func (c *DashboardController) newScreen() *screen {
	queue := notify.NewQueue()
	list := dashboard.NewListView(c.studentService, queue)
	return &screen{
		queue: queue,
		list:  list,
		form:  dashboard.NewForm(c.studentService, queue, c.clock, list.Load),
	}
}

func (c *DashboardController) render(ctx *gin.Context, status int, s *screen, prompt *dashboard.DeletePrompt) {
	page := newPage(ctx, "Students")
	page.Notifications = s.queue.Items()
	page.Table = s.list.Render()
	page.Form = newFormView(s.form)
	page.Prompt = prompt
	ctx.HTML(status, studentsTemplate, page)
}

// lookup loads the student named in the path. When it cannot, the list is
// rendered with an error notification and nil is returned.
func (c *DashboardController) lookup(ctx *gin.Context, s *screen, failTitle string) *models.Student {
	student, err := c.studentService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err == nil {
		return student
	}

	status := http.StatusBadGateway
	message := err.Error()
	if errors.Is(err, apperrors.ErrStudentNotFound) {
		status = http.StatusNotFound
		message = "Student not found"
	}
	s.queue.Notify(notify.Failure(failTitle, message))
	_ = s.list.Load(ctx.Request.Context())
	c.render(ctx, status, s, nil)
	return nil
}

// Index renders the student list
func (c *DashboardController) Index(ctx *gin.Context) {
	s := c.newScreen()
	_ = s.list.Load(ctx.Request.Context())
	c.render(ctx, http.StatusOK, s, nil)
}

// New renders the list with an empty create form
func (c *DashboardController) New(ctx *gin.Context) {
	s := c.newScreen()
	_ = s.list.Load(ctx.Request.Context())
	s.form.OpenCreate()
	c.render(ctx, http.StatusOK, s, nil)
}

// Create submits the create form
func (c *DashboardController) Create(ctx *gin.Context) {
	s := c.newScreen()

	var in dto.StudentForm
	bindErr := ctx.ShouldBind(&in)

	s.form.OpenCreate()
	s.form.SetValues(in.ToFields())
	if bindErr != nil {
		c.rejectForm(ctx, s, dashboard.TitleCreateFailed, bindErr)
		return
	}
	c.submit(ctx, s)
}

// Edit renders the list with the form bound to one student
func (c *DashboardController) Edit(ctx *gin.Context) {
	s := c.newScreen()
	student := c.lookup(ctx, s, dashboard.TitleUpdateFailed)
	if student == nil {
		return
	}

	_ = s.list.Load(ctx.Request.Context())
	s.list.Edit(s.form, student)
	c.render(ctx, http.StatusOK, s, nil)
}

// Update submits the edit form
func (c *DashboardController) Update(ctx *gin.Context) {
	s := c.newScreen()
	student := c.lookup(ctx, s, dashboard.TitleUpdateFailed)
	if student == nil {
		return
	}

	var in dto.StudentForm
	bindErr := ctx.ShouldBind(&in)

	s.form.OpenEdit(student)
	s.form.SetValues(in.ToFields())
	if bindErr != nil {
		c.rejectForm(ctx, s, dashboard.TitleUpdateFailed, bindErr)
		return
	}
	c.submit(ctx, s)
}

// rejectForm answers a submission that could not be parsed. The form stays
// open with whatever was bound and nothing is written.
func (c *DashboardController) rejectForm(ctx *gin.Context, s *screen, title string, err error) {
	s.queue.Notify(notify.Failure(title, invalidFormMessage+": "+err.Error()))
	_ = s.list.Load(ctx.Request.Context())
	c.render(ctx, http.StatusUnprocessableEntity, s, nil)
}

// submit writes the open form. On success the form's refresh callback has
// already reloaded the list; on failure the list is loaded so the page can
// show it behind the still-open form.
func (c *DashboardController) submit(ctx *gin.Context, s *screen) {
	if _, err := s.form.Submit(ctx.Request.Context()); err != nil {
		_ = s.list.Load(ctx.Request.Context())
		c.render(ctx, http.StatusUnprocessableEntity, s, nil)
		return
	}
	c.render(ctx, http.StatusOK, s, nil)
}

// ConfirmDelete renders the confirmation prompt for one student
func (c *DashboardController) ConfirmDelete(ctx *gin.Context) {
	s := c.newScreen()
	student := c.lookup(ctx, s, dashboard.TitleDeleteFailed)
	if student == nil {
		return
	}

	_ = s.list.Load(ctx.Request.Context())
	prompt := s.list.PromptDelete(student)
	c.render(ctx, http.StatusOK, s, &prompt)
}

// Delete resolves the prompt. Only confirm=yes deletes.
func (c *DashboardController) Delete(ctx *gin.Context) {
	s := c.newScreen()
	student := c.lookup(ctx, s, dashboard.TitleDeleteFailed)
	if student == nil {
		return
	}

	decision := dashboard.Cancel
	if ctx.PostForm("confirm") == "yes" {
		decision = dashboard.Confirm
	}

	_ = s.list.Load(ctx.Request.Context())
	status := http.StatusOK
	if err := s.list.ResolveDelete(ctx.Request.Context(), s.list.PromptDelete(student), decision); err != nil {
		status = http.StatusUnprocessableEntity
	}
	c.render(ctx, status, s, nil)
}

package controllers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/studentdesk/internal/app/controllers"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/app/routes"
	"github.com/yigit/studentdesk/internal/app/views"
	"github.com/yigit/studentdesk/internal/middleware"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

const cookieName = "sd_session"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStudents struct {
	mu       sync.Mutex
	students map[string]models.Student
	next     int
	deletes  int
	writeErr error
}

func newFakeStudents(names ...string) *fakeStudents {
	f := &fakeStudents{students: make(map[string]models.Student)}
	for _, n := range names {
		f.add(models.StudentFields{
			FullName:       n,
			Email:          "x@x.com",
			NationalID:     "ID-" + n,
			BirthDate:      "2000-01-01",
			EnrollmentDate: "2024-01-01",
			Active:         true,
		})
	}
	return f
}

func (f *fakeStudents) add(fields models.StudentFields) models.Student {
	f.next++
	s := models.Student{ID: fmt.Sprintf("00000000-0000-4000-8000-%012d", f.next), StudentFields: fields}
	f.students[s.ID] = s
	return s
}

func (f *fakeStudents) List(ctx context.Context) ([]*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Student, 0, len(f.students))
	for _, s := range f.students {
		c := s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (f *fakeStudents) Get(ctx context.Context, id string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return &s, nil
}

func (f *fakeStudents) Create(ctx context.Context, fields models.StudentFields) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	s := f.add(fields)
	return &s, nil
}

func (f *fakeStudents) Update(ctx context.Context, id string, fields models.StudentFields) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	s.StudentFields = fields
	f.students[id] = s
	return &s, nil
}

func (f *fakeStudents) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudents) idOf(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.students {
		if s.FullName == name {
			return id
		}
	}
	return ""
}

type fakeAuth struct {
	signedOut bool
}

func (a *fakeAuth) token() *dto.TokenResponse {
	return &dto.TokenResponse{AccessToken: "good", TokenType: "Bearer", ExpiresIn: 3600, ExpiresAt: time.Now().Add(time.Hour)}
}

func (a *fakeAuth) Register(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	if email == "taken@x.com" {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	return a.token(), nil
}

func (a *fakeAuth) SignIn(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	if email != "admin@x.com" || password != "password1" {
		return nil, apperrors.ErrInvalidCredentials
	}
	return a.token(), nil
}

func (a *fakeAuth) SignOut(ctx context.Context, token string) error {
	a.signedOut = true
	return nil
}

func (a *fakeAuth) CurrentSession(ctx context.Context, token string) (*models.Session, error) {
	if token != "good" || a.signedOut {
		return nil, apperrors.ErrSessionNotFound
	}
	return &models.Session{ID: "s1", UserID: 1, Email: "admin@x.com", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type harness struct {
	router   *gin.Engine
	students *fakeStudents
	auth     *fakeAuth
}

func newHarness(t *testing.T, names ...string) *harness {
	t.Helper()
	tmpl, err := views.Templates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	h := &harness{students: newFakeStudents(names...), auth: &fakeAuth{}}
	gate := middleware.NewSessionGate(h.auth, cookieName)
	clock := func() time.Time { return time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC) }

	h.router = gin.New()
	h.router.SetHTMLTemplate(tmpl)
	routes.SetupRouter(
		h.router,
		controllers.NewAuthController(h.auth, gate, controllers.CookieConfig{Name: cookieName}, zerolog.Nop()),
		controllers.NewDashboardController(h.students, clock),
		controllers.NewStudentController(h.students),
		gate,
		nil,
	)
	return h
}

func (h *harness) page(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "good"})
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) api(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func studentForm(name string) url.Values {
	return url.Values{
		"fullName":       {name},
		"email":          {"ana@x.com"},
		"nationalId":     {"123"},
		"birthDate":      {"2000-01-01"},
		"enrollmentDate": {"2024-01-01"},
		"active":         {"true"},
	}
}

func TestStudentsPageRequiresSession(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/auth/login" {
		t.Fatalf("got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestStudentsPageListsInNameOrder(t *testing.T) {
	h := newHarness(t, "Zoe Park", "Bruno Dias")
	w := h.page(http.MethodGet, "/students", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	body := w.Body.String()
	if strings.Index(body, "Bruno Dias") > strings.Index(body, "Zoe Park") {
		t.Fatal("rows not sorted by name")
	}
	if !strings.Contains(body, "admin@x.com") {
		t.Fatal("signed-in email not shown")
	}
}

func TestStudentsPageEmptyPlaceholder(t *testing.T) {
	h := newHarness(t)
	w := h.page(http.MethodGet, "/students", nil)
	if !strings.Contains(w.Body.String(), "No students registered yet") {
		t.Fatal("placeholder missing")
	}
}

func TestNewFormDefaults(t *testing.T) {
	h := newHarness(t)
	w := h.page(http.MethodGet, "/students/new", nil)
	body := w.Body.String()

	if !strings.Contains(body, "New student") || !strings.Contains(body, `value="2024-05-17"`) {
		t.Fatalf("create form missing defaults:\n%s", body)
	}
	if !strings.Contains(body, `value="true" checked`) {
		t.Fatal("active should be checked by default")
	}
}

func TestCreateFromForm(t *testing.T) {
	h := newHarness(t, "Bruno Dias")
	w := h.page(http.MethodPost, "/students", studentForm("Ana Silva"))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Student created") {
		t.Fatal("success notification missing")
	}
	if strings.Index(body, "Ana Silva") > strings.Index(body, "Bruno Dias") {
		t.Fatal("new record not sorted among existing names")
	}
	if strings.Contains(body, `action="/students"`) {
		t.Fatal("form should be closed after success")
	}
}

func TestCreateValidationKeepsValues(t *testing.T) {
	h := newHarness(t)
	form := studentForm("Ana Silva")
	form.Del("nationalId")
	w := h.page(http.MethodPost, "/students", form)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Error creating student") || !strings.Contains(body, `value="Ana Silva"`) {
		t.Fatalf("form not re-rendered with values:\n%s", body)
	}
	if !strings.Contains(body, "nationalId is required") {
		t.Fatal("field error missing")
	}
}

func TestUnreadableFormWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		path   func(h *harness) string
		failed string
	}{
		{"create", func(h *harness) string { return "/students" }, "Error creating student"},
		{"update", func(h *harness) string { return "/students/" + h.students.idOf("Bruno Dias") }, "Error updating student"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "Bruno Dias")
			form := studentForm("Ana Silva")
			form.Set("active", "maybe")

			w := h.page(http.MethodPost, tt.path(h), form)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status %d", w.Code)
			}
			body := w.Body.String()
			if !strings.Contains(body, tt.failed) || !strings.Contains(body, "The form could not be read") {
				t.Fatalf("error notification missing:\n%s", body)
			}
			if strings.Contains(body, "Student created") || strings.Contains(body, "Student updated") {
				t.Fatal("success notification shown for an unreadable form")
			}

			list, _ := h.students.List(context.Background())
			if len(list) != 1 || list[0].FullName != "Bruno Dias" {
				t.Fatalf("store changed: %+v", list)
			}
		})
	}
}

func TestEditFromForm(t *testing.T) {
	h := newHarness(t, "Bruno Dias")
	id := h.students.idOf("Bruno Dias")

	w := h.page(http.MethodGet, "/students/"+id+"/edit", nil)
	if !strings.Contains(w.Body.String(), "Edit student") || !strings.Contains(w.Body.String(), `value="ID-Bruno Dias"`) {
		t.Fatal("edit form not pre-populated")
	}

	form := studentForm("Bruno Dias Costa")
	form.Del("active")
	w = h.page(http.MethodPost, "/students/"+id, form)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Student updated") {
		t.Fatalf("status %d", w.Code)
	}

	got, _ := h.students.Get(context.Background(), id)
	if got.FullName != "Bruno Dias Costa" || got.Active {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestEditUnknownStudent(t *testing.T) {
	h := newHarness(t)
	w := h.page(http.MethodGet, "/students/00000000-0000-4000-8000-999999999999/edit", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Student not found") {
		t.Fatalf("status %d", w.Code)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, "Bruno Dias", "Maya Chen")
	id := h.students.idOf("Bruno Dias")

	w := h.page(http.MethodGet, "/students/"+id+"/delete", nil)
	if !strings.Contains(w.Body.String(), "Are you sure you want to delete Bruno Dias? This action cannot be undone.") {
		t.Fatal("prompt missing")
	}

	w = h.page(http.MethodPost, "/students/"+id+"/delete", url.Values{"confirm": {"no"}})
	if w.Code != http.StatusOK || h.students.deletes != 0 {
		t.Fatalf("cancelled prompt deleted: %d deletes", h.students.deletes)
	}

	w = h.page(http.MethodPost, "/students/"+id+"/delete", url.Values{"confirm": {"yes"}})
	if !strings.Contains(w.Body.String(), "Student deleted") {
		t.Fatal("success notification missing")
	}
	if h.students.idOf("Bruno Dias") != "" || h.students.idOf("Maya Chen") == "" {
		t.Fatal("wrong record deleted")
	}
}

func TestDeleteFailureShowsError(t *testing.T) {
	h := newHarness(t, "Bruno Dias")
	id := h.students.idOf("Bruno Dias")
	h.students.writeErr = errors.New("connection refused")

	w := h.page(http.MethodPost, "/students/"+id+"/delete", url.Values{"confirm": {"yes"}})
	body := w.Body.String()
	if !strings.Contains(body, "Error deleting student") || !strings.Contains(body, "connection refused") {
		t.Fatal("error notification missing")
	}
	if !strings.Contains(body, "Bruno Dias") {
		t.Fatal("list should be unchanged")
	}
}

func TestLoginAndLogout(t *testing.T) {
	h := newHarness(t)

	form := url.Values{"email": {"admin@x.com"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Fatalf("bad login: %d", w.Code)
	}

	form.Set("password", "password1")
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/students" {
		t.Fatalf("login: %d %q", w.Code, w.Header().Get("Location"))
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), cookieName+"=good") {
		t.Fatalf("cookie not set: %q", w.Header().Get("Set-Cookie"))
	}

	w = h.page(http.MethodPost, "/auth/logout", url.Values{})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/auth/login" || !h.auth.signedOut {
		t.Fatalf("logout: %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestAPIStudentsCRUD(t *testing.T) {
	h := newHarness(t, "Bruno Dias")

	w := h.api(http.MethodPost, "/api/v1/students", `{"fullName":"Ana Silva","email":"ana@x.com","nationalId":"123","birthDate":"2000-01-01","enrollmentDate":"2024-01-01"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Data models.Student `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if !created.Data.Active {
		t.Fatal("omitted active flag should default to true")
	}

	w = h.api(http.MethodGet, "/api/v1/students", "")
	var list struct {
		Data dto.StudentListResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Data.Total != 2 || list.Data.Students[0].FullName != "Ana Silva" {
		t.Fatalf("unexpected list: %+v", list.Data)
	}

	w = h.api(http.MethodPut, "/api/v1/students/"+created.Data.ID, `{"fullName":"Ana Silva","email":"ana@x.com","nationalId":"123","birthDate":"2000-01-01","enrollmentDate":"2024-01-01","active":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	w = h.api(http.MethodDelete, "/api/v1/students/"+created.Data.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	w = h.api(http.MethodGet, "/api/v1/students/"+created.Data.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", w.Code)
	}
}

func TestAPIValidationAndAuth(t *testing.T) {
	h := newHarness(t)

	w := h.api(http.MethodPost, "/api/v1/students", `{"fullName":"","email":"nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != dto.ErrorCodeValidationFailed {
		t.Fatalf("code %s", body.Error.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous API call: %d", rec.Code)
	}

	w = h.api(http.MethodGet, "/api/v1/auth/session", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "admin@x.com") {
		t.Fatalf("session: %d %s", w.Code, w.Body.String())
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestHealthReportsDatabase(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		status int
	}{
		{"up", nil, http.StatusOK},
		{"down", errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{}
			students := newFakeStudents()
			gate := middleware.NewSessionGate(auth, cookieName)
			router := gin.New()
			routes.SetupRouter(
				router,
				controllers.NewAuthController(auth, gate, controllers.CookieConfig{Name: cookieName}, zerolog.Nop()),
				controllers.NewDashboardController(students, time.Now),
				controllers.NewStudentController(students),
				gate,
				fakePinger{err: tc.err},
			)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.status, w.Body.String())
			}
			if tc.err != nil && !strings.Contains(w.Body.String(), "connection refused") {
				t.Errorf("body should carry the driver message: %s", w.Body.String())
			}
		})
	}
}

func TestPing(t *testing.T) {
	h := newHarness(t)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "pong") {
		t.Fatalf("ping = %d %s", w.Code, w.Body.String())
	}
}

package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/dashboard"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/middleware"
	"github.com/yigit/studentdesk/internal/pkg/notify"
)

// pageData is what every HTML template receives
type pageData struct {
	Title         string
	Email         string
	Notifications []notify.Notification

	// Auth pages
	Error      string
	LoginEmail string

	// Students page
	Table  dashboard.Table
	Form   *formView
	Prompt *dashboard.DeletePrompt
}

// formView is the open student form as rendered
type formView struct {
	Title       string
	SubmitLabel string
	Action      string
	Values      models.StudentFields
	Errors      map[string]string
}

func newPage(ctx *gin.Context, title string) pageData {
	page := pageData{Title: title}
	if session, ok := middleware.CurrentSession(ctx); ok {
		page.Email = session.Email
	}
	return page
}

func newFormView(form *dashboard.Form) *formView {
	if !form.IsOpen() {
		return nil
	}
	action := "/students"
	if mode, ok := form.Mode().(dashboard.EditMode); ok {
		action = "/students/" + mode.ID
	}
	return &formView{
		Title:       form.Title(),
		SubmitLabel: form.SubmitLabel(),
		Action:      action,
		Values:      form.Values(),
		Errors:      form.FieldErrors(),
	}
}

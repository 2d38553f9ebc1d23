// Package controllers handles HTTP request handling
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/middleware"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// AuthService is what the auth handlers need from the service layer
type AuthService interface {
	Register(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	SignIn(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*models.Session, error)
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService AuthService
	gate        *middleware.SessionGate
	cookie      CookieConfig
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthService, gate *middleware.SessionGate, cookie CookieConfig, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		gate:        gate,
		cookie:      cookie,
		logger:      logger,
	}
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, token *dto.TokenResponse) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, token.AccessToken, int(token.ExpiresIn), "/", "", c.cookie.Secure, true)
}

func (c *AuthController) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, "", -1, "/", "", c.cookie.Secure, true)
}

// authMessage is the text shown on the login and sign-up pages
func authMessage(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, "An account with this email already exists"
	case errors.Is(err, apperrors.ErrInvalidEmail), errors.Is(err, apperrors.ErrInvalidPassword):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Something went wrong, please try again"
	}
}

// Landing renders the welcome page
func (c *AuthController) Landing(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "landing.html", newPage(ctx, "Welcome"))
}

// LoginPage renders the sign-in form. Signed-in visitors go to the list.
func (c *AuthController) LoginPage(ctx *gin.Context) {
	if _, ok := middleware.CurrentSession(ctx); ok {
		ctx.Redirect(http.StatusSeeOther, "/students")
		return
	}
	ctx.HTML(http.StatusOK, "login.html", newPage(ctx, "Sign in"))
}

// Login signs in from the HTML form
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	page := newPage(ctx, "Sign in")
	if err := ctx.ShouldBind(&req); err != nil {
		page.LoginEmail = ctx.PostForm("email")
		page.Error = "Please enter your email and password"
		ctx.HTML(http.StatusBadRequest, "login.html", page)
		return
	}

	token, err := c.authService.SignIn(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, message := authMessage(err)
		if status >= http.StatusInternalServerError {
			c.logger.Error().Err(err).Msg("Sign in failed")
		}
		page.LoginEmail = req.Email
		page.Error = message
		ctx.HTML(status, "login.html", page)
		return
	}

	c.setSessionCookie(ctx, token)
	ctx.Redirect(http.StatusSeeOther, "/students")
}

// RegisterPage renders the sign-up form
func (c *AuthController) RegisterPage(ctx *gin.Context) {
	if _, ok := middleware.CurrentSession(ctx); ok {
		ctx.Redirect(http.StatusSeeOther, "/students")
		return
	}
	ctx.HTML(http.StatusOK, "register.html", newPage(ctx, "Create account"))
}

// Register creates an account from the HTML form and signs it in
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	page := newPage(ctx, "Create account")
	if err := ctx.ShouldBind(&req); err != nil {
		page.LoginEmail = ctx.PostForm("email")
		page.Error = "Please enter a valid email and a password of at least 8 characters"
		ctx.HTML(http.StatusBadRequest, "register.html", page)
		return
	}

	token, err := c.authService.Register(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, message := authMessage(err)
		if status >= http.StatusInternalServerError {
			c.logger.Error().Err(err).Msg("Registration failed")
		}
		page.LoginEmail = req.Email
		page.Error = message
		ctx.HTML(status, "register.html", page)
		return
	}

	c.setSessionCookie(ctx, token)
	ctx.Redirect(http.StatusSeeOther, "/students")
}

// Logout signs out and returns to the login page
func (c *AuthController) Logout(ctx *gin.Context) {
	if token := c.gate.Token(ctx); token != "" {
		if err := c.authService.SignOut(ctx.Request.Context(), token); err != nil {
			c.logger.Error().Err(err).Msg("Sign out failed")
		}
	}
	c.clearSessionCookie(ctx)
	ctx.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// APILogin handles user login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) APILogin(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	token, err := c.authService.SignIn(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(token, "Signed in"))
}

// APIRegister handles user registration
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account information"
// @Success 201 {object} dto.APIResponse{data=dto.TokenResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /auth/register [post]
func (c *AuthController) APIRegister(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	token, err := c.authService.Register(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(token, "Account created"))
}

// APILogout revokes the caller's session
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Router /auth/logout [post]
func (c *AuthController) APILogout(ctx *gin.Context) {
	if err := c.authService.SignOut(ctx.Request.Context(), c.gate.Token(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Signed out"))
}

// APISession describes the caller's session
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/session [get]
func (c *AuthController) APISession(ctx *gin.Context) {
	session, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrSessionAbsent)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSessionResponse(session), ""))
}

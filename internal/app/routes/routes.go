package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/controllers"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/middleware"
)

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	dashboardController *controllers.DashboardController,
	studentController *controllers.StudentController,
	gate *middleware.SessionGate,
	db Pinger,
) {
	// --- Pages ---
	router.GET("/", gate.Optional(), authController.Landing)

	pages := router.Group("/auth", gate.Optional())
	{
		pages.GET("/login", authController.LoginPage)
		pages.POST("/login", authController.Login)
		pages.GET("/register", authController.RegisterPage)
		pages.POST("/register", authController.Register)
		pages.POST("/logout", authController.Logout)
	}

	students := router.Group("/students", gate.RequirePage())
	{
		students.GET("", dashboardController.Index)
		students.GET("/new", dashboardController.New)
		students.POST("", dashboardController.Create)
		students.GET("/:id/edit", dashboardController.Edit)
		students.POST("/:id", dashboardController.Update)
		students.GET("/:id/delete", dashboardController.ConfirmDelete)
		students.POST("/:id/delete", dashboardController.Delete)
	}

	// --- API ---
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.APIRegister)
		auth.POST("/login", authController.APILogin)
		auth.POST("/logout", authController.APILogout)
		auth.GET("/session", gate.RequireAPI(), authController.APISession)
	}

	apiStudents := v1.Group("/students", gate.RequireAPI())
	{
		apiStudents.GET("", studentController.ListStudents)
		apiStudents.GET("/:id", studentController.GetStudent)
		apiStudents.POST("", studentController.CreateStudent)
		apiStudents.PUT("/:id", studentController.UpdateStudent)
		apiStudents.DELETE("/:id", studentController.DeleteStudent)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unavailable")
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail.WithDetails(err.Error())))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}, ""))
	})

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

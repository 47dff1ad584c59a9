package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emaratgreen/esg-backend/internal/handlers"
	"github.com/emaratgreen/esg-backend/internal/middleware"
	"github.com/emaratgreen/esg-backend/internal/types"
)

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *middleware.AuthMiddleware

	HealthcheckHandler    *handlers.HealthcheckHandler
	AuthHandler           *handlers.AuthHandler
	UserHandler           *handlers.UserHandler
	CompanyHandler        *handlers.CompanyHandler
	SiteHandler           *handlers.SiteHandler
	FrameworkHandler      *handlers.FrameworkHandler
	ChecklistHandler      *handlers.ChecklistHandler
	MeterHandler          *handlers.MeterHandler
	DataCollectionHandler *handlers.DataCollectionHandler
	DashboardHandler      *handlers.DashboardHandler
	AssignmentHandler     *handlers.AssignmentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/verify-email", cfg.AuthHandler.VerifyEmail)
	router.POST("/password-reset/request", cfg.AuthHandler.RequestPasswordReset)
	router.POST("/password-reset/confirm", cfg.AuthHandler.ResetPassword)

	// Protected
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth session
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// Current user
	protected.GET("/me", cfg.UserHandler.Me)
	protected.POST("/me/avatar", cfg.UserHandler.UploadAvatar)

	// User management, gated by the role hierarchy inside the service and by
	// role here at the surface.
	adminOnly := cfg.AuthMiddleware.RequireRole(types.RoleSuperUser, types.RoleAdmin, types.RoleSiteManager)
	protected.GET("/users", cfg.UserHandler.List)
	protected.POST("/users", adminOnly, cfg.UserHandler.Create)
	protected.PATCH("/users/:id", adminOnly, cfg.UserHandler.Update)
	protected.DELETE("/users/:id", adminOnly, cfg.UserHandler.Delete)
	protected.POST("/users/:id/password", adminOnly, cfg.UserHandler.ResetPassword)

	// Company profile
	protected.POST("/company", cfg.CompanyHandler.Create)
	protected.GET("/company", cfg.CompanyHandler.Get)
	protected.PATCH("/company", adminOnly, cfg.CompanyHandler.Update)
	protected.GET("/activities", cfg.CompanyHandler.ListActivities)
	protected.PUT("/company/activities", adminOnly, cfg.CompanyHandler.SetActivities)
	protected.GET("/company/profile/questions", cfg.CompanyHandler.GetProfileQuestions)
	protected.GET("/company/profile/answers", cfg.CompanyHandler.GetProfileAnswers)
	protected.POST("/company/profile/answers", adminOnly, cfg.CompanyHandler.SubmitProfileAnswers)
	protected.POST("/company/refresh-compliance", adminOnly, cfg.CompanyHandler.RefreshCompliance)

	// Sites
	protected.GET("/sites", cfg.SiteHandler.List)
	protected.POST("/sites", adminOnly, cfg.SiteHandler.Create)
	protected.PATCH("/sites/:id", adminOnly, cfg.SiteHandler.Update)
	protected.DELETE("/sites/:id", adminOnly, cfg.SiteHandler.Delete)

	// Frameworks
	protected.GET("/frameworks", cfg.FrameworkHandler.ListAll)
	protected.GET("/company/frameworks", cfg.FrameworkHandler.ListForCompany)
	protected.POST("/company/frameworks", adminOnly, cfg.FrameworkHandler.AdoptVoluntary)
	protected.DELETE("/company/frameworks/:code", adminOnly, cfg.FrameworkHandler.RemoveVoluntary)

	// Checklist
	protected.GET("/checklist", cfg.ChecklistHandler.Get)
	protected.POST("/checklist/regenerate", adminOnly, cfg.ChecklistHandler.Regenerate)

	// Meters
	meterWriter := cfg.AuthMiddleware.RequireRole(
		types.RoleSuperUser, types.RoleAdmin, types.RoleSiteManager, types.RoleMeterManager,
	)
	protected.GET("/meters", cfg.MeterHandler.List)
	protected.POST("/meters", meterWriter, cfg.MeterHandler.Create)
	protected.POST("/meters/provision", meterWriter, cfg.MeterHandler.Provision)
	protected.PATCH("/meters/:id/status", meterWriter, cfg.MeterHandler.UpdateStatus)
	protected.DELETE("/meters/:id", meterWriter, cfg.MeterHandler.Delete)

	// Data collection
	protected.GET("/tasks", cfg.DataCollectionHandler.GetTasks)
	protected.GET("/progress", cfg.DataCollectionHandler.GetProgress)
	protected.POST("/submissions", cfg.AuthMiddleware.RequireWriter(), cfg.DataCollectionHandler.SubmitData)
	protected.POST("/submissions/inactive", cfg.AuthMiddleware.RequireWriter(), cfg.DataCollectionHandler.MarkPeriodInactive)

	// Dashboard
	protected.GET("/dashboard", cfg.DashboardHandler.Summary)

	// Assignments
	protected.GET("/assignments", cfg.AssignmentHandler.List)
	protected.POST("/assignments", adminOnly, cfg.AssignmentHandler.Create)
	protected.PATCH("/assignments/:id", cfg.AuthMiddleware.RequireWriter(), cfg.AssignmentHandler.Update)
	protected.DELETE("/assignments/:id", adminOnly, cfg.AssignmentHandler.Delete)

	return router
}

// ParseOrigins splits a comma-separated CORS_ORIGINS value.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

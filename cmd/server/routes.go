package main

import (
	"github.com/gin-gonic/gin"

	"github.com/mediatrack/campaign-api/internal/handler"
	"github.com/mediatrack/campaign-api/internal/middleware"
	"github.com/mediatrack/campaign-api/internal/models"
	"github.com/mediatrack/campaign-api/internal/repository"
	"github.com/mediatrack/campaign-api/internal/service"
	"github.com/mediatrack/campaign-api/pkg/config"
)

type routeDeps struct {
	auth          *handler.AuthHandler
	users         *handler.UserHandler
	clients       *handler.ClientHandler
	campaigns     *handler.CampaignHandler
	stations      *handler.StationHandler
	analysts      *handler.AnalystHandler
	assignments   *handler.AssignmentHandler
	messages      *handler.MessageHandler
	notifications *handler.NotificationHandler
	dashboards    *handler.DashboardHandler
	exports       *handler.ExportHandler
	importExport  *handler.ImportExportHandler
	authService   *service.AuthService
	userRepo      *repository.UserRepository
}

func registerRoutes(r *gin.Engine, cfg *config.Config, deps routeDeps) {
	api := r.Group(cfg.APIPrefix)

	// Public endpoints.
	api.POST("/auth/token", deps.auth.Login)
	api.POST("/auth/refresh", deps.auth.Refresh)
	api.POST("/register", deps.auth.Register)

	// Signed download URLs carry their own auth in the token.
	api.GET("/export/campaign-execution/download", deps.exports.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.authService))

	authed.POST("/auth/logout", deps.auth.Logout)
	authed.POST("/auth/change-password", deps.auth.ChangePassword)
	authed.GET("/auth/me", deps.auth.Me)

	manage := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleAccountant, models.RoleAnalyst)

	clients := authed.Group("/clients")
	{
		clients.GET("", anyRole, deps.clients.List)
		clients.GET("/:id", anyRole, deps.clients.Get)
		clients.POST("", manage, deps.clients.Create)
		clients.PATCH("/:id", manage, deps.clients.Update)
		clients.DELETE("/:id", manage, deps.clients.Delete)
	}

	campaigns := authed.Group("/campaigns")
	{
		campaigns.GET("", anyRole, deps.campaigns.List)
		campaigns.GET("/:id", anyRole, deps.campaigns.Get)
		campaigns.POST("", manage, deps.campaigns.Create)
		campaigns.PATCH("/:id", manage, deps.campaigns.Update)
		campaigns.DELETE("/:id", manage, deps.campaigns.Delete)
	}

	stations := authed.Group("/stations")
	{
		stations.GET("", anyRole, deps.stations.List)
		stations.GET("/:id", anyRole, deps.stations.Get)
		stations.POST("", manage, deps.stations.Create)
		stations.PATCH("/:id", manage, deps.stations.Update)
		stations.DELETE("/:id", manage, deps.stations.Delete)
	}

	analysts := authed.Group("/analysts")
	{
		analysts.GET("", anyRole, deps.analysts.List)
		analysts.GET("/:id", anyRole, deps.analysts.Get)
		analysts.POST("", manage, deps.analysts.Create)
		analysts.PATCH("/:id", manage, deps.analysts.Update)
		analysts.DELETE("/:id", manage, deps.analysts.Delete)
	}

	assignments := authed.Group("/assignments")
	{
		assignments.GET("/workload", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), deps.assignments.Workload)
		assignments.GET("/calendar", middleware.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleAnalyst), deps.assignments.Calendar)
		assignments.GET("", anyRole, deps.assignments.List)
		assignments.GET("/:id", anyRole, deps.assignments.Get)
		assignments.POST("", manage, deps.assignments.Create)
		assignments.PATCH("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleAnalyst), deps.assignments.Update)
		assignments.DELETE("/:id", manage, deps.assignments.Delete)
	}

	users := authed.Group("/users")
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), deps.users.List)
		users.GET("/:id", middleware.RBAC("ADMIN", middleware.SelfScope), deps.users.Get)
		users.POST("", middleware.RequireRoles(models.RoleAdmin), deps.users.Create)
		users.PATCH("/:id", middleware.RBAC("ADMIN", middleware.SelfScope), deps.users.Update)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), deps.users.Delete)
	}

	messages := authed.Group("/messages")
	{
		messages.GET("", deps.messages.List)
		messages.POST("", deps.messages.Send)
		messages.POST("/mark_read", deps.messages.MarkThreadRead)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", deps.notifications.List)
		notifications.POST("/:id/mark_read", deps.notifications.MarkRead)
		notifications.POST("/mark_all_read", deps.notifications.MarkAllRead)
	}

	importExport := authed.Group("/import_export")
	{
		importExport.GET("/:type/export", middleware.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleAccountant), deps.importExport.Export)
		importExport.POST("/:type/import", manage,
			middleware.Audit(deps.userRepo, "IMPORT", "import_export"), deps.importExport.Import)
	}

	executionExports := authed.Group("/export/campaign-execution")
	executionExports.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleAccountant))
	{
		executionExports.GET("", deps.exports.Render)
		executionExports.POST("/jobs", deps.exports.Enqueue)
		executionExports.GET("/jobs/:id", deps.exports.Status)
	}

	dashboards := authed.Group("/dashboard")
	{
		dashboards.GET("/admin", middleware.RequireRoles(models.RoleAdmin), deps.dashboards.Admin)
		dashboards.GET("/manager", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), deps.dashboards.Manager)
		dashboards.GET("/accountant", middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant), deps.dashboards.Accountant)
		dashboards.GET("/analyst", middleware.RequireRoles(models.RoleAdmin, models.RoleAnalyst), deps.dashboards.Analyst)
	}
}

package routes

import (
	"github.com/alumniconnect/platform/internal/app/controllers"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/middleware"
	"github.com/alumniconnect/platform/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controllers groups every handler the route table needs.
type Controllers struct {
	Auth    *controllers.AuthController
	Events  *controllers.EventController
	Jobs    *controllers.JobController
	Funding *controllers.FundingController
	Forum   *controllers.ForumController
	Admin   *controllers.AdminController
	Health  *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", ctrl.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes; a valid token still identifies the caller ---
	public := v1.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.POST("/auth/register", ctrl.Auth.Register)
		public.POST("/auth/login", ctrl.Auth.Login)
		public.GET("/users/:id/profile", ctrl.Auth.GetProfile)

		public.GET("/events", ctrl.Events.List)
		public.GET("/events/:id", ctrl.Events.Get)

		public.GET("/jobs", ctrl.Jobs.List)
		public.GET("/jobs/:id", ctrl.Jobs.Get)
		public.GET("/companies", ctrl.Jobs.ListCompanies)

		public.GET("/campaigns", ctrl.Funding.List)
		public.GET("/campaigns/:id", ctrl.Funding.Get)
		public.GET("/campaigns/:id/donations", ctrl.Funding.Donations)

		public.GET("/posts", ctrl.Forum.ListPosts)
		public.GET("/posts/:id", ctrl.Forum.GetPost)
		public.GET("/posts/:id/comments", ctrl.Forum.ListComments)
		public.GET("/categories", ctrl.Forum.ListCategories)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		me := authenticated.Group("/me")
		{
			me.GET("", ctrl.Auth.Me)
			me.PUT("/profile", ctrl.Auth.UpdateProfile)
			me.GET("/registrations", ctrl.Events.MyRegistrations)
			me.GET("/applications", ctrl.Jobs.MyApplications)
			me.GET("/saved-jobs", ctrl.Jobs.Saved)
			me.GET("/donations", ctrl.Funding.MyDonations)
		}

		events := authenticated.Group("/events")
		{
			events.POST("", ctrl.Events.Create)
			events.PUT("/:id", ctrl.Events.Update)
			events.DELETE("/:id", ctrl.Events.Delete)
			events.POST("/:id/submit", ctrl.Events.Submit)
			events.POST("/:id/cancel", ctrl.Events.Cancel)
			events.POST("/:id/register", ctrl.Events.Register)
			events.DELETE("/:id/register", ctrl.Events.CancelRegistration)
			events.GET("/:id/registrations", ctrl.Events.Registrations)
		}
		authenticated.PATCH("/registrations/:id/status", ctrl.Events.UpdateRegistrationStatus)

		jobs := authenticated.Group("/jobs")
		{
			jobs.POST("", ctrl.Jobs.Create)
			jobs.PUT("/:id", ctrl.Jobs.Update)
			jobs.DELETE("/:id", ctrl.Jobs.Delete)
			jobs.POST("/:id/close", ctrl.Jobs.Close)
			jobs.POST("/:id/apply", ctrl.Jobs.Apply)
			jobs.POST("/:id/save", ctrl.Jobs.ToggleSave)
			jobs.GET("/:id/applications", ctrl.Jobs.Applications)
		}
		authenticated.PATCH("/applications/:id/status", ctrl.Jobs.UpdateApplicationStatus)
		authenticated.POST("/companies", ctrl.Jobs.CreateCompany)

		campaigns := authenticated.Group("/campaigns")
		{
			campaigns.POST("", ctrl.Funding.Create)
			campaigns.PUT("/:id", ctrl.Funding.Update)
			campaigns.POST("/:id/submit", ctrl.Funding.Submit)
			campaigns.POST("/:id/cancel", ctrl.Funding.Cancel)
			campaigns.POST("/:id/donations", ctrl.Funding.Donate)
		}
		authenticated.PATCH("/donations/:id/verify", ctrl.Funding.Verify)

		posts := authenticated.Group("/posts")
		{
			posts.POST("", ctrl.Forum.CreatePost)
			posts.PUT("/:id", ctrl.Forum.UpdatePost)
			posts.DELETE("/:id", ctrl.Forum.DeletePost)
			posts.POST("/:id/comments", ctrl.Forum.CreateComment)
		}
		authenticated.DELETE("/comments/:id", ctrl.Forum.DeleteComment)
		authenticated.POST("/likes", ctrl.Forum.ToggleLike)
		authenticated.POST("/categories", ctrl.Forum.CreateCategory)

		// Role-protected routes
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(models.RoleSuperAdmin))
		{
			admin.GET("/dashboard", ctrl.Admin.Dashboard)
			admin.GET("/users", ctrl.Admin.ListUsers)
			admin.POST("/users/:id/suspend", ctrl.Admin.SuspendUser)
			admin.POST("/users/:id/activate", ctrl.Admin.ActivateUser)
			admin.DELETE("/users/:id", ctrl.Admin.DeleteUser)
			admin.GET("/events/pending", ctrl.Admin.PendingEvents)
			admin.POST("/events/:id/approve", ctrl.Admin.ApproveEvent)
			admin.POST("/events/:id/reject", ctrl.Admin.RejectEvent)
			admin.GET("/campaigns/pending", ctrl.Admin.PendingCampaigns)
			admin.POST("/campaigns/:id/approve", ctrl.Admin.ApproveCampaign)
			admin.POST("/campaigns/:id/reject", ctrl.Admin.RejectCampaign)
			admin.DELETE("/content/:type/:id", ctrl.Admin.DeleteContent)
			admin.GET("/moderation-log", ctrl.Admin.ModerationLog)
		}
	}
}

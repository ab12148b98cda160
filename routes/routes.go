package routes

import (
	"conference-review-api/controllers"
	"conference-review-api/middleware"
	"conference-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Conference Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Common endpoints (all authenticated users)
			protected.GET("/conferences", controllers.GetConferences)
			protected.GET("/conferences/:id/criteria", controllers.GetConferenceCriteria)
			protected.GET("/keywords", controllers.GetKeywords)
			protected.POST("/keywords", controllers.ProposeKeyword)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Author workflow
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetMySubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("", middleware.RequireRole(models.RoleAuthor), controllers.CreateSubmission)
				submissions.PUT("/:id", middleware.RequireRole(models.RoleAuthor), controllers.UpdateSubmission)
				submissions.POST("/:id/submit-abstract", middleware.RequireRole(models.RoleAuthor), controllers.SubmitAbstract)
				submissions.POST("/:id/submit-full-paper", middleware.RequireRole(models.RoleAuthor), controllers.SubmitFullPaper)
				submissions.POST("/:id/submit-final-version", middleware.RequireRole(models.RoleAuthor), controllers.SubmitFinalVersion)
				submissions.POST("/:id/withdraw", middleware.RequireRole(models.RoleAuthor), controllers.WithdrawSubmission)
			}

			// Reviewer workflow
			reviewer := protected.Group("/reviewer")
			reviewer.Use(middleware.RequireRole(models.RoleReviewer))
			{
				reviewer.GET("/assignments", controllers.GetMyAssignments)
				reviewer.POST("/assignments/:id/accept", controllers.AcceptAssignment)
				reviewer.POST("/assignments/:id/reject", controllers.RejectAssignment)
				reviewer.POST("/assignments/:id/review", controllers.SubmitReview)
				reviewer.PUT("/keywords", controllers.SetMyKeywords)
			}

			// Admin workflow
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/submissions", controllers.GetSubmissionsByStatus)
				admin.POST("/submissions/:id/approve-abstract", controllers.ApproveAbstract)
				admin.POST("/submissions/:id/reject-abstract", controllers.RejectAbstract)
				admin.GET("/submissions/:id/available-reviewers", controllers.GetAvailableReviewers)
				admin.POST("/submissions/:id/assign-reviewer", controllers.AssignReviewer)
				admin.GET("/submissions/:id/reviews", controllers.GetSubmissionReviews)
				admin.GET("/submissions/:id/decision-suggestion", controllers.GetDecisionSuggestion)
				admin.POST("/submissions/:id/decision", controllers.MakeFinalDecision)
				admin.PUT("/keywords/:id", controllers.ModerateKeyword)
				admin.PUT("/conferences/:id/plan-dates", controllers.UpdateConferencePlanDates)
			}
		}

	}

	// 404 handler for unknown routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}

package routes

import (
	"github.com/gin-gonic/gin"

	"loan-origination-api/controllers"
	"loan-origination-api/middleware"
	"loan-origination-api/services"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)
			public.POST("/refresh", controllers.RefreshToken)

			// Signed document access; the token itself carries the grant
			public.GET("/documents/view", controllers.ViewDocument)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Loan Origination API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", controllers.GetProfile)
			protected.GET("/products", controllers.GetLoanProducts)

			// Applications
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/timeline", controllers.GetApplicationTimeline)
				applications.GET("/:id/documents", controllers.GetApplicationDocuments)

				review := applications.Group("")
				review.Use(middleware.RequirePermission(services.CapabilityReview))
				{
					// Restricted targets are additionally gated inside the
					// state machine by the decide capability.
					review.POST("/:id/status", controllers.ChangeApplicationStatus)
					review.POST("/:id/counter-offer", controllers.CounterOfferApplication)
					review.POST("/:id/assign", controllers.AssignApplication)
					review.POST("/:id/notes", controllers.AddApplicationNote)
					review.POST("/:id/documents", controllers.UploadApplicationDocument)
				}
			}

			// Documents
			documents := protected.Group("/documents")
			documents.Use(middleware.RequirePermission(services.CapabilityReview))
			{
				documents.POST("/:id/approve", controllers.ApproveDocument)
				documents.POST("/:id/reject", controllers.RejectDocument)
				documents.POST("/:id/unapprove", controllers.UnapproveDocument)
				documents.GET("/:id/url", controllers.GetDocumentURL)
			}

			// Applicant verification ledger
			applicants := protected.Group("/applicants")
			{
				applicants.GET("/:id/verifications", controllers.GetVerificationState)

				applicants.POST("/:id/verifications",
					middleware.RequirePermission(services.CapabilityReview),
					controllers.RecordFieldVerification)
			}

			// References and bank accounts
			verification := protected.Group("")
			verification.Use(middleware.RequirePermission(services.CapabilityReview))
			{
				verification.POST("/references/:id/verify", controllers.VerifyReference)
				verification.POST("/bank-accounts/:id/verify", controllers.VerifyBankAccount)
				verification.POST("/bank-accounts/:id/unverify", controllers.UnverifyBankAccount)
			}
		}
	}
}

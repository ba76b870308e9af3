package main

import (
	"github.com/gin-gonic/gin"

	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/internal/interfaces/http/handlers"
	"sportsadmin.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler         *handlers.AuthHandler
	userHandler         *handlers.UserHandler
	contractHandler     *handlers.ContractHandler
	documentHandler     *handlers.DocumentHandler
	paymentHandler      *handlers.PaymentHandler
	fileHandler         *handlers.FileHandler
	reportHandler       *handlers.ReportHandler
	notificationHandler *handlers.NotificationHandler
	authMiddleware      gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		users := v1.Group("/users")
		users.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			users.POST("", d.userHandler.CreateUser)
			users.GET("", d.userHandler.ListUsers)
			users.GET("/:id", d.userHandler.GetUser)
			users.PUT("/:id", d.userHandler.UpdateUser)
		}

		// Ownership and per-action roles are enforced by the workflow
		contracts := v1.Group("/contracts")
		contracts.Use(d.authMiddleware)
		{
			contracts.POST("", middleware.RequireMinRole(entities.UserRoleLegalRep), d.contractHandler.CreateContract)
			contracts.GET("", d.contractHandler.ListContracts)
			contracts.GET("/:id", d.contractHandler.GetContract)
			contracts.PUT("/:id", middleware.RequireMinRole(entities.UserRoleLegalRep), d.contractHandler.UpdateContract)
			contracts.GET("/:id/history", d.contractHandler.History)
			contracts.GET("/:id/documents", d.documentHandler.ListByContract)
			contracts.POST("/:id/documents", d.documentHandler.Upload)
			contracts.GET("/:id/readiness", d.documentHandler.Readiness)
			contracts.GET("/:id/payments", d.paymentHandler.ListByContract)

			contracts.POST("/:id/submit", d.contractHandler.Submit)
			contracts.POST("/:id/send-for-approval", d.contractHandler.SendForApproval)
			contracts.POST("/:id/approve", d.contractHandler.Approve)
			contracts.POST("/:id/upload-signed", d.contractHandler.UploadSigned)
			contracts.POST("/:id/complete", d.contractHandler.Complete)
			contracts.POST("/:id/cancel", d.contractHandler.Cancel)
		}

		documents := v1.Group("/documents")
		documents.Use(d.authMiddleware)
		{
			documents.GET("/requirements", d.documentHandler.Requirements)
			documents.GET("/expiring", middleware.RequireAdmin(), d.documentHandler.ListExpiring)
			documents.POST("/:id/review", d.documentHandler.Review)
		}

		payments := v1.Group("/payments")
		payments.Use(d.authMiddleware)
		{
			payments.POST("", middleware.IdempotencyMiddleware(), d.paymentHandler.CreatePayment)
			payments.GET("", d.paymentHandler.ListPayments)
			payments.GET("/:id", d.paymentHandler.GetPayment)
			payments.POST("/:id/bill", d.paymentHandler.UploadBill)
			payments.POST("/:id/approve", d.paymentHandler.Approve)
			payments.POST("/:id/reject", d.paymentHandler.Reject)
			payments.POST("/:id/confirm", d.paymentHandler.Confirm)
			payments.POST("/:id/cancel", d.paymentHandler.Cancel)
		}

		v1.GET("/files/:id", d.authMiddleware, d.fileHandler.Download)

		v1.GET("/dashboard/stats", d.authMiddleware, d.reportHandler.DashboardStats)
		reports := v1.Group("/reports")
		reports.Use(d.authMiddleware)
		{
			reports.GET("/contracts-pending-signature", d.reportHandler.ContractsPendingSignature)
			reports.GET("/contracts-active", d.reportHandler.ActiveContracts)
			reports.GET("/payments-pending", d.reportHandler.PendingPayments)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(d.authMiddleware)
		{
			notifications.GET("", d.notificationHandler.List)
			notifications.PUT("/read-all", d.notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", d.notificationHandler.MarkRead)
		}
	}
}

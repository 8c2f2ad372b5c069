package app

import (
	"exam_bank_backend/docs"
	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/middleware"
	"exam_bank_backend/internal/model"
	"exam_bank_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg))
	{
		auth.GET("/profile", c.auth.GetProfile)

		// Question authoring, editors and admins only
		editor := auth.Group("/")
		editor.Use(middleware.RoleMiddleware(model.Editor))
		{
			editor.POST("/questions", c.question.CreateQuestion)
			editor.PUT("/questions/:id", c.question.UpdateQuestion)
			editor.DELETE("/questions/:id", c.question.DeleteQuestion)
			editor.POST("/questions/:id/submit", c.question.SubmitForReview)
			editor.POST("/questions/:id/deactivate", c.question.DeactivateQuestion)

			editor.POST("/questions/:id/options", c.question.AddOption)
			editor.PUT("/questions/:id/options/:optionId", c.question.UpdateOption)
			editor.DELETE("/questions/:id/options/:optionId", c.question.DeleteOption)
			editor.POST("/questions/:id/pairs", c.question.AddPair)
			editor.DELETE("/questions/:id/pairs/:pairId", c.question.DeletePair)
			editor.PUT("/questions/:id/model-answer", c.question.SetModelAnswer)

			// Peer review
			editor.POST("/questions/:id/votes", c.review.CastVote)
			editor.GET("/questions/:id/votes", c.review.GetTally)
			editor.DELETE("/votes/:voteId", c.review.DeleteVote)
			editor.PUT("/votes/:voteId", c.review.UpdateVoteComment)

			// Exam composition
			editor.POST("/exams", c.exam.CreateExam)
			editor.GET("/exams", c.exam.ListExams)
			editor.PUT("/exams/:id", c.exam.UpdateExam)
			editor.DELETE("/exams/:id", c.exam.DeleteExam)
			editor.POST("/exams/:id/deactivate", c.exam.DeactivateExam)
			editor.POST("/exams/:id/questions", c.exam.AttachQuestion)
			editor.PUT("/exams/:id/questions/reorder", c.exam.Reorder)
			editor.PUT("/exams/:id/questions/:eqId", c.exam.UpdateAttachment)
			editor.DELETE("/exams/:id/questions/:eqId", c.exam.DetachQuestion)
			editor.GET("/exams/:id/total-points", c.exam.GetTotalPoints)

			// Grading
			editor.GET("/exams/:id/attempts", c.attempt.ListExamAttempts)
			editor.GET("/exams/:id/attempts/manual-review", c.attempt.ListNeedingManualReview)
			editor.GET("/exams/:id/ungraded", c.answer.ListUngraded)
			editor.POST("/answers/:answerId/grade", c.answer.GradeFreeText)

			// Media
			editor.POST("/content", c.content.Upload)
			editor.GET("/content", c.content.ListMine)
			editor.DELETE("/content/:id", c.content.Delete)
		}

		// Shared reads
		auth.GET("/questions", c.question.ListQuestions)
		auth.GET("/questions/:id", c.question.GetQuestion)
		auth.GET("/exams/available", c.exam.ListAvailableExams)
		auth.GET("/exams/:id", c.exam.GetExam)
		auth.GET("/exams/:id/questions", c.exam.GetExamQuestions)
		auth.GET("/content/:id", c.content.Get)

		// Attempts, any authenticated user
		auth.POST("/exams/:id/attempts", c.attempt.StartAttempt)
		auth.GET("/attempts", c.attempt.ListMyAttempts)
		auth.POST("/attempts/:attemptId/finalize", c.attempt.FinalizeAttempt)
		auth.GET("/attempts/:attemptId/result", c.attempt.GetResult)
		auth.GET("/attempts/:attemptId/answers", c.answer.GetAttemptAnswers)
		auth.POST("/attempts/:attemptId/answers/selection", c.answer.RecordSelection)
		auth.POST("/attempts/:attemptId/answers/free-text", c.answer.RecordFreeText)
		auth.POST("/attempts/:attemptId/answers/matching", c.answer.RecordMatching)
	}

	// Admin overrides
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.PUT("/questions/:id/state", c.review.ChangeState)
		admin.DELETE("/attempts/:attemptId", c.attempt.DeleteAttempt)
	}
}

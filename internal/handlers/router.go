package handlers

import (
	"net/http"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	examHandler     *ExamHandler
	recordHandler   *RecordHandler
	questionHandler *QuestionHandler
	authHandler     *AuthHandler
}

func NewHandlerManager(
	examService services.ExamService,
	studentService services.StudentService,
	importExport services.ImportExportService,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		examHandler:     NewExamHandler(examService, v, logger),
		recordHandler:   NewRecordHandler(examService, importExport, v, logger),
		questionHandler: NewQuestionHandler(importExport, logger),
		authHandler:     NewAuthHandler(studentService, v, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", hm.authHandler.Login)

		v1.GET("/subjects", hm.examHandler.ListSubjects)

		// Exam session lifecycle
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.StartExam)
			exams.GET("/:token/question", hm.examHandler.GetCurrentQuestion)
			exams.POST("/:token/answer", hm.examHandler.SubmitAnswer)
			exams.POST("/:token/next", hm.examHandler.MoveNext)
			exams.POST("/:token/previous", hm.examHandler.MovePrevious)
			exams.POST("/:token/submit", hm.examHandler.SubmitExam)
			exams.DELETE("/:token", hm.examHandler.AbandonExam)
		}

		// Exam record history
		records := v1.Group("/records")
		{
			records.GET("", hm.recordHandler.ListRecords)
			records.GET("/export", hm.recordHandler.ExportRecords)
			records.GET("/:id/details", hm.recordHandler.GetRecordDetails)
			records.PUT("/:id/comment", hm.recordHandler.UpdateComment)
			records.DELETE("/:id", hm.recordHandler.DeleteRecord)
		}

		// Student-scoped record queries
		students := v1.Group("/students")
		{
			students.GET("", hm.authHandler.ListStudents)
			students.GET("/:student_id/records", hm.recordHandler.GetStudentRecords)
			students.GET("/:student_id/best-score", hm.recordHandler.GetBestScore)
			students.GET("/:student_id/average-score", hm.recordHandler.GetAverageScore)
		}

		// Question bank maintenance
		questions := v1.Group("/questions")
		{
			questions.POST("/import", hm.questionHandler.ImportQuestions)
		}
	}
}

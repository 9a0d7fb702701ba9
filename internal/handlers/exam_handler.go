package handlers

import (
	"net/http"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/gin-gonic/gin"
)

// ExamHandler exposes the exam attempt lifecycle: subject listing, session
// start, question navigation, answer recording and final submission.
type ExamHandler struct {
	BaseHandler
	examService services.ExamService
	validator   *validator.Validator
}

func NewExamHandler(examService services.ExamService, v *validator.Validator, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
		validator:   v,
	}
}

// ListSubjects returns every subject that has at least one question,
// with its pool size.
func (h *ExamHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.examService.Subjects(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: subjects, Total: int64(len(subjects))})
}

// StartExam samples a question set and opens a new timed session.
func (h *ExamHandler) StartExam(c *gin.Context) {
	var req services.StartExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if errs := h.validator.Validate(&req); errs != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: errs.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting exam", "student_id", req.StudentID, "subject", req.Subject)

	session, err := h.examService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetCurrentQuestion returns the question under the session cursor.
func (h *ExamHandler) GetCurrentQuestion(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	question, err := h.examService.CurrentQuestion(token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// SubmitAnswer records an answer for a question without moving the cursor.
func (h *ExamHandler) SubmitAnswer(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	sub, ok := h.bindAnswer(c)
	if !ok {
		return
	}

	if err := h.examService.RecordAnswer(token, sub); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer recorded"})
}

// MoveNext records the current answer (if given) and advances the cursor.
func (h *ExamHandler) MoveNext(c *gin.Context) {
	h.move(c, h.examService.MoveNext)
}

// MovePrevious records the current answer (if given) and steps the cursor back.
func (h *ExamHandler) MovePrevious(c *gin.Context) {
	h.move(c, h.examService.MovePrevious)
}

func (h *ExamHandler) move(c *gin.Context, step func(string, *services.AnswerSubmission) (*services.QuestionView, error)) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	// The body is optional: navigating without answering is allowed.
	var sub *services.AnswerSubmission
	if c.Request.ContentLength > 0 {
		bound, ok := h.bindAnswer(c)
		if !ok {
			return
		}
		sub = bound
	}

	question, err := step(token, sub)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// SubmitExam grades the session, persists the record atomically and
// returns the full result. On a persistence failure the session stays
// alive so the client can retry.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	h.LogRequest(c, "Submitting exam", "token", token)

	result, err := h.examService.Submit(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AbandonExam discards a session without grading it.
func (h *ExamHandler) AbandonExam(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	h.examService.Abandon(token)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Exam session abandoned"})
}

func (h *ExamHandler) bindAnswer(c *gin.Context) (*services.AnswerSubmission, bool) {
	var sub services.AnswerSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil, false
	}

	if errs := h.validator.Validate(&sub); errs != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: errs.Error(),
		})
		return nil, false
	}

	return &sub, true
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/gin-gonic/gin"
)

// RecordHandler exposes exam record history and the admin mutations on it.
type RecordHandler struct {
	BaseHandler
	examService  services.ExamService
	importExport services.ImportExportService
	validator    *validator.Validator
}

func NewRecordHandler(
	examService services.ExamService,
	importExport services.ImportExportService,
	v *validator.Validator,
	logger utils.Logger,
) *RecordHandler {
	return &RecordHandler{
		BaseHandler:  NewBaseHandler(logger),
		examService:  examService,
		importExport: importExport,
		validator:    v,
	}
}

// ListRecords returns all exam records matching the query filters.
func (h *RecordHandler) ListRecords(c *gin.Context) {
	filters := repositories.RecordFilters{
		Limit:  ParseIntQuery(c, "limit", 50),
		Offset: ParseIntQuery(c, "offset", 0),
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if from, ok := parseTimeQuery(c, "date_from"); ok {
		filters.DateFrom = from
	}
	if to, ok := parseTimeQuery(c, "date_to"); ok {
		filters.DateTo = to
	}

	records, total, err := h.examService.AllRecords(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: records, Total: total})
}

// GetStudentRecords returns one student's full exam history, best first.
func (h *RecordHandler) GetStudentRecords(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	records, err := h.examService.RecordsByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: records, Total: int64(len(records))})
}

// GetBestScore returns the student's best record for a subject. A student
// with no records for the subject gets a 200 with a null record, not a 404.
func (h *RecordHandler) GetBestScore(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}
	subject := c.Query("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "subject query parameter is required",
		})
		return
	}

	record, err := h.examService.BestScore(c.Request.Context(), studentID, subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Best score", Data: record})
}

// GetAverageScore returns the student's average percentage across all exams.
func (h *RecordHandler) GetAverageScore(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	average, err := h.examService.AverageScore(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student_id":      studentID,
		"average_percent": average,
	})
}

// GetRecordDetails returns the per-question answer rows of one record.
func (h *RecordHandler) GetRecordDetails(c *gin.Context) {
	recordID := ParseUintIDParam(c, "id")
	if recordID == 0 {
		return
	}

	details, err := h.examService.DetailsByRecord(c.Request.Context(), recordID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: details, Total: int64(len(details))})
}

// UpdateComment sets or clears the teacher comment on a record.
func (h *RecordHandler) UpdateComment(c *gin.Context) {
	recordID := ParseUintIDParam(c, "id")
	if recordID == 0 {
		return
	}

	var req services.UpdateCommentRequest
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

	if err := h.examService.UpdateComment(c.Request.Context(), actorID(c), recordID, req.Comment); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Comment updated"})
}

// DeleteRecord removes a record and its answer details.
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	recordID := ParseUintIDParam(c, "id")
	if recordID == 0 {
		return
	}

	h.LogRequest(c, "Deleting exam record", "record_id", recordID)

	if err := h.examService.DeleteRecord(c.Request.Context(), actorID(c), recordID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Exam record deleted"})
}

// ExportRecords streams the matching records as an .xlsx workbook.
func (h *RecordHandler) ExportRecords(c *gin.Context) {
	req := models.RecordExportRequest{}
	if studentID := c.Query("student_id"); studentID != "" {
		req.StudentID = &studentID
	}
	if subject := c.Query("subject"); subject != "" {
		req.Subject = &subject
	}
	if from, ok := parseTimeQuery(c, "date_from"); ok {
		req.DateFrom = from
	}
	if to, ok := parseTimeQuery(c, "date_to"); ok {
		req.DateTo = to
	}

	data, err := h.importExport.ExportRecords(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("exam_records_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseTimeQuery(c *gin.Context, param string) (*time.Time, bool) {
	value := c.Query(param)
	if value == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// actorID identifies who performed an admin mutation, for the audit trail.
func actorID(c *gin.Context) string {
	if actor := c.GetHeader("X-Actor-ID"); actor != "" {
		return actor
	}
	return "system"
}

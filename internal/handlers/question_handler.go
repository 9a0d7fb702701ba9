package handlers

import (
	"io"
	"net/http"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// maxImportSize caps uploaded spreadsheets at 10 MB.
const maxImportSize = 10 << 20

// QuestionHandler covers question bank maintenance: spreadsheet import.
type QuestionHandler struct {
	BaseHandler
	importExport services.ImportExportService
}

func NewQuestionHandler(importExport services.ImportExportService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:  NewBaseHandler(logger),
		importExport: importExport,
	}
}

// ImportQuestions accepts a multipart .xlsx upload and loads its rows into
// the question bank. Invalid rows are reported back per row number.
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "File too large",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Cannot open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Cannot read uploaded file",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Importing questions", "filename", fileHeader.Filename, "size", fileHeader.Size)

	summary, err := h.importExport.ImportQuestions(c.Request.Context(), actorID(c), data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if summary.ErrorCount > 0 && summary.SuccessCount == 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, summary)
}

package handlers

import (
	"net/http"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler covers the roster boundary: login and student listing.
type AuthHandler struct {
	BaseHandler
	studentService services.StudentService
	validator      *validator.Validator
}

func NewAuthHandler(studentService services.StudentService, v *validator.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
		validator:      v,
	}
}

// Login checks student credentials with a single equality lookup.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
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

	student, err := h.studentService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Login successful", Data: student})
}

// ListStudents returns the roster, paged.
func (h *AuthHandler) ListStudents(c *gin.Context) {
	limit := ParseIntQuery(c, "limit", 50)
	offset := ParseIntQuery(c, "offset", 0)

	students, total, err := h.studentService.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: students, Total: total})
}

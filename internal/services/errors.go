package services

import (
	"errors"
	"fmt"

	apperrors "github.com/examstack/exam-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Session specific errors
	ErrSessionNotFound    = errors.New("exam session not found or expired")
	ErrSessionEmpty       = errors.New("exam session has no questions")
	ErrQuestionNotInExam  = errors.New("question is not part of this exam session")

	// Exam specific errors
	ErrNoExamAvailable = errors.New("no exam available for subject")
	ErrRecordNotFound  = errors.New("exam record not found")

	// Student specific errors
	ErrStudentNotFound    = errors.New("student not found")
	ErrInvalidCredentials = errors.New("invalid student id or password")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// StorageError wraps a read/connectivity failure. The exam cannot start;
// retry is user-initiated, never automatic.
type StorageError struct {
	Op  string `json:"op"`
	Err error  `json:"-"`
}

func (se *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", se.Op, se.Err)
}

func (se *StorageError) Unwrap() error { return se.Err }

// PersistenceError wraps a write/commit failure during submit. The
// transaction has been rolled back and no partial attempt is visible; the
// in-memory session survives so the student can retry without re-answering.
type PersistenceError struct {
	Op  string `json:"op"`
	Err error  `json:"-"`
}

func (pe *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", pe.Op, pe.Err)
}

func (pe *PersistenceError) Unwrap() error { return pe.Err }

// ===== ERROR HELPERS =====

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsStorage checks if error represents a storage read failure
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsPersistence checks if error represents a write/commit failure
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Subject string `json:"subject"`
	Type    string `json:"type"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

type RecordFilters struct {
	StudentID *string    `json:"student_id"`
	Subject   *string    `json:"subject"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// ===== SHARED RESULT STRUCTS =====

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int64  `json:"count"`
}

// ===== AGGREGATE =====

// Repository bundles the per-entity repositories. All methods accept a
// transaction-scoped *gorm.DB handle; a nil handle means the repository's
// own connection. Nothing in this package reaches for process-wide state.
type Repository interface {
	Questions() QuestionRepository
	Students() StudentRepository
	Records() ExamRecordRepository
	Audit() AuditRepository
}

// TxManager scopes fn to one storage transaction. fn returning an error
// rolls back everything written through the handle it received.
type TxManager interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// IsNotFoundError reports whether err is the storage layer's "no rows"
// condition, so callers can turn it into an empty result.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

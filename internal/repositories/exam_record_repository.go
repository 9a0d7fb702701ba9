package repositories

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"gorm.io/gorm"
)

// ExamRecordRepository interface for exam record and answer detail operations.
//
// Create and CreateDetailsBatch are the write half of the submit protocol:
// the caller opens one transaction via TxManager, inserts the record, stamps
// its generated id onto the details, batch-inserts them, and commits. Neither
// method manages transaction boundaries itself.
type ExamRecordRepository interface {
	// Write operations (transactional callers only)
	Create(ctx context.Context, tx *gorm.DB, record *models.ExamRecord) error
	CreateDetailsBatch(ctx context.Context, tx *gorm.DB, details []*models.StudentAnswerDetail) error

	// Query operations
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamRecord, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.ExamRecord, error)
	GetByStudentAndSubject(ctx context.Context, tx *gorm.DB, studentID, subject string) ([]*models.ExamRecord, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*models.ExamRecord, error)
	List(ctx context.Context, tx *gorm.DB, filters RecordFilters) ([]*models.ExamRecord, int64, error)
	GetDetailsByRecord(ctx context.Context, tx *gorm.DB, recordID uint) ([]*models.StudentAnswerDetail, error)

	// Aggregates
	CountByStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error)
	AverageScoreByStudent(ctx context.Context, tx *gorm.DB, studentID string) (float64, error)

	// Single-row mutations
	UpdateComment(ctx context.Context, tx *gorm.DB, id uint, comment *string) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

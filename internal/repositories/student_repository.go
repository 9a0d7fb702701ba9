package repositories

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"gorm.io/gorm"
)

// StudentRepository interface for student roster operations
type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Student, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Student, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

// AuditRepository interface for audit trail writes and review
type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	ListByActor(ctx context.Context, tx *gorm.DB, actorID string, limit, offset int) ([]*models.AuditLog, error)
}

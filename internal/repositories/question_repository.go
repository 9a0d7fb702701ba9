package repositories

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for question pool operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	GetBySubject(ctx context.Context, tx *gorm.DB, subject string) ([]*models.Question, error)
	CountBySubject(ctx context.Context, tx *gorm.DB, subject string) (int64, error)
	ListSubjects(ctx context.Context, tx *gorm.DB) ([]SubjectCount, error)
}

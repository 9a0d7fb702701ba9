package postgres

import (
	"context"
	"fmt"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return conn(q.db, tx).WithContext(ctx).Create(question).Error
}

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return conn(q.db, tx).WithContext(ctx).CreateInBatches(questions, 100).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := conn(q.db, tx).WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return conn(q.db, tx).WithContext(ctx).Save(question).Error
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return conn(q.db, tx).WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var questions []*models.Question
	var total int64

	query := conn(q.db, tx).WithContext(ctx).Model(&models.Question{})
	if filters.Subject != "" {
		query = query.Where("subject = ?", filters.Subject)
	}
	if filters.Type != "" {
		query = query.Where("question_type = ?", filters.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("id ASC").Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

// GetBySubject returns the full question pool for a subject in storage
// order. An unknown subject yields an empty slice, not an error.
func (q *QuestionPostgreSQL) GetBySubject(ctx context.Context, tx *gorm.DB, subject string) ([]*models.Question, error) {
	var questions []*models.Question
	if err := conn(q.db, tx).WithContext(ctx).
		Where("subject = ?", subject).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to load question pool for subject %q: %w", subject, err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountBySubject(ctx context.Context, tx *gorm.DB, subject string) (int64, error) {
	var count int64
	if err := conn(q.db, tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("subject = ?", subject).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (q *QuestionPostgreSQL) ListSubjects(ctx context.Context, tx *gorm.DB) ([]repositories.SubjectCount, error) {
	var subjects []repositories.SubjectCount
	if err := conn(q.db, tx).WithContext(ctx).
		Model(&models.Question{}).
		Select("subject, COUNT(*) AS count").
		Group("subject").
		Order("subject ASC").
		Scan(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

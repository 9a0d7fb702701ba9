package postgres

import (
	"context"
	"fmt"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

// detailBatchSize bounds one INSERT statement for answer details. Chunk
// boundaries are invisible to callers; atomicity comes from the enclosing
// transaction.
const detailBatchSize = 100

type ExamRecordPostgreSQL struct {
	db *gorm.DB
}

func NewExamRecordPostgreSQL(db *gorm.DB) repositories.ExamRecordRepository {
	return &ExamRecordPostgreSQL{db: db}
}

func (r *ExamRecordPostgreSQL) Create(ctx context.Context, tx *gorm.DB, record *models.ExamRecord) error {
	if err := conn(r.db, tx).WithContext(ctx).Omit("Details", "Student").Create(record).Error; err != nil {
		return fmt.Errorf("failed to create exam record: %w", err)
	}
	return nil
}

func (r *ExamRecordPostgreSQL) CreateDetailsBatch(ctx context.Context, tx *gorm.DB, details []*models.StudentAnswerDetail) error {
	if len(details) == 0 {
		return nil
	}
	if err := conn(r.db, tx).WithContext(ctx).CreateInBatches(details, detailBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert answer details: %w", err)
	}
	return nil
}

func (r *ExamRecordPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamRecord, error) {
	var record models.ExamRecord
	if err := conn(r.db, tx).WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ExamRecordPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.ExamRecord, error) {
	var records []*models.ExamRecord
	if err := conn(r.db, tx).WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("exam_date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ExamRecordPostgreSQL) GetByStudentAndSubject(ctx context.Context, tx *gorm.DB, studentID, subject string) ([]*models.ExamRecord, error) {
	var records []*models.ExamRecord
	if err := conn(r.db, tx).WithContext(ctx).
		Where("student_id = ? AND subject = ?", studentID, subject).
		Order("score DESC, exam_date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ExamRecordPostgreSQL) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.ExamRecord, error) {
	var records []*models.ExamRecord
	if err := conn(r.db, tx).WithContext(ctx).
		Order("exam_date DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ExamRecordPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.RecordFilters) ([]*models.ExamRecord, int64, error) {
	var records []*models.ExamRecord
	var total int64

	query := conn(r.db, tx).WithContext(ctx).Model(&models.ExamRecord{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.DateFrom != nil {
		query = query.Where("exam_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("exam_date <= ?", *filters.DateTo)
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

	if err := query.Order("exam_date DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *ExamRecordPostgreSQL) GetDetailsByRecord(ctx context.Context, tx *gorm.DB, recordID uint) ([]*models.StudentAnswerDetail, error) {
	var details []*models.StudentAnswerDetail
	if err := conn(r.db, tx).WithContext(ctx).
		Where("exam_record_id = ?", recordID).
		Order("id ASC").
		Find(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

func (r *ExamRecordPostgreSQL) CountByStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	var count int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.ExamRecord{}).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ExamRecordPostgreSQL) AverageScoreByStudent(ctx context.Context, tx *gorm.DB, studentID string) (float64, error) {
	var avg *float64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.ExamRecord{}).
		Where("student_id = ? AND total_questions > 0", studentID).
		Select("AVG(CAST(score AS FLOAT) / total_questions * 100)").
		Scan(&avg).Error; err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *ExamRecordPostgreSQL) UpdateComment(ctx context.Context, tx *gorm.DB, id uint, comment *string) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&models.ExamRecord{}).
		Where("id = ?", id).
		Update("comment", comment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the summary row; the schema's cascade rule removes the
// detail rows with it.
func (r *ExamRecordPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := conn(r.db, tx).WithContext(ctx).Delete(&models.ExamRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

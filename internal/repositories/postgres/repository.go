package postgres

import (
	"context"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the Postgres-backed aggregate. It also implements
// repositories.TxManager so services can scope multi-write protocols to one
// transaction handle.
type Repository struct {
	db       *gorm.DB
	question repositories.QuestionRepository
	student  repositories.StudentRepository
	record   repositories.ExamRecordRepository
	audit    repositories.AuditRepository
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		question: NewQuestionPostgreSQL(db),
		student:  NewStudentPostgreSQL(db),
		record:   NewExamRecordPostgreSQL(db),
		audit:    NewAuditPostgreSQL(db),
	}
}

func (r *Repository) Questions() repositories.QuestionRepository { return r.question }
func (r *Repository) Students() repositories.StudentRepository   { return r.student }
func (r *Repository) Records() repositories.ExamRecordRepository { return r.record }
func (r *Repository) Audit() repositories.AuditRepository        { return r.audit }

// Transaction runs fn inside a single database transaction. GORM commits
// when fn returns nil and rolls back every write made through the handle
// when fn returns an error.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// AutoMigrate creates or updates the persisted schema, including the
// cascade-delete on answer details and set-null on their question reference.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Student{},
		&models.Question{},
		&models.ExamRecord{},
		&models.StudentAnswerDetail{},
		&models.AuditLog{},
	)
}

// conn resolves the handle a repository call should use: the injected
// transaction when present, the pooled connection otherwise.
func conn(db *gorm.DB, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

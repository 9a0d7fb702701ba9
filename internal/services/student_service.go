package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

type studentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewStudentService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) StudentService {
	return &studentService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// Login checks credentials with a single equality lookup against the
// roster. A missing student and a wrong password are indistinguishable to
// the caller.
func (s *studentService) Login(ctx context.Context, req *LoginRequest) (*models.Student, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	student, err := s.repo.Students().GetByID(ctx, nil, req.StudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewStorageError("student lookup", err)
	}

	if student.Password != req.Password {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("student logged in", "student_id", student.ID)
	return student, nil
}

func (s *studentService) List(ctx context.Context, limit, offset int) ([]*models.Student, int64, error) {
	students, total, err := s.repo.Students().List(ctx, nil, limit, offset)
	if err != nil {
		return nil, 0, NewStorageError("student listing", err)
	}
	return students, total, nil
}

func (s *studentService) Register(ctx context.Context, student *models.Student) error {
	if err := s.validator.Validate(student); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	if err := s.repo.Students().Create(ctx, nil, student); err != nil {
		return NewPersistenceError("student create", err)
	}
	return nil
}

package services

import (
	"context"
	"time"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// ===== REQUEST STRUCTS =====

type StartExamRequest struct {
	StudentID        string `json:"student_id" validate:"required,max=50"`
	Subject          string `json:"subject" validate:"required,max=100"`
	QuestionCount    int    `json:"question_count" validate:"min=0,max=200"`
	TimeLimitSeconds int    `json:"time_limit_seconds" validate:"min=0,max=14400"`
}

// AnswerSubmission carries one raw UI answer: the selected letters for
// choice kinds (selection order preserved), or a single free-text entry.
type AnswerSubmission struct {
	QuestionID uint     `json:"question_id" validate:"required"`
	Selections []string `json:"selections"`
}

type UpdateCommentRequest struct {
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type LoginRequest struct {
	StudentID string `json:"student_id" validate:"required,max=50"`
	Password  string `json:"password" validate:"required,max=100"`
}

// ===== RESPONSE STRUCTS =====

// QuestionView is a question as shown to the student mid-exam: no correct
// answer fields leave the server before submission.
type QuestionView struct {
	ID       uint                    `json:"id"`
	Text     string                  `json:"question_text"`
	Type     models.QuestionType     `json:"question_type"`
	Options  []models.QuestionOption `json:"options,omitempty"`
	Index    int                     `json:"index"`
	Total    int                     `json:"total"`
	Answer   string                  `json:"answer"` // the student's current answer, "" if none
}

type SessionResponse struct {
	Token          string       `json:"token"`
	StudentID      string       `json:"student_id"`
	Subject        string       `json:"subject"`
	TotalQuestions int          `json:"total_questions"`
	Deadline       time.Time    `json:"deadline"`
	Question       QuestionView `json:"question"`
}

type ExamResultResponse struct {
	RecordID       uint             `json:"record_id"`
	StudentID      string           `json:"student_id"`
	Subject        string           `json:"subject"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	Percentage     float64          `json:"percentage"`
	Passed         bool             `json:"passed"`
	Band           string           `json:"band"`
	Results        []QuestionResult `json:"results"`
}

// ===== SERVICE INTERFACES =====

// ExamService drives the whole attempt lifecycle plus record history.
type ExamService interface {
	// Exam setup
	Subjects(ctx context.Context) ([]repositories.SubjectCount, error)

	// Session lifecycle
	Start(ctx context.Context, req *StartExamRequest) (*SessionResponse, error)
	CurrentQuestion(token string) (*QuestionView, error)
	RecordAnswer(token string, sub *AnswerSubmission) error
	MoveNext(token string, sub *AnswerSubmission) (*QuestionView, error)
	MovePrevious(token string, sub *AnswerSubmission) (*QuestionView, error)
	Abandon(token string)
	Submit(ctx context.Context, token string) (*ExamResultResponse, error)

	// Record history
	RecordsByStudent(ctx context.Context, studentID string) ([]*models.ExamRecord, error)
	AllRecords(ctx context.Context, filters repositories.RecordFilters) ([]*models.ExamRecord, int64, error)
	BestScore(ctx context.Context, studentID, subject string) (*models.ExamRecord, error)
	AverageScore(ctx context.Context, studentID string) (float64, error)
	DetailsByRecord(ctx context.Context, recordID uint) ([]*models.StudentAnswerDetail, error)

	// Admin mutations
	UpdateComment(ctx context.Context, actorID string, recordID uint, comment *string) error
	DeleteRecord(ctx context.Context, actorID string, recordID uint) error
}

// StudentService covers the roster boundary: credential check is a single
// equality lookup, nothing more.
type StudentService interface {
	Login(ctx context.Context, req *LoginRequest) (*models.Student, error)
	List(ctx context.Context, limit, offset int) ([]*models.Student, int64, error)
	Register(ctx context.Context, student *models.Student) error
}

// ImportExportService moves question pools and record history in and out
// as spreadsheets.
type ImportExportService interface {
	ImportQuestions(ctx context.Context, actorID string, data []byte) (*models.ImportSummary, error)
	ExportRecords(ctx context.Context, actorID string, req models.RecordExportRequest) ([]byte, error)
}

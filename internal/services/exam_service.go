package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultTimeLimit     = 60 * time.Minute
	defaultQuestionCount = 10
)

type examService struct {
	repo      repositories.Repository
	tx        repositories.TxManager
	sampler   *Sampler
	sessions  *SessionManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExamService(
	repo repositories.Repository,
	tx repositories.TxManager,
	sampler *Sampler,
	sessions *SessionManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ExamService {
	return &examService{
		repo:      repo,
		tx:        tx,
		sampler:   sampler,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== EXAM SETUP =====

func (s *examService) Subjects(ctx context.Context) ([]repositories.SubjectCount, error) {
	subjects, err := s.repo.Questions().ListSubjects(ctx, nil)
	if err != nil {
		return nil, NewStorageError("subject listing", err)
	}
	return subjects, nil
}

// ===== SESSION LIFECYCLE =====

func (s *examService) Start(ctx context.Context, req *StartExamRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	count := req.QuestionCount
	if count == 0 {
		count = defaultQuestionCount
	}

	questions, err := s.sampler.Sample(ctx, req.Subject, count)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoExamAvailable
	}

	timeLimit := defaultTimeLimit
	if req.TimeLimitSeconds > 0 {
		timeLimit = time.Duration(req.TimeLimitSeconds) * time.Second
	}

	sess := s.sessions.Create(req.StudentID, req.Subject, questions, timeLimit)

	s.logger.Info("exam session started",
		"token", sess.Token,
		"student_id", req.StudentID,
		"subject", req.Subject,
		"questions", len(questions))

	view := s.questionView(sess)
	return &SessionResponse{
		Token:          sess.Token,
		StudentID:      sess.StudentID,
		Subject:        sess.Subject,
		TotalQuestions: len(questions),
		Deadline:       sess.Deadline,
		Question:       *view,
	}, nil
}

func (s *examService) CurrentQuestion(token string) (*QuestionView, error) {
	sess, err := s.sessions.Get(token)
	if err != nil {
		return nil, err
	}
	return s.questionView(sess), nil
}

func (s *examService) RecordAnswer(token string, sub *AnswerSubmission) error {
	sess, err := s.sessions.Get(token)
	if err != nil {
		return err
	}
	return sess.RecordAnswer(sub.QuestionID, sub.Selections)
}

// MoveNext saves the supplied answer, if any, before moving the cursor;
// navigation must never lose an edit.
func (s *examService) MoveNext(token string, sub *AnswerSubmission) (*QuestionView, error) {
	return s.move(token, sub, func(sess *Session) { sess.MoveNext() })
}

func (s *examService) MovePrevious(token string, sub *AnswerSubmission) (*QuestionView, error) {
	return s.move(token, sub, func(sess *Session) { sess.MovePrevious() })
}

func (s *examService) move(token string, sub *AnswerSubmission, step func(*Session)) (*QuestionView, error) {
	sess, err := s.sessions.Get(token)
	if err != nil {
		return nil, err
	}
	if sub != nil && sub.QuestionID != 0 {
		if err := sess.RecordAnswer(sub.QuestionID, sub.Selections); err != nil {
			return nil, err
		}
	}
	step(sess)
	return s.questionView(sess), nil
}

func (s *examService) Abandon(token string) {
	s.sessions.Remove(token)
	s.logger.Info("exam session abandoned", "token", token)
}

// Submit grades the session's final answer map and durably stores the
// summary record plus one detail row per question as a single atomic unit.
// On any write failure the whole transaction is rolled back, a
// PersistenceError is returned and the session is kept alive so the student
// can retry without re-answering.
func (s *examService) Submit(ctx context.Context, token string) (*ExamResultResponse, error) {
	sess, err := s.sessions.Get(token)
	if err != nil {
		return nil, err
	}

	questions := sess.Questions()
	if len(questions) == 0 {
		return nil, ErrSessionEmpty
	}

	results, correct := Grade(questions, sess.FinalAnswers())

	record := &models.ExamRecord{
		StudentID:      sess.StudentID,
		Subject:        sess.Subject,
		Score:          correct,
		TotalQuestions: len(questions),
		ExamDate:       time.Now().UTC(),
	}
	details := buildDetails(results)

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Records().Create(ctx, tx, record); err != nil {
			return err
		}
		if record.ID == 0 {
			return errors.New("exam record insert returned no generated id")
		}
		for _, d := range details {
			d.ExamRecordID = record.ID
		}
		return s.repo.Records().CreateDetailsBatch(ctx, tx, details)
	})
	if err != nil {
		s.logger.Error("exam submit failed, transaction rolled back",
			"token", token,
			"student_id", sess.StudentID,
			"error", err)
		return nil, NewPersistenceError("exam submit", err)
	}

	// The attempt is durable; the transient session is done.
	s.sessions.Remove(token)

	s.logger.Info("exam submitted",
		"record_id", record.ID,
		"student_id", sess.StudentID,
		"subject", sess.Subject,
		"score", correct,
		"total", len(questions))

	s.publishEvent(ctx, events.NewExamEvent(events.EventExamSubmitted, events.ExamSubmittedEvent{
		RecordID:       record.ID,
		StudentID:      sess.StudentID,
		Subject:        sess.Subject,
		Score:          correct,
		TotalQuestions: len(questions),
		Percentage:     record.Percentage(),
	}))
	s.writeAudit(ctx, sess.StudentID, models.AuditExamSubmitted, "exam_record", record.ID,
		fmt.Sprintf("submitted %s exam: %d/%d", sess.Subject, correct, len(questions)), nil)

	pct := record.Percentage()
	return &ExamResultResponse{
		RecordID:       record.ID,
		StudentID:      sess.StudentID,
		Subject:        sess.Subject,
		Score:          correct,
		TotalQuestions: len(questions),
		Percentage:     pct,
		Passed:         pct >= 60,
		Band:           scoreBand(pct),
		Results:        results,
	}, nil
}

// ===== RECORD HISTORY =====

func (s *examService) RecordsByStudent(ctx context.Context, studentID string) ([]*models.ExamRecord, error) {
	records, err := s.repo.Records().GetByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, NewStorageError("exam history read", err)
	}
	return records, nil
}

func (s *examService) AllRecords(ctx context.Context, filters repositories.RecordFilters) ([]*models.ExamRecord, int64, error) {
	records, total, err := s.repo.Records().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, NewStorageError("exam record listing", err)
	}
	return records, total, nil
}

// BestScore returns the student's best record for a subject: highest score
// first, most recent on a tie. No records is an empty result (nil, nil),
// never an error.
func (s *examService) BestScore(ctx context.Context, studentID, subject string) (*models.ExamRecord, error) {
	records, err := s.repo.Records().GetByStudentAndSubject(ctx, nil, studentID, subject)
	if err != nil {
		return nil, NewStorageError("best score read", err)
	}

	var best *models.ExamRecord
	for _, r := range records {
		if best == nil ||
			r.Score > best.Score ||
			(r.Score == best.Score && r.ExamDate.After(best.ExamDate)) {
			best = r
		}
	}
	return best, nil
}

func (s *examService) AverageScore(ctx context.Context, studentID string) (float64, error) {
	avg, err := s.repo.Records().AverageScoreByStudent(ctx, nil, studentID)
	if err != nil {
		return 0, NewStorageError("average score read", err)
	}
	return avg, nil
}

// DetailsByRecord loads the per-question history of one attempt. A detail
// row with an unparseable stored question type is logged and skipped so one
// corrupt row cannot hide the rest of the attempt.
func (s *examService) DetailsByRecord(ctx context.Context, recordID uint) ([]*models.StudentAnswerDetail, error) {
	if _, err := s.repo.Records().GetByID(ctx, nil, recordID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRecordNotFound
		}
		return nil, NewStorageError("exam record read", err)
	}

	rows, err := s.repo.Records().GetDetailsByRecord(ctx, nil, recordID)
	if err != nil {
		return nil, NewStorageError("answer detail read", err)
	}

	details := make([]*models.StudentAnswerDetail, 0, len(rows))
	for _, d := range rows {
		if d.QuestionType != "" && !d.QuestionType.Valid() {
			s.logger.Warn("skipping answer detail with malformed question type",
				"detail_id", d.ID,
				"record_id", recordID,
				"question_type", string(d.QuestionType))
			continue
		}
		details = append(details, d)
	}
	return details, nil
}

// ===== ADMIN MUTATIONS =====

func (s *examService) UpdateComment(ctx context.Context, actorID string, recordID uint, comment *string) error {
	if err := s.repo.Records().UpdateComment(ctx, nil, recordID, comment); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrRecordNotFound
		}
		return NewPersistenceError("comment update", err)
	}

	s.writeAudit(ctx, actorID, models.AuditCommentUpdated, "exam_record", recordID,
		"updated exam record comment", map[string]interface{}{"comment": comment})
	return nil
}

// DeleteRecord removes the summary row; detail rows go with it via the
// schema's cascade rule.
func (s *examService) DeleteRecord(ctx context.Context, actorID string, recordID uint) error {
	record, err := s.repo.Records().GetByID(ctx, nil, recordID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrRecordNotFound
		}
		return NewStorageError("exam record read", err)
	}

	if err := s.repo.Records().Delete(ctx, nil, recordID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrRecordNotFound
		}
		return NewPersistenceError("exam record delete", err)
	}

	s.publishEvent(ctx, events.NewExamEvent(events.EventRecordDeleted, events.RecordDeletedEvent{
		RecordID:  recordID,
		StudentID: record.StudentID,
		DeletedBy: actorID,
	}))
	s.writeAudit(ctx, actorID, models.AuditRecordDeleted, "exam_record", recordID,
		fmt.Sprintf("deleted exam record of student %s", record.StudentID), nil)
	return nil
}

// ===== HELPERS =====

func (s *examService) questionView(sess *Session) *QuestionView {
	q, idx, total := sess.Current()
	return &QuestionView{
		ID:      q.ID,
		Text:    q.Text,
		Type:    q.Type,
		Options: q.Options(),
		Index:   idx,
		Total:   total,
		Answer:  sess.Answer(q.ID),
	}
}

// publishEvent emits an event after a durable commit; a broker failure is
// logged, never surfaced, because the attempt is already stored.
func (s *examService) publishEvent(ctx context.Context, event *events.ExamEvent) {
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish exam event", "event_type", event.Type, "error", err)
	}
}

func (s *examService) writeAudit(ctx context.Context, actorID string, eventType models.AuditEventType, targetType string, targetID uint, description string, metadata map[string]interface{}) {
	entry := &models.AuditLog{
		EventType:   eventType,
		ActorID:     actorID,
		TargetType:  targetType,
		TargetID:    &targetID,
		Description: description,
	}
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(data)
		}
	}
	if err := s.repo.Audit().Create(ctx, nil, entry); err != nil {
		s.logger.Warn("failed to write audit entry", "event_type", eventType, "error", err)
	}
}

func buildDetails(results []QuestionResult) []*models.StudentAnswerDetail {
	details := make([]*models.StudentAnswerDetail, 0, len(results))
	for _, res := range results {
		q := res.Question
		qid := q.ID
		details = append(details, &models.StudentAnswerDetail{
			QuestionID:    &qid,
			StudentAnswer: res.StudentAnswer,
			IsCorrect:     res.Correct,
			CorrectAnswer: res.CorrectAnswer,
			QuestionText:  q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			QuestionType:  q.Type,
		})
	}
	return details
}

func scoreBand(pct float64) string {
	switch {
	case pct >= 90:
		return "excellent"
	case pct >= 80:
		return "good"
	case pct >= 70:
		return "fair"
	case pct >= 60:
		return "pass"
	default:
		return "fail"
	}
}

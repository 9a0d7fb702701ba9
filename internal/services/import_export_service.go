package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// requiredImportColumns are the headers every import sheet must carry.
// Column order is free; headers are matched by lowercased name. The
// answer and option columns are optional per row since each question
// kind uses a different subset.
var requiredImportColumns = []string{"subject", "question_type", "question_text"}

type importExportService struct {
	repo      repositories.Repository
	tx        repositories.TxManager
	cache     cache.CacheService // optional
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(
	repo repositories.Repository,
	tx repositories.TxManager,
	cacheSvc cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ImportExportService {
	return &importExportService{
		repo:      repo,
		tx:        tx,
		cache:     cacheSvc,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== IMPORT OPERATIONS =====

// ImportQuestions loads a question bank spreadsheet. Rows that fail
// validation are reported per row; the valid remainder is inserted in one
// transaction so a partial file never half-lands.
func (s *importExportService) ImportQuestions(ctx context.Context, actorID string, data []byte) (*models.ImportSummary, error) {
	start := time.Now()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, NewValidationError("file", "not a readable spreadsheet", err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "spreadsheet has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "spreadsheet must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredImportColumns {
		if _, ok := headerMap[col]; !ok {
			return nil, NewValidationError("file", "missing required column", col)
		}
	}

	summary := &models.ImportSummary{TotalRows: len(rows) - 1}
	var questions []*models.Question

	for rowIndex, row := range rows[1:] {
		question, rowErrors := s.parseRow(row, headerMap, rowIndex+2)
		if len(rowErrors) > 0 {
			summary.Errors = append(summary.Errors, rowErrors...)
			summary.ErrorCount++
			continue
		}
		questions = append(questions, question)
	}

	if len(questions) > 0 {
		err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
			return s.repo.Questions().CreateBatch(ctx, tx, questions)
		})
		if err != nil {
			return nil, NewPersistenceError("question import", err)
		}
	}

	summary.SuccessCount = len(questions)
	for _, q := range questions {
		summary.CreatedQuestions = append(summary.CreatedQuestions, q.ID)
	}
	summary.ProcessingTime = time.Since(start)

	s.invalidatePoolCache(ctx)
	s.publishImported(ctx, actorID, questions, summary.ErrorCount)
	s.auditImport(ctx, actorID, summary)

	s.logger.Info("question import completed",
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return summary, nil
}

func (s *importExportService) parseRow(row []string, headerMap map[string]int, rowNum int) (*models.Question, []models.ImportValidationError) {
	get := func(col string) string {
		idx, ok := headerMap[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	optional := func(col string) *string {
		v := get(col)
		if v == "" {
			return nil
		}
		return &v
	}

	q := &models.Question{
		Subject:         get("subject"),
		Text:            get("question_text"),
		Type:            models.QuestionType(strings.ToUpper(get("question_type"))),
		OptionA:         optional("option_a"),
		OptionB:         optional("option_b"),
		OptionC:         optional("option_c"),
		OptionD:         optional("option_d"),
		CorrectAnswer:   strings.ToUpper(get("correct_answer")),
		CorrectAnswers:  strings.ToUpper(get("correct_answers")),
		FillBlankAnswer: get("fill_blank_answer"),
	}

	var rowErrors []models.ImportValidationError
	for _, ve := range s.validator.ValidateQuestion(q) {
		rowErrors = append(rowErrors, models.ImportValidationError{
			Row:     rowNum,
			Field:   ve.Field,
			Message: ve.Message,
		})
	}
	if len(rowErrors) > 0 {
		return nil, rowErrors
	}
	return q, nil
}

// ===== EXPORT OPERATIONS =====

// ExportRecords writes the matching exam records to an .xlsx workbook.
func (s *importExportService) ExportRecords(ctx context.Context, actorID string, req models.RecordExportRequest) ([]byte, error) {
	records, _, err := s.repo.Records().List(ctx, nil, repositories.RecordFilters{
		StudentID: req.StudentID,
		Subject:   req.Subject,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
	})
	if err != nil {
		return nil, NewStorageError("exam record export read", err)
	}

	f := excelize.NewFile()
	sheetName := "Exam Records"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{
		"Record ID", "Student ID", "Subject", "Score", "Total Questions",
		"Percentage", "Exam Date", "Comment",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, record := range records {
		comment := ""
		if record.Comment != nil {
			comment = *record.Comment
		}
		values := []interface{}{
			record.ID,
			record.StudentID,
			record.Subject,
			record.Score,
			record.TotalQuestions,
			fmt.Sprintf("%.1f%%", record.Percentage()),
			record.ExamDate.Format(time.RFC3339),
			comment,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.writeExportAudit(ctx, actorID, len(records))
	return buf.Bytes(), nil
}

// ===== HELPERS =====

func (s *importExportService) invalidatePoolCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "questions:subject:*"); err != nil {
		s.logger.Warn("failed to invalidate question pool cache", "error", err)
	}
}

func (s *importExportService) publishImported(ctx context.Context, actorID string, questions []*models.Question, errorCount int) {
	subjectSet := make(map[string]struct{})
	var subjects []string
	for _, q := range questions {
		if _, ok := subjectSet[q.Subject]; !ok {
			subjectSet[q.Subject] = struct{}{}
			subjects = append(subjects, q.Subject)
		}
	}

	event := events.NewExamEvent(events.EventQuestionsImported, events.QuestionsImportedEvent{
		Subjects:     subjects,
		SuccessCount: len(questions),
		ErrorCount:   errorCount,
		ImportedBy:   actorID,
	})
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish import event", "error", err)
	}
}

func (s *importExportService) auditImport(ctx context.Context, actorID string, summary *models.ImportSummary) {
	entry := &models.AuditLog{
		EventType:   models.AuditQuestionsImported,
		ActorID:     actorID,
		TargetType:  "question",
		Description: fmt.Sprintf("imported %d questions (%d rows rejected)", summary.SuccessCount, summary.ErrorCount),
	}
	if data, err := json.Marshal(summary.Errors); err == nil && len(summary.Errors) > 0 {
		entry.Metadata = datatypes.JSON(data)
	}
	if err := s.repo.Audit().Create(ctx, nil, entry); err != nil {
		s.logger.Warn("failed to write import audit entry", "error", err)
	}
}

func (s *importExportService) writeExportAudit(ctx context.Context, actorID string, count int) {
	entry := &models.AuditLog{
		EventType:   models.AuditRecordsExported,
		ActorID:     actorID,
		TargetType:  "exam_record",
		Description: fmt.Sprintf("exported %d exam records", count),
	}
	if err := s.repo.Audit().Create(ctx, nil, entry); err != nil {
		s.logger.Warn("failed to write export audit entry", "error", err)
	}
}

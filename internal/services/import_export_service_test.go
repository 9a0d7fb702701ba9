package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildImportWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"subject", "question_type", "question_text",
		"option_a", "option_b", "option_c", "option_d",
		"correct_answer", "correct_answers", "fill_blank_answer",
	}
	for i, header := range headers {
		require.NoError(t, f.SetCellValue(sheet, cellRef(i, 1), header))
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			require.NoError(t, f.SetCellValue(sheet, cellRef(colIdx, rowIdx+2), value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func cellRef(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col+1, row)
	return cell
}

func newImportExportFixture(t *testing.T) (*fakeStore, ImportExportService) {
	t.Helper()
	store := newFakeStore()
	service := NewImportExportService(store, store, nil, events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())
	return store, service
}

func TestImportQuestions(t *testing.T) {
	ctx := context.Background()

	t.Run("valid rows land in the pool", func(t *testing.T) {
		store, service := newImportExportFixture(t)
		data := buildImportWorkbook(t, [][]interface{}{
			{"Java", "SINGLE_CHOICE", "Which keyword declares a constant?", "final", "const", "static", "let", "A", "", ""},
			{"Java", "MULTIPLE_CHOICE", "Which are primitive types?", "int", "String", "boolean", "Integer", "", "A,C", ""},
			{"Java", "FILL_BLANK", "The JVM stands for Java ____ Machine.", "", "", "", "", "", "", "Virtual"},
		})

		summary, err := service.ImportQuestions(ctx, "teacher1", data)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.TotalRows)
		assert.Equal(t, 3, summary.SuccessCount)
		assert.Equal(t, 0, summary.ErrorCount)
		assert.Len(t, summary.CreatedQuestions, 3)

		pool, err := store.Questions().GetBySubject(ctx, nil, "Java")
		require.NoError(t, err)
		require.Len(t, pool, 3)
		assert.Equal(t, models.SingleChoice, pool[0].Type)
		assert.Equal(t, "A,C", pool[1].CorrectAnswers)
		assert.Equal(t, "Virtual", pool[2].FillBlankAnswer)

		// Audit trail records the import.
		assert.NotEmpty(t, store.audits)
	})

	t.Run("invalid rows are reported with their row numbers", func(t *testing.T) {
		store, service := newImportExportFixture(t)
		data := buildImportWorkbook(t, [][]interface{}{
			{"Java", "SINGLE_CHOICE", "Good row", "a", "b", "c", "d", "A", "", ""},
			{"Java", "SINGLE_CHOICE", "Answer letter out of range", "a", "b", "c", "d", "E", "", ""},
			{"Java", "TRUE_FALSE", "Unsupported kind", "a", "b", "", "", "A", "", ""},
		})

		summary, err := service.ImportQuestions(ctx, "teacher1", data)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SuccessCount)
		assert.Equal(t, 2, summary.ErrorCount)

		rowsWithErrors := make(map[int]bool)
		for _, rowErr := range summary.Errors {
			rowsWithErrors[rowErr.Row] = true
		}
		// Header is row 1, so the bad data rows are 3 and 4.
		assert.True(t, rowsWithErrors[3])
		assert.True(t, rowsWithErrors[4])

		pool, err := store.Questions().GetBySubject(ctx, nil, "Java")
		require.NoError(t, err)
		assert.Len(t, pool, 1)
	})

	t.Run("garbage bytes are rejected", func(t *testing.T) {
		_, service := newImportExportFixture(t)
		_, err := service.ImportQuestions(ctx, "teacher1", []byte("not a spreadsheet"))
		assert.True(t, IsValidation(err))
	})

	t.Run("a header-only sheet is rejected", func(t *testing.T) {
		_, service := newImportExportFixture(t)
		data := buildImportWorkbook(t, nil)
		_, err := service.ImportQuestions(ctx, "teacher1", data)
		assert.True(t, IsValidation(err))
	})
}

func TestExportRecords(t *testing.T) {
	ctx := context.Background()
	store, service := newImportExportFixture(t)

	comment := "steady progress"
	store.seedRecord(&models.ExamRecord{
		StudentID:      "S001",
		Subject:        "Java",
		Score:          2,
		TotalQuestions: 3,
		ExamDate:       time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		Comment:        &comment,
	})
	store.seedRecord(&models.ExamRecord{
		StudentID:      "S002",
		Subject:        "Go",
		Score:          5,
		TotalQuestions: 5,
		ExamDate:       time.Date(2026, 4, 3, 9, 30, 0, 0, time.UTC),
	})

	subject := "Java"
	data, err := service.ExportRecords(ctx, "teacher1", models.RecordExportRequest{Subject: &subject})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Exam Records"}, f.GetSheetList())

	rows, err := f.GetRows("Exam Records")
	require.NoError(t, err)
	require.Len(t, rows, 2) // header plus the one Java record

	assert.Equal(t, "Record ID", rows[0][0])
	assert.Equal(t, "S001", rows[1][1])
	assert.Equal(t, "Java", rows[1][2])
	assert.Equal(t, "66.7%", rows[1][5])
	assert.Equal(t, "steady progress", rows[1][7])
}

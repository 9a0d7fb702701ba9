package validator

import (
	"testing"

	"github.com/examstack/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validSingleChoice() *models.Question {
	return &models.Question{
		Text:          "Which collection preserves insertion order?",
		Type:          models.SingleChoice,
		OptionA:       strPtr("LinkedHashMap"),
		OptionB:       strPtr("HashMap"),
		OptionC:       strPtr("TreeMap"),
		OptionD:       strPtr("HashSet"),
		CorrectAnswer: "A",
		Subject:       "Java",
	}
}

func TestValidateQuestion(t *testing.T) {
	v := New()

	t.Run("valid single choice", func(t *testing.T) {
		assert.Empty(t, v.ValidateQuestion(validSingleChoice()))
	})

	t.Run("unknown question type short-circuits", func(t *testing.T) {
		q := validSingleChoice()
		q.Type = "TRUE_FALSE"
		errs := v.ValidateQuestion(q)
		require.Len(t, errs, 1)
		assert.Equal(t, "question_type", errs[0].Field)
	})

	t.Run("correct letter outside A-D", func(t *testing.T) {
		q := validSingleChoice()
		q.CorrectAnswer = "E"
		errs := v.ValidateQuestion(q)
		require.NotEmpty(t, errs)
		assert.Equal(t, "correct_answer", errs[0].Field)
	})

	t.Run("correct letter pointing at an empty option", func(t *testing.T) {
		q := validSingleChoice()
		q.OptionA = nil
		errs := v.ValidateQuestion(q)
		require.NotEmpty(t, errs)
		assert.Equal(t, "correct_answer", errs[0].Field)
	})

	t.Run("multiple choice needs at least one letter", func(t *testing.T) {
		q := validSingleChoice()
		q.Type = models.MultipleChoice
		q.CorrectAnswers = ""
		errs := v.ValidateQuestion(q)
		require.NotEmpty(t, errs)
		assert.Equal(t, "correct_answers", errs[0].Field)
	})

	t.Run("multiple choice validates every listed letter", func(t *testing.T) {
		q := validSingleChoice()
		q.Type = models.MultipleChoice
		q.CorrectAnswers = "A,X"
		errs := v.ValidateQuestion(q)
		require.NotEmpty(t, errs)
		assert.Equal(t, "correct_answers", errs[0].Field)
	})

	t.Run("fill blank needs an expected answer", func(t *testing.T) {
		q := &models.Question{
			Text:    "The ____ pattern restricts a class to one instance.",
			Type:    models.FillBlank,
			Subject: "Java",
		}
		errs := v.ValidateQuestion(q)
		require.Len(t, errs, 1)
		assert.Equal(t, "fill_blank_answer", errs[0].Field)
	})

	t.Run("missing text and subject", func(t *testing.T) {
		q := validSingleChoice()
		q.Text = "  "
		q.Subject = ""
		errs := v.ValidateQuestion(q)
		fields := make(map[string]bool)
		for _, e := range errs {
			fields[e.Field] = true
		}
		assert.True(t, fields["question_text"])
		assert.True(t, fields["subject"])
	})
}

func TestValidateStructTags(t *testing.T) {
	v := New()

	type startRequest struct {
		StudentID string `json:"student_id" validate:"required,max=50"`
		Subject   string `json:"subject" validate:"required"`
	}

	assert.NoError(t, v.Validate(&startRequest{StudentID: "S001", Subject: "Java"}))
	assert.Error(t, v.Validate(&startRequest{Subject: "Java"}))
}

func TestOptionLetterTag(t *testing.T) {
	v := New()

	t.Run("letter outside A-D rejected on the model", func(t *testing.T) {
		q := validSingleChoice()
		q.CorrectAnswer = "E"
		assert.Error(t, v.Validate(q))
	})

	t.Run("letter A-D accepted", func(t *testing.T) {
		assert.NoError(t, v.Validate(validSingleChoice()))
	})

	t.Run("empty answer column allowed for other kinds", func(t *testing.T) {
		q := &models.Question{
			Text:            "The ____ pattern restricts a class to one instance.",
			Type:            models.FillBlank,
			FillBlankAnswer: "singleton",
			Subject:         "Java",
		}
		assert.NoError(t, v.Validate(q))
	})
}

package models

import (
	"fmt"
	"time"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	FillBlank      QuestionType = "FILL_BLANK"
)

// ParseQuestionType converts a stored type tag back into a QuestionType.
// Unknown tags are reported so history readers can skip the offending row.
func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(s) {
	case SingleChoice, MultipleChoice, FillBlank:
		return QuestionType(s), nil
	default:
		return "", fmt.Errorf("unknown question type %q", s)
	}
}

func (t QuestionType) Valid() bool {
	_, err := ParseQuestionType(string(t))
	return err == nil
}

type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Text string       `json:"question_text" gorm:"column:question_text;not null;type:text"`
	Type QuestionType `json:"question_type" gorm:"column:question_type;not null;size:20;index" validate:"required,question_type"`

	// Option texts, used only by the choice kinds
	OptionA *string `json:"option_a" gorm:"size:500"`
	OptionB *string `json:"option_b" gorm:"size:500"`
	OptionC *string `json:"option_c" gorm:"size:500"`
	OptionD *string `json:"option_d" gorm:"size:500"`

	// Correct-answer encoding differs by kind; only the column matching
	// Type is meaningful.
	CorrectAnswer   string `json:"correct_answer" gorm:"size:10" validate:"omitempty,option_letter"` // single letter A-D
	CorrectAnswers  string `json:"correct_answers" gorm:"size:20"`                                   // comma-joined letters
	FillBlankAnswer string `json:"fill_blank_answer" gorm:"size:500"`                                // free text

	Subject string `json:"subject" gorm:"not null;size:100;index" validate:"required,max=100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// ExpectedAnswer returns the correct-answer encoding for the question's kind.
func (q *Question) ExpectedAnswer() string {
	switch q.Type {
	case SingleChoice:
		return q.CorrectAnswer
	case MultipleChoice:
		return q.CorrectAnswers
	case FillBlank:
		return q.FillBlankAnswer
	default:
		return ""
	}
}

// Options returns the non-empty option texts keyed by letter, in A-D order.
func (q *Question) Options() []QuestionOption {
	var opts []QuestionOption
	for _, o := range []struct {
		letter string
		text   *string
	}{
		{"A", q.OptionA},
		{"B", q.OptionB},
		{"C", q.OptionC},
		{"D", q.OptionD},
	} {
		if o.text != nil && *o.text != "" {
			opts = append(opts, QuestionOption{Letter: o.letter, Text: *o.text})
		}
	}
	return opts
}

type QuestionOption struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

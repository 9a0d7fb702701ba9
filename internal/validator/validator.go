package validator

import (
	"reflect"
	"strings"

	"github.com/examstack/exam-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps struct-tag validation plus the question payload checks
// that tags alone cannot express.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new validator instance with the custom rules registered.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// Validate validates struct tags and returns the raw validator error.
func (v *Validator) Validate(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateQuestion checks the kind-specific consistency of a question: the
// expected-answer column matching the kind must be filled, and choice kinds
// need option texts covering every correct letter.
func (v *Validator) ValidateQuestion(q *models.Question) ValidationErrors {
	var errs ValidationErrors

	if !q.Type.Valid() {
		errs = append(errs, *NewValidationError("question_type", "must be a valid question type (SINGLE_CHOICE, MULTIPLE_CHOICE, FILL_BLANK)", string(q.Type)))
		return errs
	}

	switch q.Type {
	case models.SingleChoice:
		if !isOptionLetter(q.CorrectAnswer) {
			errs = append(errs, *NewValidationError("correct_answer", "must be a single option letter A-D", q.CorrectAnswer))
		} else if !hasOption(q, q.CorrectAnswer) {
			errs = append(errs, *NewValidationError("correct_answer", "references an option with no text", q.CorrectAnswer))
		}
	case models.MultipleChoice:
		letters := strings.Split(q.CorrectAnswers, ",")
		if strings.TrimSpace(q.CorrectAnswers) == "" {
			errs = append(errs, *NewValidationError("correct_answers", "is required", q.CorrectAnswers))
			break
		}
		for _, letter := range letters {
			letter = strings.TrimSpace(letter)
			if !isOptionLetter(letter) {
				errs = append(errs, *NewValidationError("correct_answers", "must contain only option letters A-D", letter))
			} else if !hasOption(q, letter) {
				errs = append(errs, *NewValidationError("correct_answers", "references an option with no text", letter))
			}
		}
	case models.FillBlank:
		if strings.TrimSpace(q.FillBlankAnswer) == "" {
			errs = append(errs, *NewValidationError("fill_blank_answer", "is required", q.FillBlankAnswer))
		}
	}

	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, *NewValidationError("question_text", "is required", q.Text))
	}
	if strings.TrimSpace(q.Subject) == "" {
		errs = append(errs, *NewValidationError("subject", "is required", q.Subject))
	}

	return errs
}

func isOptionLetter(s string) bool {
	return s == "A" || s == "B" || s == "C" || s == "D"
}

func hasOption(q *models.Question, letter string) bool {
	for _, opt := range q.Options() {
		if opt.Letter == letter {
			return true
		}
	}
	return false
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("option_letter", validateOptionLetter)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	_, err := models.ParseQuestionType(fl.Field().String())
	return err == nil
}

func validateOptionLetter(fl validator.FieldLevel) bool {
	return isOptionLetter(fl.Field().String())
}

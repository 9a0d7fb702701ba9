package services

import (
	"sort"
	"strings"

	"github.com/examstack/exam-service/internal/models"
)

// QuestionResult is the graded outcome for one question of an attempt.
type QuestionResult struct {
	Question      *models.Question `json:"question"`
	StudentAnswer string           `json:"student_answer"`
	CorrectAnswer string           `json:"correct_answer"`
	Correct       bool             `json:"correct"`
}

// Grade compares the final answer map against each question's expected
// answer and returns per-question results plus the count of correct ones.
// Pure: no side effects, no I/O.
//
// An absent or empty answer is always incorrect, even when the expected
// value is itself empty; a blank submission must never pass a question.
func Grade(questions []*models.Question, answers map[uint]string) ([]QuestionResult, int) {
	results := make([]QuestionResult, 0, len(questions))
	correct := 0

	for _, q := range questions {
		answer := answers[q.ID]
		res := QuestionResult{
			Question:      q,
			StudentAnswer: answer,
			CorrectAnswer: q.ExpectedAnswer(),
		}
		res.Correct = answerMatches(q.Type, answer, res.CorrectAnswer)
		if res.Correct {
			correct++
		}
		results = append(results, res)
	}

	return results, correct
}

func answerMatches(kind models.QuestionType, answer, expected string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}

	switch kind {
	case models.SingleChoice:
		return answer == expected
	case models.MultipleChoice:
		return letterSetsEqual(answer, expected)
	case models.FillBlank:
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(expected))
	default:
		return false
	}
}

// letterSetsEqual compares two comma-joined letter lists as sets: order is
// irrelevant and duplicate letters on either side are ignored, so a
// double-selected option cannot turn a correct answer into a wrong one.
func letterSetsEqual(a, b string) bool {
	as := letterSet(a)
	bs := letterSet(b)
	if len(as) == 0 || len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func letterSet(s string) []string {
	seen := make(map[string]struct{})
	var letters []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		letters = append(letters, part)
	}
	sort.Strings(letters)
	return letters
}

package services

import (
	"testing"
	"time"

	"github.com/examstack/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionQuestions() []*models.Question {
	return []*models.Question{
		singleChoiceQuestion(1, "A"),
		multipleChoiceQuestion(2, "A,B"),
		fillBlankQuestion(3, "thread"),
	}
}

func TestSession_Navigation(t *testing.T) {
	sess := newSession("S001", "Java", sessionQuestions(), time.Hour)

	q, idx, total := sess.Current()
	assert.Equal(t, uint(1), q.ID)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 3, total)

	t.Run("previous clamps at the first question", func(t *testing.T) {
		sess.MovePrevious()
		q, idx, _ := sess.Current()
		assert.Equal(t, uint(1), q.ID)
		assert.Equal(t, 0, idx)
	})

	t.Run("next clamps at the last question", func(t *testing.T) {
		sess.MoveNext()
		sess.MoveNext()
		sess.MoveNext()
		sess.MoveNext()
		q, idx, _ := sess.Current()
		assert.Equal(t, uint(3), q.ID)
		assert.Equal(t, 2, idx)
	})
}

func TestSession_RecordAnswer(t *testing.T) {
	sess := newSession("S001", "Java", sessionQuestions(), time.Hour)

	t.Run("unknown question is rejected", func(t *testing.T) {
		err := sess.RecordAnswer(99, []string{"A"})
		assert.ErrorIs(t, err, ErrQuestionNotInExam)
	})

	t.Run("single choice keeps the first selection", func(t *testing.T) {
		require.NoError(t, sess.RecordAnswer(1, []string{"C"}))
		assert.Equal(t, "C", sess.Answer(1))
	})

	t.Run("multiple choice joins selections in order", func(t *testing.T) {
		require.NoError(t, sess.RecordAnswer(2, []string{"B", "", " A "}))
		assert.Equal(t, "B,A", sess.Answer(2))
	})

	t.Run("re-answering overwrites", func(t *testing.T) {
		require.NoError(t, sess.RecordAnswer(1, []string{"A"}))
		assert.Equal(t, "A", sess.Answer(1))
	})
}

// Traversing forward and back must not lose or alter recorded answers.
func TestSession_AnswersSurviveTraversal(t *testing.T) {
	sess := newSession("S001", "Java", sessionQuestions(), time.Hour)

	require.NoError(t, sess.RecordAnswer(1, []string{"A"}))
	sess.MoveNext()
	require.NoError(t, sess.RecordAnswer(2, []string{"A", "B"}))
	sess.MoveNext()
	sess.MovePrevious()
	sess.MovePrevious()
	sess.MoveNext()
	sess.MoveNext()

	want := map[uint]string{1: "A", 2: "A,B", 3: ""}
	assert.Equal(t, want, sess.FinalAnswers())
	assert.Equal(t, 2, sess.AnsweredCount())
}

func TestSession_FinalAnswersFillsUnanswered(t *testing.T) {
	sess := newSession("S001", "Java", sessionQuestions(), time.Hour)

	answers := sess.FinalAnswers()
	assert.Len(t, answers, 3)
	for id, a := range answers {
		assert.Empty(t, a, "question %d should be unanswered", id)
	}
}

func TestSessionManager(t *testing.T) {
	m := NewSessionManager()

	t.Run("unknown token", func(t *testing.T) {
		_, err := m.Get("nope")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("create and fetch", func(t *testing.T) {
		sess := m.Create("S001", "Java", sessionQuestions(), time.Hour)
		require.NotEmpty(t, sess.Token)

		got, err := m.Get(sess.Token)
		require.NoError(t, err)
		assert.Same(t, sess, got)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("distinct sessions get distinct tokens", func(t *testing.T) {
		a := m.Create("S001", "Java", sessionQuestions(), time.Hour)
		b := m.Create("S002", "Java", sessionQuestions(), time.Hour)
		assert.NotEqual(t, a.Token, b.Token)
	})

	t.Run("expired session is discarded on access", func(t *testing.T) {
		sess := m.Create("S003", "Java", sessionQuestions(), -time.Second)
		before := m.Len()

		_, err := m.Get(sess.Token)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Equal(t, before-1, m.Len())
	})

	t.Run("remove", func(t *testing.T) {
		sess := m.Create("S004", "Java", sessionQuestions(), time.Hour)
		m.Remove(sess.Token)
		_, err := m.Get(sess.Token)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

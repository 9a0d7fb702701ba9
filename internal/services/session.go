package services

import (
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/examstack/exam-service/internal/models"
)

// Session is one student's pass through a sampled question set. It owns the
// answer map exclusively; nothing outside this type mutates it. State is
// transient and lives only for the attempt's lifetime.
type Session struct {
	Token     string
	StudentID string
	Subject   string
	StartedAt time.Time
	Deadline  time.Time

	mu        sync.Mutex
	questions []*models.Question
	cursor    int
	answers   map[uint]string
}

func newSession(studentID, subject string, questions []*models.Question, timeLimit time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		Token:     watermill.NewUUID(),
		StudentID: studentID,
		Subject:   subject,
		StartedAt: now,
		Deadline:  now.Add(timeLimit),
		questions: questions,
		answers:   make(map[uint]string, len(questions)),
	}
}

// Current returns the question under the cursor with its position.
func (s *Session) Current() (*models.Question, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[s.cursor], s.cursor, len(s.questions)
}

// Answer returns the currently recorded answer for a question id.
func (s *Session) Answer(questionID uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers[questionID]
}

// RecordAnswer normalizes the raw UI selections into the question kind's
// answer encoding and stores it. Multi-choice selections are joined with
// commas in selection order; sorting and deduplication happen only at
// grading time.
func (s *Session) RecordAnswer(questionID uint, selections []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.findQuestion(questionID)
	if q == nil {
		return ErrQuestionNotInExam
	}

	s.answers[questionID] = normalizeAnswer(q.Type, selections)
	return nil
}

// MoveNext advances the cursor by one, clamped to the last question.
func (s *Session) MoveNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < len(s.questions)-1 {
		s.cursor++
	}
}

// MovePrevious moves the cursor back by one, clamped to the first question.
func (s *Session) MovePrevious() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor > 0 {
		s.cursor--
	}
}

// Questions returns the session's ordered question list.
func (s *Session) Questions() []*models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// FinalAnswers returns a copy of the full answer map with "" substituted
// for every question that was never answered.
func (s *Session) FinalAnswers() map[uint]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]string, len(s.questions))
	for _, q := range s.questions {
		out[q.ID] = s.answers[q.ID]
	}
	return out
}

// AnsweredCount reports how many questions have a non-empty answer.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.answers {
		if a != "" {
			n++
		}
	}
	return n
}

// Expired reports whether the session's time limit has passed.
func (s *Session) Expired() bool {
	return time.Now().UTC().After(s.Deadline)
}

func (s *Session) findQuestion(id uint) *models.Question {
	for _, q := range s.questions {
		if q.ID == id {
			return q
		}
	}
	return nil
}

func normalizeAnswer(kind models.QuestionType, selections []string) string {
	switch kind {
	case models.MultipleChoice:
		var parts []string
		for _, sel := range selections {
			sel = strings.TrimSpace(sel)
			if sel != "" {
				parts = append(parts, sel)
			}
		}
		return strings.Join(parts, ",")
	default:
		if len(selections) == 0 {
			return ""
		}
		return selections[0]
	}
}

// SessionManager indexes active sessions by token. Access from concurrent
// requests is serialized on the manager's lock; each session guards its own
// state, so two students' attempts never contend beyond the map lookup.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Create registers a new session for the sampled questions.
func (m *SessionManager) Create(studentID, subject string, questions []*models.Question, timeLimit time.Duration) *Session {
	sess := newSession(studentID, subject, questions, timeLimit)
	m.mu.Lock()
	m.sessions[sess.Token] = sess
	m.mu.Unlock()
	return sess
}

// Get returns the session for token. An expired session is discarded on
// access: abandonment never persists anything.
func (m *SessionManager) Get(token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Expired() {
		delete(m.sessions, token)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove discards a session, either after a successful submit or on
// explicit abandonment.
func (m *SessionManager) Remove(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

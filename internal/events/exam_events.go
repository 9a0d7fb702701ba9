package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of exam lifecycle events
type EventType string

const (
	EventExamSubmitted     EventType = "exam.submitted"
	EventRecordDeleted     EventType = "exam_record.deleted"
	EventQuestionsImported EventType = "questions.imported"
)

// ExamEvent is the base event structure published after durable commits.
// Events are emitted only once the owning transaction has committed, so a
// consumer never sees an event for a rolled-back attempt.
type ExamEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

type ExamSubmittedEvent struct {
	RecordID       uint    `json:"record_id"`
	StudentID      string  `json:"student_id"`
	Subject        string  `json:"subject"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
}

type RecordDeletedEvent struct {
	RecordID  uint   `json:"record_id"`
	StudentID string `json:"student_id"`
	DeletedBy string `json:"deleted_by"`
}

type QuestionsImportedEvent struct {
	Subjects     []string `json:"subjects"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	ImportedBy   string   `json:"imported_by"`
}

// NewExamEvent builds an event envelope with a fresh id and timestamp.
func NewExamEvent(eventType EventType, data interface{}) *ExamEvent {
	return &ExamEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "exam-service",
		Version:   "1.0",
		Data:      data,
	}
}

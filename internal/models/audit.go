package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEventType string

const (
	AuditExamSubmitted     AuditEventType = "exam_submitted"
	AuditCommentUpdated    AuditEventType = "comment_updated"
	AuditRecordDeleted     AuditEventType = "record_deleted"
	AuditQuestionsImported AuditEventType = "questions_imported"
	AuditRecordsExported   AuditEventType = "records_exported"
)

// AuditLog captures admin-visible actions against durable exam data.
type AuditLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	EventType AuditEventType `json:"event_type" gorm:"not null;index;size:50"`

	// Actor information
	ActorID string `json:"actor_id" gorm:"not null;size:50;index"`

	// Target information
	TargetType string `json:"target_type" gorm:"size:50;index"` // exam_record, question, subject
	TargetID   *uint  `json:"target_id" gorm:"index"`

	Description string         `json:"description" gorm:"not null;type:text"`
	Metadata    datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

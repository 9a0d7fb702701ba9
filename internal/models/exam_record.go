package models

import "time"

// ExamRecord is the durable summary of one submitted attempt. Created
// exactly once per submission; only Comment is ever mutated afterwards.
type ExamRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	StudentID      string    `json:"student_id" gorm:"not null;size:50;index"`
	Subject        string    `json:"subject" gorm:"not null;size:100;index"`
	Score          int       `json:"score" gorm:"not null"`
	TotalQuestions int       `json:"total_questions" gorm:"not null"`
	ExamDate       time.Time `json:"exam_date" gorm:"column:exam_date;not null;index"`
	Comment        *string   `json:"comment" gorm:"type:text"`

	// Relations
	Student Student               `json:"-" gorm:"foreignKey:StudentID"`
	Details []StudentAnswerDetail `json:"details,omitempty" gorm:"foreignKey:ExamRecordID;constraint:OnDelete:CASCADE"`
}

func (ExamRecord) TableName() string {
	return "exam_records"
}

// Percentage returns the score as a percentage of the total.
func (r *ExamRecord) Percentage() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions) * 100
}

// StudentAnswerDetail is one graded question within an attempt. The question
// snapshot (text, options, type, correct answer) is denormalized at grading
// time so history review survives later question edits or deletions.
type StudentAnswerDetail struct {
	ID           uint  `json:"id" gorm:"primaryKey"`
	ExamRecordID uint  `json:"exam_record_id" gorm:"not null;index"`
	QuestionID   *uint `json:"question_id" gorm:"index"`

	StudentAnswer string `json:"student_answer" gorm:"size:500"`
	IsCorrect     bool   `json:"is_correct" gorm:"not null"`
	CorrectAnswer string `json:"correct_answer" gorm:"size:500"`

	// Question snapshot
	QuestionText string       `json:"question_text" gorm:"type:text"`
	OptionA      *string      `json:"option_a" gorm:"size:500"`
	OptionB      *string      `json:"option_b" gorm:"size:500"`
	OptionC      *string      `json:"option_c" gorm:"size:500"`
	OptionD      *string      `json:"option_d" gorm:"size:500"`
	QuestionType QuestionType `json:"question_type" gorm:"column:question_type;size:20"`

	// Relations
	Question *Question `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:SET NULL"`
}

func (StudentAnswerDetail) TableName() string {
	return "student_answer_details"
}

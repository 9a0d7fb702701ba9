package models

import "time"

type Student struct {
	ID       string `json:"id" gorm:"primaryKey;size:50" validate:"required,max=50"`
	Name     string `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	Password string `json:"-" gorm:"not null;size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}

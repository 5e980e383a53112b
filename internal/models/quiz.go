package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizDraft    QuizStatus = "Draft"
	QuizActive   QuizStatus = "Active"
	QuizArchived QuizStatus = "Archived"
)

type Quiz struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description  *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Status       QuizStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Active Archived"`
	PassingScore int        `json:"passing_score" gorm:"not null" validate:"required,min=1,max=100"`
	TimeLimit    int        `json:"time_limit" gorm:"default:0"` // Seconds, 0 means unlimited

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
	PossiblePoints int `json:"possible_points" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

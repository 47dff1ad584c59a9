package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileQuestion is a wizard question whose answers feed conditional element
// resolution. Reference data, keyed by a stable snake_case key.
type ProfileQuestion struct {
	gorm.Model
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key        string    `gorm:"uniqueIndex;not null;column:key" json:"key"`
	Text       string    `gorm:"not null;column:text" json:"text"`
	AnswerType string    `gorm:"not null;default:'boolean';column:answer_type" json:"answer_type"`
	SortOrder  int       `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (ProfileQuestion) TableName() string {
	return "profile_question"
}

// CompanyProfileAnswer stores one answer per (company, question key, site or
// company-wide). Answers are stored as strings; the evaluator knows how to
// read booleans and counts out of them.
type CompanyProfileAnswer struct {
	gorm.Model
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID  `gorm:"not null;uniqueIndex:idx_company_answer" json:"company_id"`
	Company     *Company   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	QuestionKey string     `gorm:"not null;uniqueIndex:idx_company_answer;column:question_key" json:"question_key"`
	SiteID      *uuid.UUID `gorm:"uniqueIndex:idx_company_answer;column:site_id" json:"site_id"`
	Site        *Site      `gorm:"constraint:OnDelete:CASCADE;foreignKey:SiteID;references:ID" json:"-"`
	Answer      string     `gorm:"not null;column:answer" json:"answer"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (CompanyProfileAnswer) TableName() string {
	return "company_profile_answer"
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AssignmentPending    = "pending"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
	AssignmentOverdue    = "overdue"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ElementAssignment delegates a single element or a whole E/S/G category to a
// user for data entry. It references the element's stable id, never a
// checklist row, so checklist regeneration cannot orphan it.
type ElementAssignment struct {
	gorm.Model
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID         `gorm:"not null;index" json:"company_id"`
	Company      *Company          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	ElementID    *uuid.UUID        `gorm:"index;column:element_id" json:"element_id"`
	Element      *FrameworkElement `gorm:"constraint:OnDelete:CASCADE;foreignKey:ElementID;references:ID" json:"element,omitempty"`
	Category     string            `gorm:"column:category" json:"category"`
	AssignedToID uuid.UUID         `gorm:"not null;index;column:assigned_to_id" json:"assigned_to_id"`
	AssignedTo   *User             `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignedToID;references:ID" json:"assigned_to,omitempty"`
	AssignedByID uuid.UUID         `gorm:"not null;column:assigned_by_id" json:"assigned_by_id"`
	Status       string            `gorm:"not null;default:'pending';column:status" json:"status"`
	Priority     string            `gorm:"not null;default:'medium';column:priority" json:"priority"`
	DueDate      *time.Time        `gorm:"column:due_date" json:"due_date"`
	Notes        string            `gorm:"type:text;column:notes" json:"notes"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`
}

func (ElementAssignment) TableName() string {
	return "element_assignment"
}

func ValidAssignmentStatus(s string) bool {
	switch s {
	case AssignmentPending, AssignmentInProgress, AssignmentCompleted, AssignmentOverdue:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

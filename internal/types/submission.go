package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InactivePeriodValue marks a reporting period the entity was not operating.
// Submissions carrying it are excluded from completion math entirely.
const InactivePeriodValue = "INACTIVE_PERIOD"

const (
	SubmissionMissing  = "missing"
	SubmissionPartial  = "partial"
	SubmissionComplete = "complete"
	SubmissionInactive = "inactive"
)

// SubmissionKey is the natural key of a DataSubmission.
type SubmissionKey struct {
	CompanyID uuid.UUID
	SiteID    *uuid.UUID
	ElementID uuid.UUID
	MeterID   *uuid.UUID
	Year      int
	Period    string
}

// DataSubmission is the atomic unit of reported data, keyed by
// (company, site, element, meter-or-null, year, period). Submissions are
// shared across all users of a company.
type DataSubmission struct {
	gorm.Model
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID         `gorm:"not null;index:idx_submission_scope" json:"company_id"`
	Company      *Company          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	SiteID       *uuid.UUID        `gorm:"index:idx_submission_scope;column:site_id" json:"site_id"`
	Site         *Site             `gorm:"constraint:OnDelete:CASCADE;foreignKey:SiteID;references:ID" json:"-"`
	ElementID    uuid.UUID         `gorm:"not null;index" json:"element_id"`
	Element      *FrameworkElement `gorm:"constraint:OnDelete:CASCADE;foreignKey:ElementID;references:ID" json:"element,omitempty"`
	MeterID      *uuid.UUID        `gorm:"index;column:meter_id" json:"meter_id"`
	Meter        *Meter            `gorm:"constraint:OnDelete:CASCADE;foreignKey:MeterID;references:ID" json:"meter,omitempty"`
	Year         int               `gorm:"not null;column:reporting_year" json:"reporting_year"`
	Period       string            `gorm:"not null;column:reporting_period" json:"reporting_period"`
	Value        string            `gorm:"column:value" json:"value"`
	EvidenceFile string            `gorm:"column:evidence_file" json:"evidence_file"`
	SubmittedBy  *uuid.UUID        `gorm:"column:submitted_by" json:"submitted_by"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`
}

func (DataSubmission) TableName() string {
	return "company_data_submission"
}

// Status is derived, never stored.
func (s *DataSubmission) Status() string {
	if s.Value == InactivePeriodValue {
		return SubmissionInactive
	}
	hasValue := s.Value != ""
	hasEvidence := s.EvidenceFile != ""
	switch {
	case hasValue && hasEvidence:
		return SubmissionComplete
	case hasValue || hasEvidence:
		return SubmissionPartial
	default:
		return SubmissionMissing
	}
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChecklistItem is one materialized row of a company's checklist. Rows are
// fully regenerable: the generator deletes and rebuilds them, so nothing else
// in the system may hold a foreign key to a checklist row id. Dependents
// reference the stable (company, site, element) key instead.
type ChecklistItem struct {
	gorm.Model
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID         `gorm:"not null;index:idx_checklist_scope" json:"company_id"`
	Company     *Company          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	SiteID      *uuid.UUID        `gorm:"index:idx_checklist_scope;column:site_id" json:"site_id"`
	Site        *Site             `gorm:"constraint:OnDelete:CASCADE;foreignKey:SiteID;references:ID" json:"-"`
	ElementID   uuid.UUID         `gorm:"not null;index" json:"element_id"`
	Element     *FrameworkElement `gorm:"constraint:OnDelete:CASCADE;foreignKey:ElementID;references:ID" json:"element,omitempty"`
	FrameworkID uuid.UUID         `gorm:"not null;index" json:"framework_id"`
	Cadence     string            `gorm:"not null;default:'annually';column:cadence" json:"cadence"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (ChecklistItem) TableName() string {
	return "company_checklist"
}

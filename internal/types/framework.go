package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	FrameworkMandatory            = "mandatory"
	FrameworkMandatoryConditional = "mandatory_conditional"
	FrameworkVoluntary            = "voluntary"
	FrameworkMaster               = "master"
)

const (
	ElementMustHave    = "must-have"
	ElementConditional = "conditional"

	CategoryEnvironmental = "E"
	CategorySocial        = "S"
	CategoryGovernance    = "G"

	CadenceMonthly   = "monthly"
	CadenceQuarterly = "quarterly"
	CadenceAnnually  = "annually"
)

func ValidCategory(c string) bool {
	switch c {
	case CategoryEnvironmental, CategorySocial, CategoryGovernance:
		return true
	}
	return false
}

// Framework is shared reference data: a named compliance standard, never owned
// by a tenant.
type Framework struct {
	gorm.Model
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code             string    `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Name             string    `gorm:"not null;column:name" json:"name"`
	Type             string    `gorm:"not null;column:type" json:"type"`
	Description      string    `gorm:"type:text;column:description" json:"description"`
	ConditionEmirate string    `gorm:"column:condition_emirate" json:"condition_emirate"`
	ConditionSector  string    `gorm:"column:condition_sector" json:"condition_sector"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (Framework) TableName() string {
	return "framework"
}

// FrameworkElement is one reporting requirement within a framework. CarbonSpecs
// holds the optional emission-calculation block (dependencies, factors) used by
// meter provisioning and task/meter matching.
type FrameworkElement struct {
	gorm.Model
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	FrameworkID    uuid.UUID         `gorm:"index;not null" json:"framework_id"`
	Framework      *Framework        `gorm:"constraint:OnDelete:CASCADE;foreignKey:FrameworkID;references:ID" json:"-"`
	Code           string            `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Name           string            `gorm:"not null;column:name" json:"name"`
	Description    string            `gorm:"type:text;column:description" json:"description"`
	Type           string            `gorm:"not null;default:'must-have';column:type" json:"type"`
	Category       string            `gorm:"not null;column:category" json:"category"`
	Sector         string            `gorm:"not null;default:'all';column:sector" json:"sector"`
	Cadence        string            `gorm:"column:cadence" json:"cadence"`
	Unit           string            `gorm:"column:unit" json:"unit"`
	IsMetered      bool              `gorm:"not null;default:false;column:is_metered" json:"is_metered"`
	MeterType      string            `gorm:"column:meter_type" json:"meter_type"`
	MeterScope     string            `gorm:"column:meter_scope" json:"meter_scope"`
	ConditionLogic string            `gorm:"type:text;column:condition_logic" json:"condition_logic"`
	CarbonSpecs    datatypes.JSONMap `gorm:"column:carbon_specs" json:"carbon_specs"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null" json:"updated_at"`
}

func (FrameworkElement) TableName() string {
	return "framework_element"
}

// CompanyFramework records adoption of a framework by a company. Auto-assigned
// rows are owned by the resolver and wiped on every reassignment; voluntary
// rows are only ever touched by the user.
type CompanyFramework struct {
	gorm.Model
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID      uuid.UUID  `gorm:"not null;uniqueIndex:idx_company_framework" json:"company_id"`
	Company        *Company   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	FrameworkID    uuid.UUID  `gorm:"not null;uniqueIndex:idx_company_framework" json:"framework_id"`
	Framework      *Framework `gorm:"constraint:OnDelete:CASCADE;foreignKey:FrameworkID;references:ID" json:"framework,omitempty"`
	IsAutoAssigned bool       `gorm:"not null;default:false;column:is_auto_assigned" json:"is_auto_assigned"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (CompanyFramework) TableName() string {
	return "company_framework"
}

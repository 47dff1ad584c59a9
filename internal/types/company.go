package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SectorHospitality = "hospitality"
	SectorGeneric     = "all"

	EmirateDubai = "dubai"
)

type Company struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID uuid.UUID `gorm:"not null;uniqueIndex:idx_company_owner_name" json:"owner_user_id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_company_owner_name;column:name" json:"name"`
	Emirate     string    `gorm:"not null;column:emirate" json:"emirate"`
	Sector      string    `gorm:"not null;column:sector" json:"sector"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Company) TableName() string {
	return "company"
}

type Site struct {
	gorm.Model
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"not null;uniqueIndex:idx_site_company_name" json:"company_id"`
	Company   *Company  `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	Name      string    `gorm:"not null;uniqueIndex:idx_site_company_name;column:name" json:"name"`
	Emirate   string    `gorm:"column:emirate" json:"emirate"`
	IsActive  bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Site) TableName() string {
	return "site"
}

// Activity is a reusable business-activity tag, globally namespaced by name.
// Custom activities remember the company that defined them.
type Activity struct {
	gorm.Model
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string     `gorm:"uniqueIndex;not null;column:name" json:"name"`
	IsCustom           bool       `gorm:"not null;default:false;column:is_custom" json:"is_custom"`
	CreatedByCompanyID *uuid.UUID `gorm:"column:created_by_company_id" json:"created_by_company_id"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (Activity) TableName() string {
	return "activity"
}

type CompanyActivity struct {
	gorm.Model
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  uuid.UUID `gorm:"not null;uniqueIndex:idx_company_activity" json:"company_id"`
	Company    *Company  `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	ActivityID uuid.UUID `gorm:"not null;uniqueIndex:idx_company_activity" json:"activity_id"`
	Activity   *Activity `gorm:"constraint:OnDelete:CASCADE;foreignKey:ActivityID;references:ID" json:"activity,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (CompanyActivity) TableName() string {
	return "company_activity"
}

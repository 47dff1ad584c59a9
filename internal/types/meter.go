package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MeterStatusActive   = "active"
	MeterStatusInactive = "inactive"

	MeterTypeElectricity = "electricity"
	MeterTypeWater       = "water"
	MeterTypeWaste       = "waste"
	MeterTypeGenerator   = "generator"
	MeterTypeVehicle     = "vehicle"
	MeterTypeLPG         = "lpg"
	MeterTypeRenewable   = "renewable"
	MeterTypeCooling     = "district_cooling"
)

// MeterTypeVocabulary is the fixed set of type labels used when matching
// checklist elements to meters by name keyword.
var MeterTypeVocabulary = []string{
	MeterTypeElectricity,
	MeterTypeWater,
	MeterTypeWaste,
	MeterTypeGenerator,
	MeterTypeVehicle,
	MeterTypeLPG,
	MeterTypeRenewable,
	MeterTypeCooling,
}

type Meter struct {
	gorm.Model
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID     uuid.UUID  `gorm:"not null;index:idx_meter_scope" json:"company_id"`
	Company       *Company   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	SiteID        *uuid.UUID `gorm:"index:idx_meter_scope;column:site_id" json:"site_id"`
	Site          *Site      `gorm:"constraint:OnDelete:CASCADE;foreignKey:SiteID;references:ID" json:"-"`
	Name          string     `gorm:"not null;column:name" json:"name"`
	Type          string     `gorm:"not null;column:type" json:"type"`
	Status        string     `gorm:"not null;default:'active';column:status" json:"status"`
	IsAutoCreated bool       `gorm:"not null;default:false;column:is_auto_created" json:"is_auto_created"`
	SerialNumber  string     `gorm:"column:serial_number" json:"serial_number"`
	Location      string     `gorm:"column:location" json:"location"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (Meter) TableName() string {
	return "meter"
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password      string     `gorm:"not null;column:password" json:"-"`
	FirstName     string     `gorm:"not null;column:first_name" json:"first_name"`
	LastName      string     `gorm:"not null;column:last_name" json:"last_name"`
	Role          string     `gorm:"not null;default:'viewer';column:role" json:"role"`
	CompanyID     *uuid.UUID `gorm:"index;column:company_id" json:"company_id"`
	EmailVerified bool       `gorm:"not null;default:false;column:email_verified" json:"email_verified"`
	AvatarDataURL string     `gorm:"type:text;column:avatar_data_url" json:"avatar_data_url"`
	AvatarColor   string     `gorm:"column:avatar_color" json:"avatar_color"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

type UserToken struct {
	gorm.Model
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"index;not null" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	AccessToken  string    `gorm:"uniqueIndex;not null;column:access_token" json:"access_token"`
	RefreshToken string    `gorm:"uniqueIndex;not null;column:refresh_token" json:"refresh_token"`
	ExpiresAt    time.Time `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (UserToken) TableName() string {
	return "user_token"
}

const (
	EmailTokenVerify        = "verify_email"
	EmailTokenInvite        = "invite"
	EmailTokenPasswordReset = "password_reset"
)

// EmailToken records verification, invitation and password-reset tokens.
// Delivery happens outside this service; we only create and consume records.
type EmailToken struct {
	gorm.Model
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"index;not null" json:"user_id"`
	User      *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Purpose   string     `gorm:"not null;column:purpose" json:"purpose"`
	Token     string     `gorm:"uniqueIndex;not null;column:token" json:"-"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at"`
	ExpiresAt time.Time  `gorm:"not null;column:expires_at" json:"expires_at"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (EmailToken) TableName() string {
	return "email_token"
}

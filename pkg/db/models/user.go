package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
)

// User represents the canonical identity entity. Farmers start out
// unapproved and cannot list products until an admin approves them.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null;default:user"`
	Phone        *string        `gorm:"column:phone"`
	FarmName     *string        `gorm:"column:farm_name"`
	FarmLocation *string        `gorm:"column:farm_location"`
	IsApproved   bool           `gorm:"column:is_approved;not null;default:false"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

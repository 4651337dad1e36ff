package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillworks/tillpoint-backend/pkg/enums"
)

// User is a register operator (cashier, manager, or admin).
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string          `gorm:"column:username;not null;uniqueIndex"`
	FullName     string          `gorm:"column:full_name;not null"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.StaffRole `gorm:"column:role;type:staff_role;not null;default:'cashier'"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

package model

import "time"

// Identity row. One per email.
type Identity struct {
	ID            string    `gorm:"primaryKey;column:identity_id;type:varchar(36)"`
	Email         string    `gorm:"column:email;type:varchar(191);uniqueIndex"`
	EmailVerified bool      `gorm:"column:email_verified"`
	PasswordHash  string    `gorm:"column:password_hash;type:varchar(255)"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (Identity) TableName() string { return "identities" }

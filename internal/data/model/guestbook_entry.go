package model

import "time"

// GuestbookEntry row.
type GuestbookEntry struct {
	ID         string    `gorm:"primaryKey;column:entry_id;type:varchar(36)"`
	MemorialID string    `gorm:"column:memorial_id;type:varchar(36);index:idx_guestbook_memorial_status,priority:1"`
	GuestName  string    `gorm:"column:guest_name;type:varchar(191)"`
	Message    string    `gorm:"column:message;type:text"`
	Status     string    `gorm:"column:status;type:varchar(20);index:idx_guestbook_memorial_status,priority:2"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (GuestbookEntry) TableName() string { return "guestbook_entries" }

package model

import "time"

// Memorial row.
type Memorial struct {
	ID                string    `gorm:"primaryKey;column:memorial_id;type:varchar(36)"`
	OwnerID           string    `gorm:"column:owner_id;type:varchar(36);index:idx_memorials_owner_status,priority:1"`
	Name              string    `gorm:"column:name;type:varchar(191)"`
	Slug              string    `gorm:"column:slug;type:varchar(191);uniqueIndex"`
	DateOfBirth       string    `gorm:"column:date_of_birth;type:varchar(10)"`
	DateOfDeath       string    `gorm:"column:date_of_death;type:varchar(10)"`
	Biography         string    `gorm:"column:biography;type:text"`
	HeroImage         string    `gorm:"column:hero_image;type:varchar(500)"`
	Avatar            string    `gorm:"column:avatar;type:varchar(500)"`
	AutoApproveGuests bool      `gorm:"column:auto_approve_guests"`
	Status            string    `gorm:"column:status;type:varchar(20);index:idx_memorials_owner_status,priority:2"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (Memorial) TableName() string { return "memorials" }

// GalleryItem row. Owned exclusively by its memorial; replaced wholesale on
// save.
type GalleryItem struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement;column:gallery_item_id"`
	MemorialID string `gorm:"column:memorial_id;type:varchar(36);index"`
	URL        string `gorm:"column:url;type:varchar(500)"`
	AltText    string `gorm:"column:alt_text;type:varchar(191)"`
	Position   int    `gorm:"column:position"`
}

func (GalleryItem) TableName() string { return "gallery_items" }

// FamilyMember row. Same ownership and save semantics as GalleryItem.
type FamilyMember struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement;column:family_member_id"`
	MemorialID   string `gorm:"column:memorial_id;type:varchar(36);index"`
	Name         string `gorm:"column:name;type:varchar(191)"`
	Relationship string `gorm:"column:relationship;type:varchar(20)"`
}

func (FamilyMember) TableName() string { return "family_members" }

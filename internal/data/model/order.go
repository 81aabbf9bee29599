package model

import "time"

// Order row. Written by the payment webhook, never deleted.
type Order struct {
	ID            string    `gorm:"primaryKey;column:order_id;type:varchar(36)"`
	Email         string    `gorm:"column:email;type:varchar(191);index"`
	PaymentRef    string    `gorm:"column:payment_ref;type:varchar(191);uniqueIndex"`
	Status        string    `gorm:"column:status;type:varchar(20);index"`
	Amount        int64     `gorm:"column:amount"`
	Currency      string    `gorm:"column:currency;type:varchar(3)"`
	PurchaseToken string    `gorm:"column:purchase_token;type:varchar(191);uniqueIndex"`
	MemorialID    string    `gorm:"column:memorial_id;type:varchar(36)"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (Order) TableName() string { return "orders" }

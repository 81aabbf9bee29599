package constants

import "time"

// Purchase token constants
const (
	// PurchaseTokenTTL is how long a purchase token stays valid, measured
	// from order creation. A leaked redirect URL stops working after a day.
	PurchaseTokenTTL = 24 * time.Hour
	// PurchaseTokenRandomBytes is the size of the random token suffix.
	PurchaseTokenRandomBytes = 4
)

// Session constants
const (
	// DefaultSessionTTL is used when app.session_ttl is not configured.
	DefaultSessionTTL = 30 * 24 * time.Hour
)

// Entitlement constants
const (
	// PublishQuota is the maximum number of simultaneously published
	// memorials per identity.
	PublishQuota = 1
)

// Pagination constants
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Distributed lock constants
const (
	// PublishLockExpiration bounds how long a publish attempt may hold the
	// per-identity mutex.
	PublishLockExpiration = 30 * time.Second
	// PublishLockRetries is the number of lock acquisition retries.
	PublishLockRetries = 1
)

// Cron sweep constants
const (
	// DefaultStalePendingDays is how long an order may sit in pending before
	// the sweep marks it failed.
	DefaultStalePendingDays = 7
)

// Supported UI locales. Canonical URLs are unprefixed (English).
var SupportedLocales = map[string]bool{
	"en": true,
	"de": true,
	"fr": true,
	"es": true,
}

// DefaultLocale is the canonical, unprefixed locale.
const DefaultLocale = "en"

// Order status
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
	OrderStatusRefunded  = "refunded"
)

// Memorial status
const (
	MemorialStatusDraft     = "draft"
	MemorialStatusPending   = "pending"
	MemorialStatusPublished = "published"
)

// Guestbook entry status
const (
	GuestbookStatusPending  = "pending"
	GuestbookStatusApproved = "approved"
	GuestbookStatusRejected = "rejected"
)

// Family relationship values accepted on a family member row.
var FamilyRelationships = map[string]bool{
	"parent":     true,
	"spouse":     true,
	"child":      true,
	"sibling":    true,
	"grandchild": true,
}

package errors

import (
	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// Memorial-service error codes.
// Code format: SSMMEE (6 digits), SS=42 for memorial-service.
// Module blocks:
//   01: purchase verification
//   02: identity & session
//   03: memorial lifecycle
//   04: guestbook
//   05: payment webhook

// Purchase verification (420100-420199)
const (
	// ErrCodeMissingToken no purchase token supplied
	ErrCodeMissingToken = 420101
	// ErrCodeInvalidOrExpiredToken token matches no completed order
	ErrCodeInvalidOrExpiredToken = 420102
	// ErrCodeTokenExpired order is older than the token TTL
	ErrCodeTokenExpired = 420103
	// ErrCodeEmailMismatch supplied email differs from the paying email
	ErrCodeEmailMismatch = 420104
)

// Identity & session (420200-420299)
const (
	// ErrCodeInvalidCredentials email/password pair rejected
	ErrCodeInvalidCredentials = 420201
	// ErrCodeEmailTaken registration against an existing email
	ErrCodeEmailTaken = 420202
	// ErrCodeSessionNotFound session token unknown or expired
	ErrCodeSessionNotFound = 420203
)

// Memorial lifecycle (420300-420399)
const (
	// ErrCodeMemorialNotFound memorial does not exist
	ErrCodeMemorialNotFound = 420301
	// ErrCodeQuotaExceeded publish quota already consumed
	ErrCodeQuotaExceeded = 420302
	// ErrCodeSlugTaken slug collides with an existing memorial
	ErrCodeSlugTaken = 420303
	// ErrCodeIncompleteMemorial publish attempted without required fields
	ErrCodeIncompleteMemorial = 420304
	// ErrCodePublishLockBusy another publish attempt holds the lock
	ErrCodePublishLockBusy = 420305
)

// Guestbook (420400-420499)
const (
	// ErrCodeEntryNotFound guestbook entry does not exist
	ErrCodeEntryNotFound = 420401
	// ErrCodeEntryInvalid entry failed validation
	ErrCodeEntryInvalid = 420402
	// ErrCodeEntryAlreadyModerated entry left the pending state already
	ErrCodeEntryAlreadyModerated = 420403
)

// Payment webhook (420500-420599)
const (
	// ErrCodeWebhookSignature webhook signature verification failed
	ErrCodeWebhookSignature = 420501
	// ErrCodeOrderNotFound order does not exist
	ErrCodeOrderNotFound = 420502
)

func ErrMissingToken() *kerrors.Error {
	return kerrors.New(ErrCodeMissingToken, "MissingToken", "purchase token is required")
}

func ErrInvalidOrExpiredToken() *kerrors.Error {
	return kerrors.New(ErrCodeInvalidOrExpiredToken, "InvalidOrExpiredToken", "purchase token is invalid or no longer valid")
}

func ErrTokenExpired() *kerrors.Error {
	return kerrors.New(ErrCodeTokenExpired, "TokenExpired", "purchase token has expired")
}

func ErrEmailMismatch() *kerrors.Error {
	return kerrors.New(ErrCodeEmailMismatch, "EmailMismatch", "email does not match the purchase")
}

func ErrInvalidCredentials() *kerrors.Error {
	return kerrors.New(ErrCodeInvalidCredentials, "InvalidCredentials", "invalid email or password")
}

func ErrEmailTaken() *kerrors.Error {
	return kerrors.New(ErrCodeEmailTaken, "EmailTaken", "an account with this email already exists")
}

func ErrSessionNotFound() *kerrors.Error {
	return kerrors.New(ErrCodeSessionNotFound, "SessionNotFound", "session is missing or expired")
}

func ErrMemorialNotFound() *kerrors.Error {
	return kerrors.New(ErrCodeMemorialNotFound, "MemorialNotFound", "memorial not found")
}

// ErrQuotaExceeded carries the purchase URL so callers can route the user
// toward acquiring another entitlement.
func ErrQuotaExceeded(purchaseURL string) *kerrors.Error {
	return kerrors.New(ErrCodeQuotaExceeded, "QuotaExceeded", "publish quota reached").
		WithMetadata(map[string]string{"purchase_url": purchaseURL})
}

func ErrSlugTaken() *kerrors.Error {
	return kerrors.New(ErrCodeSlugTaken, "SlugTaken", "this memorial address is already in use")
}

func ErrIncompleteMemorial(field string) *kerrors.Error {
	return kerrors.New(ErrCodeIncompleteMemorial, "IncompleteMemorial", "memorial is missing required fields").
		WithMetadata(map[string]string{"field": field})
}

func ErrPublishLockBusy() *kerrors.Error {
	return kerrors.New(ErrCodePublishLockBusy, "PublishLockBusy", "another publish attempt is in progress")
}

func ErrEntryNotFound() *kerrors.Error {
	return kerrors.New(ErrCodeEntryNotFound, "EntryNotFound", "guestbook entry not found")
}

func ErrEntryInvalid(field string) *kerrors.Error {
	return kerrors.New(ErrCodeEntryInvalid, "EntryInvalid", "guestbook entry failed validation").
		WithMetadata(map[string]string{"field": field})
}

func ErrEntryAlreadyModerated() *kerrors.Error {
	return kerrors.New(ErrCodeEntryAlreadyModerated, "EntryAlreadyModerated", "guestbook entry was already moderated")
}

func ErrWebhookSignature() *kerrors.Error {
	return kerrors.New(ErrCodeWebhookSignature, "WebhookSignature", "webhook signature verification failed")
}

func ErrOrderNotFound() *kerrors.Error {
	return kerrors.New(ErrCodeOrderNotFound, "OrderNotFound", "order not found")
}

package auth

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
)

type contextKey string

const (
	// IdentityIDKey context key for the authenticated identity id (UUID string)
	IdentityIDKey contextKey = "identity_id"
	// EmailKey context key for the authenticated email
	EmailKey contextKey = "email"
	// LocaleKey context key for the request locale
	LocaleKey contextKey = "locale"
)

// Session is the state bound to one authenticated browser session. It is
// threaded explicitly; there is no ambient global auth state.
type Session struct {
	Token      string `json:"token"`
	IdentityID string `json:"identity_id"`
	Email      string `json:"email"`
	// OrderID links the session to the purchase that created it, when the
	// session came through the purchase-login path. Empty for password logins.
	OrderID string `json:"order_id,omitempty"`
}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identityID, email string) context.Context {
	ctx = context.WithValue(ctx, IdentityIDKey, identityID)
	return context.WithValue(ctx, EmailKey, email)
}

// IdentityFromContext returns the authenticated identity id, if any.
func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(IdentityIDKey).(string)
	return id, ok
}

// EmailFromContext returns the authenticated email, if any.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// WithLocale returns a context carrying the request locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, LocaleKey, locale)
}

// LocaleFromContext returns the request locale, if any.
func LocaleFromContext(ctx context.Context) (string, bool) {
	locale, ok := ctx.Value(LocaleKey).(string)
	return locale, ok
}

// CheckOwnership verifies the current identity owns the given resource.
func CheckOwnership(ctx context.Context, ownerID string) error {
	currentID, ok := IdentityFromContext(ctx)
	if !ok {
		return errors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	if currentID != ownerID {
		return errors.Forbidden("FORBIDDEN", "permission denied: you can only access your own resources")
	}
	return nil
}

package crypto

import "context"

// PasswordHasher abstracts the password hashing algorithm away from the
// business layer.
type PasswordHasher interface {
	HashPassword(ctx context.Context, password string) (string, error)
	VerifyPassword(ctx context.Context, password, encodedHash string) (bool, error)
}

package crypto

import "github.com/google/wire"

// ProviderSet is crypto providers.
var ProviderSet = wire.NewSet(NewDefaultHasher)

// NewDefaultHasher returns the hasher with default cost parameters.
func NewDefaultHasher() PasswordHasher {
	return NewArgon2Hasher(nil)
}

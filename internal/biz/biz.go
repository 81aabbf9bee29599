package biz

import (
	"context"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewWebhookUsecase,
	NewVerificationUsecase,
	NewAuthUsecase,
	NewEntitlementUsecase,
	NewMemorialUsecase,
	NewGuestbookUsecase,
)

// Transaction runs fn inside a single database transaction. Repositories
// called with the derived context join that transaction.
type Transaction interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}

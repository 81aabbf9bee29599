package biz

import (
	"context"

	"everkeep/memorial-service/internal/conf"
	"everkeep/memorial-service/internal/constants"
	"everkeep/memorial-service/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// EntitlementUsecase answers whether an identity may publish another
// memorial. Policy evaluation only; routing a denied user to the purchase
// flow is the caller's concern, helped along by the purchase URL carried in
// the denial error metadata.
type EntitlementUsecase struct {
	memorialRepo MemorialRepo
	purchaseURL  string
	quota        int
	log          *log.Helper
}

// NewEntitlementUsecase creates the entitlement gate.
func NewEntitlementUsecase(memorialRepo MemorialRepo, c *conf.Bootstrap, logger log.Logger) *EntitlementUsecase {
	purchaseURL := ""
	if c != nil && c.App != nil {
		purchaseURL = c.App.PurchaseURL
	}
	return &EntitlementUsecase{
		memorialRepo: memorialRepo,
		purchaseURL:  purchaseURL,
		quota:        constants.PublishQuota,
		log:          log.NewHelper(logger),
	}
}

// CanPublish reports whether the identity's published count is under quota.
// Callers that are about to flip a status must run this inside the same
// transaction as the write and hold the per-identity publish lock; the bare
// count is advisory otherwise.
func (uc *EntitlementUsecase) CanPublish(ctx context.Context, identityID string) (bool, error) {
	count, err := uc.memorialRepo.CountPublished(ctx, identityID)
	if err != nil {
		uc.log.Errorf("Failed to count published memorials for %s: %v", identityID, err)
		return false, err
	}
	return count < int64(uc.quota), nil
}

// AssertCanPublish is CanPublish for use directly before a publish mutation.
func (uc *EntitlementUsecase) AssertCanPublish(ctx context.Context, identityID string) error {
	ok, err := uc.CanPublish(ctx, identityID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrQuotaExceeded(uc.purchaseURL)
	}
	return nil
}

package biz

import (
	"context"
	"strings"
	"time"

	"everkeep/memorial-service/internal/constants"
	"everkeep/memorial-service/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// Verification is the result of a successful purchase-token check: the
// authoritative paying email and the order it belongs to.
type Verification struct {
	Email   string
	OrderID string
}

// VerificationUsecase validates purchase tokens against the order store.
// Pure read path; the identity side effect belongs to AuthUsecase.
type VerificationUsecase struct {
	orderRepo OrderRepo
	log       *log.Helper
}

// NewVerificationUsecase creates the verification usecase.
func NewVerificationUsecase(orderRepo OrderRepo, logger log.Logger) *VerificationUsecase {
	return &VerificationUsecase{
		orderRepo: orderRepo,
		log:       log.NewHelper(logger),
	}
}

// Verify checks a purchase token and optional email hint. Idempotent: the
// same valid token verifies to the same result on every call. Failures are
// terminal per attempt; retrying the same invalid token cannot succeed.
func (uc *VerificationUsecase) Verify(ctx context.Context, token, emailHint string) (*Verification, error) {
	if token == "" {
		return nil, errors.ErrMissingToken()
	}

	order, err := uc.orderRepo.GetOrderByToken(ctx, token)
	if err != nil {
		uc.log.Errorf("Failed to look up purchase token: %v", err)
		return nil, err
	}
	// Wrong token and token on a non-completed order are indistinguishable
	// to the caller on purpose.
	if order == nil || order.Status != constants.OrderStatusCompleted {
		return nil, errors.ErrInvalidOrExpiredToken()
	}

	if emailHint != "" && !strings.EqualFold(emailHint, order.Email) {
		return nil, errors.ErrEmailMismatch()
	}

	// TTL is measured from order creation, at verification time. A leaked
	// redirect URL stops working after a day.
	if time.Now().UTC().Sub(order.CreatedAt) > constants.PurchaseTokenTTL {
		return nil, errors.ErrTokenExpired()
	}

	return &Verification{Email: order.Email, OrderID: order.ID}, nil
}

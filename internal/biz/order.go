package biz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"everkeep/memorial-service/internal/constants"
	"everkeep/memorial-service/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Order records one payment attempt and its outcome. Orders are written by
// the payment webhook and never deleted.
type Order struct {
	ID         string
	Email      string
	PaymentRef string
	Status     string // pending, completed, failed, refunded
	Amount     int64  // minor currency units
	Currency   string
	// PurchaseToken is the single-use credential minted when the order
	// completes. Immutable once issued.
	PurchaseToken string
	MemorialID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderRepo is the order storage interface. Lookups return (nil, nil) when
// no row matches.
type OrderRepo interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByToken(ctx context.Context, token string) (*Order, error)
	GetOrderByPaymentRef(ctx context.Context, paymentRef string) (*Order, error)
	UpdateOrder(ctx context.Context, order *Order) error
	// MarkStalePendingFailed fails orders stuck in pending since before the
	// cutoff. Returns the affected count and order ids.
	MarkStalePendingFailed(ctx context.Context, cutoff time.Time) (int, []string, error)
}

// PaymentEventKind classifies a normalized payment-processor event.
type PaymentEventKind string

const (
	PaymentSucceeded PaymentEventKind = "succeeded"
	PaymentFailed    PaymentEventKind = "failed"
	// PaymentIgnored marks event types the service does not act on.
	PaymentIgnored PaymentEventKind = "ignored"
)

// PaymentEvent is a processor-neutral view of an inbound webhook event.
type PaymentEvent struct {
	Kind         PaymentEventKind
	PaymentRef   string
	Email        string
	Amount       int64
	Currency     string
	ErrorCode    string
	ErrorMessage string
}

// PaymentEventVerifier checks the webhook signature and maps the raw payload
// to a PaymentEvent. Anti-corruption layer over the processor SDK.
type PaymentEventVerifier interface {
	VerifyAndParse(payload []byte, signature string) (*PaymentEvent, error)
}

// WebhookUsecase is the write path behind the payment webhook.
type WebhookUsecase struct {
	orderRepo OrderRepo
	verifier  PaymentEventVerifier
	tm        Transaction
	log       *log.Helper
}

// NewWebhookUsecase creates the webhook usecase.
func NewWebhookUsecase(orderRepo OrderRepo, verifier PaymentEventVerifier, tm Transaction, logger log.Logger) *WebhookUsecase {
	return &WebhookUsecase{
		orderRepo: orderRepo,
		verifier:  verifier,
		tm:        tm,
		log:       log.NewHelper(logger),
	}
}

// HandleEvent verifies and processes one raw webhook delivery. Signature
// failure aborts before any state change.
func (uc *WebhookUsecase) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := uc.verifier.VerifyAndParse(payload, signature)
	if err != nil {
		uc.log.Errorf("Webhook signature verification failed: %v", err)
		return errors.ErrWebhookSignature()
	}
	if event == nil || event.Kind == PaymentIgnored {
		return nil
	}

	switch event.Kind {
	case PaymentSucceeded:
		return uc.handleSucceeded(ctx, event)
	case PaymentFailed:
		return uc.handleFailed(ctx, event)
	}
	return nil
}

// handleSucceeded records a completed order and mints its purchase token.
// Replayed deliveries find the completed order and return without minting a
// second token.
func (uc *WebhookUsecase) handleSucceeded(ctx context.Context, event *PaymentEvent) error {
	uc.log.Infof("Payment succeeded: ref=%s, amount=%d %s", event.PaymentRef, event.Amount, event.Currency)

	return uc.tm.Exec(ctx, func(ctx context.Context) error {
		order, err := uc.orderRepo.GetOrderByPaymentRef(ctx, event.PaymentRef)
		if err != nil {
			return err
		}

		if order != nil {
			if order.Status == constants.OrderStatusCompleted {
				uc.log.Infof("Order %s already completed, skipping (idempotent)", order.ID)
				return nil
			}
			order.Status = constants.OrderStatusCompleted
			if order.PurchaseToken == "" {
				order.PurchaseToken = mintPurchaseToken(event.PaymentRef)
			}
			if event.Email != "" {
				order.Email = strings.ToLower(event.Email)
			}
			order.UpdatedAt = time.Now().UTC()
			return uc.orderRepo.UpdateOrder(ctx, order)
		}

		now := time.Now().UTC()
		order = &Order{
			ID:            uuid.New().String(),
			Email:         strings.ToLower(event.Email),
			PaymentRef:    event.PaymentRef,
			Status:        constants.OrderStatusCompleted,
			Amount:        event.Amount,
			Currency:      event.Currency,
			PurchaseToken: mintPurchaseToken(event.PaymentRef),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uc.orderRepo.CreateOrder(ctx, order); err != nil {
			uc.log.Errorf("Failed to create order for payment %s: %v", event.PaymentRef, err)
			return err
		}
		uc.log.Infof("Created completed order %s for payment %s", order.ID, event.PaymentRef)
		return nil
	})
}

// handleFailed marks the matching order failed. A completed order is left
// untouched; failure events can arrive out of order on retried charges.
func (uc *WebhookUsecase) handleFailed(ctx context.Context, event *PaymentEvent) error {
	uc.log.Infof("Payment failed: ref=%s, code=%s", event.PaymentRef, event.ErrorCode)

	order, err := uc.orderRepo.GetOrderByPaymentRef(ctx, event.PaymentRef)
	if err != nil {
		return err
	}
	if order == nil {
		uc.log.Infof("No order for failed payment %s, ignoring", event.PaymentRef)
		return nil
	}
	if order.Status == constants.OrderStatusCompleted {
		return nil
	}

	order.Status = constants.OrderStatusFailed
	order.UpdatedAt = time.Now().UTC()
	return uc.orderRepo.UpdateOrder(ctx, order)
}

// SweepStalePending fails orders abandoned in pending for longer than
// maxAgeDays. Run by the cron binary.
func (uc *WebhookUsecase) SweepStalePending(ctx context.Context, maxAgeDays int) (int, []string, error) {
	if maxAgeDays < 1 {
		maxAgeDays = constants.DefaultStalePendingDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)

	count, ids, err := uc.orderRepo.MarkStalePendingFailed(ctx, cutoff)
	if err != nil {
		uc.log.Errorf("Failed to sweep stale pending orders: %v", err)
		return 0, nil, err
	}
	uc.log.Infof("Marked %d stale pending orders failed", count)
	return count, ids, nil
}

// mintPurchaseToken derives the single-use purchase credential. Uniqueness
// comes from the random suffix; the payment reference ties the token to the
// charge it came from.
func mintPurchaseToken(paymentRef string) string {
	buf := make([]byte, constants.PurchaseTokenRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in a bad state
		panic(err)
	}
	return fmt.Sprintf("%s-%d-%s", paymentRef, time.Now().UnixMilli(), hex.EncodeToString(buf))
}

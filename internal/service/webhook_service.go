package service

import (
	"context"

	"everkeep/memorial-service/internal/biz"
)

// WebhookService fronts the payment webhook receiver.
type WebhookService struct {
	uc *biz.WebhookUsecase
}

// NewWebhookService creates the webhook service.
func NewWebhookService(uc *biz.WebhookUsecase) *WebhookService {
	return &WebhookService{uc: uc}
}

type WebhookReply struct {
	Received bool `json:"received"`
}

// HandlePaymentEvent processes one raw webhook delivery.
func (s *WebhookService) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) (*WebhookReply, error) {
	if err := s.uc.HandleEvent(ctx, payload, signature); err != nil {
		return nil, err
	}
	return &WebhookReply{Received: true}, nil
}

package data

import (
	"encoding/json"

	"everkeep/memorial-service/internal/biz"
	"everkeep/memorial-service/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

type stripeVerifier struct {
	secret string
	log    *log.Helper
}

// NewPaymentEventVerifier creates the Stripe-backed webhook verifier.
// Anti-corruption layer: the rest of the service only sees PaymentEvent.
func NewPaymentEventVerifier(c *conf.Bootstrap, logger log.Logger) biz.PaymentEventVerifier {
	secret := ""
	if c != nil && c.Payment != nil {
		secret = c.Payment.WebhookSecret
	}
	return &stripeVerifier{
		secret: secret,
		log:    log.NewHelper(logger),
	}
}

// VerifyAndParse checks the signature before touching the payload, then maps
// the event to the processor-neutral shape. Event types the service does not
// act on come back as PaymentIgnored.
func (v *stripeVerifier) VerifyAndParse(payload []byte, signature string) (*biz.PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, v.secret)
	if err != nil {
		return nil, err
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, err
		}
		return &biz.PaymentEvent{
			Kind:       biz.PaymentSucceeded,
			PaymentRef: pi.ID,
			Email:      payerEmail(&pi),
			Amount:     pi.Amount,
			Currency:   string(pi.Currency),
		}, nil

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, err
		}
		out := &biz.PaymentEvent{
			Kind:       biz.PaymentFailed,
			PaymentRef: pi.ID,
		}
		if pi.LastPaymentError != nil {
			out.ErrorCode = string(pi.LastPaymentError.Code)
			out.ErrorMessage = pi.LastPaymentError.Msg
		}
		return out, nil

	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, err
		}
		out := &biz.PaymentEvent{
			Kind:     biz.PaymentSucceeded,
			Amount:   cs.AmountTotal,
			Currency: string(cs.Currency),
		}
		if cs.PaymentIntent != nil {
			out.PaymentRef = cs.PaymentIntent.ID
		}
		if cs.CustomerDetails != nil {
			out.Email = cs.CustomerDetails.Email
		}
		if out.PaymentRef == "" {
			// Sessions paid without a payment intent (free promotions) key
			// on the session id instead.
			out.PaymentRef = cs.ID
		}
		return out, nil
	}

	v.log.Infof("Ignoring webhook event type %s", event.Type)
	return &biz.PaymentEvent{Kind: biz.PaymentIgnored}, nil
}

// payerEmail prefers the receipt email and falls back to checkout metadata.
func payerEmail(pi *stripe.PaymentIntent) string {
	if pi.ReceiptEmail != "" {
		return pi.ReceiptEmail
	}
	if email, ok := pi.Metadata["email"]; ok {
		return email
	}
	return ""
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luxaccount/media-platform/internal/domain"
)

// Tier prices in cents. The Stripe integration is stubbed: identifiers
// are generated locally and the webhook trusts its payload.
var tierPrices = map[domain.SubscriptionTier]int64{
	domain.TierPremium:    1999,
	domain.TierEnterprise: 9999,
}

type checkoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=premium enterprise"`
}

type paymentResponse struct {
	ID             string     `json:"id"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	MethodType     string     `json:"method_type,omitempty"`
	MethodBrand    string     `json:"method_brand,omitempty"`
	MethodLast4    string     `json:"method_last4,omitempty"`
	FailureMessage string     `json:"failure_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:             p.ID,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		Description:    p.Description,
		Status:         string(p.Status),
		MethodType:     p.MethodType,
		MethodBrand:    p.MethodBrand,
		MethodLast4:    p.MethodLast4,
		FailureMessage: p.FailureMessage,
		CreatedAt:      p.CreatedAt,
		PaidAt:         p.PaidAt,
	}
}

// PaymentCheckout opens a pending payment for a tier upgrade and returns
// a checkout session reference.
func (a *App) PaymentCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !a.decode(w, r, &req) {
		return
	}
	tier := domain.SubscriptionTier(req.Tier)
	amount := tierPrices[tier]

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:              uuid.NewString(),
		UserID:          a.currentUserID(r),
		AmountCents:     amount,
		Currency:        "usd",
		Description:     fmt.Sprintf("%s subscription", tier),
		StripeSessionID: "cs_test_" + uuid.NewString(),
		Status:          domain.PaymentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.Payments.Create(r.Context(), payment); err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"payment":      toPaymentResponse(payment),
		"session_id":   payment.StripeSessionID,
		"checkout_url": fmt.Sprintf("https://checkout.stripe.com/pay/%s", payment.StripeSessionID),
	})
}

// PaymentIntent opens a pending payment for a one-off charge and returns
// a payment intent reference with a stub client secret.
func (a *App) PaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !a.decode(w, r, &req) {
		return
	}
	tier := domain.SubscriptionTier(req.Tier)
	amount := tierPrices[tier]

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:                    uuid.NewString(),
		UserID:                a.currentUserID(r),
		AmountCents:           amount,
		Currency:              "usd",
		Description:           fmt.Sprintf("%s subscription", tier),
		StripePaymentIntentID: "pi_test_" + uuid.NewString(),
		Status:                domain.PaymentStatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := a.Payments.Create(r.Context(), payment); err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"payment":           toPaymentResponse(payment),
		"payment_intent_id": payment.StripePaymentIntentID,
		"client_secret":     payment.StripePaymentIntentID + "_secret_" + uuid.NewString(),
	})
}

func (a *App) PaymentList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), 20)
	if limit > 100 {
		limit = 100
	}
	offset := queryInt(q.Get("offset"), 0)
	payments, total, err := a.Payments.ListByUser(r.Context(), a.currentUserID(r), limit, offset)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	items := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, toPaymentResponse(&payments[i]))
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (a *App) PaymentGet(w http.ResponseWriter, r *http.Request) {
	payment, err := a.Payments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	if payment.UserID != a.currentUserID(r) {
		a.error(w, http.StatusForbidden, "access_denied", "payment belongs to another user")
		return
	}
	a.json(w, http.StatusOK, toPaymentResponse(payment))
}

type webhookPayload struct {
	SessionID string `json:"session_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Tier      string `json:"tier" validate:"required,oneof=premium enterprise"`
	Status    string `json:"status" validate:"required,oneof=succeeded failed"`
}

// PaymentWebhook applies the result of a checkout session: on success the
// user is upgraded to the purchased tier. Signature verification is not
// implemented for the stubbed integration.
func (a *App) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if !a.decode(w, r, &payload) {
		return
	}
	if payload.Status == "succeeded" {
		tier := domain.SubscriptionTier(payload.Tier)
		if _, err := a.Users.Update(r.Context(), payload.UserID, domain.UserUpdate{Tier: &tier}); err != nil {
			a.domainError(w, r, err)
			return
		}
		a.Logger.Info().
			Str("user_id", payload.UserID).
			Str("tier", payload.Tier).
			Msg("handlers: subscription upgraded")
	}
	a.json(w, http.StatusOK, map[string]string{"received": "ok"})
}

package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luxaccount/media-platform/internal/domain"
)

const paymentColumns = `id, user_id, amount_cents, currency, description, stripe_payment_intent_id, stripe_session_id, stripe_customer_id, status, method_type, method_brand, method_last4, failure_code, failure_message, created_at, updated_at, paid_at`

// PaymentRepositoryPG implements domain.PaymentRepository using PostgreSQL.
type PaymentRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepositoryPG {
	return &PaymentRepositoryPG{pool: pool}
}

// Create inserts a new payment record.
func (r *PaymentRepositoryPG) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
INSERT INTO payments (id, user_id, amount_cents, currency, description, stripe_payment_intent_id, stripe_session_id, stripe_customer_id, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.UserID,
		payment.AmountCents,
		payment.Currency,
		payment.Description,
		payment.StripePaymentIntentID,
		payment.StripeSessionID,
		payment.StripeCustomerID,
		payment.Status,
	)
	return err
}

// GetByID fetches a payment by its identifier.
func (r *PaymentRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	var p domain.Payment
	if err := scanPayment(row, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns the user's payments, newest first, plus the total.
func (r *PaymentRepositoryPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Payment, int, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+paymentColumns+`, COUNT(*) OVER () AS total
FROM payments
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;
`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		payments []domain.Payment
		total    int
	)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.AmountCents, &p.Currency, &p.Description,
			&p.StripePaymentIntentID, &p.StripeSessionID, &p.StripeCustomerID,
			&p.Status, &p.MethodType, &p.MethodBrand, &p.MethodLast4,
			&p.FailureCode, &p.FailureMessage, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func scanPayment(row pgx.Row, p *domain.Payment) error {
	if err := row.Scan(
		&p.ID, &p.UserID, &p.AmountCents, &p.Currency, &p.Description,
		&p.StripePaymentIntentID, &p.StripeSessionID, &p.StripeCustomerID,
		&p.Status, &p.MethodType, &p.MethodBrand, &p.MethodLast4,
		&p.FailureCode, &p.FailureMessage, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

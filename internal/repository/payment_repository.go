package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/dwiputra/lending-engine/internal/domain"
)

type paymentRepository struct {
	db sqlx.ExtContext
}

// NewPaymentRepository creates a payment repository bound to a database handle
// or an open transaction.
func NewPaymentRepository(db sqlx.ExtContext) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (payment_id, loan_id, amount, payment_type, payment_date)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.PaymentID,
		payment.LoanID,
		payment.Amount,
		payment.PaymentType,
		payment.PaymentDate,
	)

	return err
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	query := `
		SELECT payment_id, loan_id, amount, payment_type, payment_date
		FROM payments
		WHERE loan_id = $1
		ORDER BY payment_date
	`

	var payments []*domain.Payment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetEMIPaymentsByLoanID(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	query := `
		SELECT payment_id, loan_id, amount, payment_type, payment_date
		FROM payments
		WHERE loan_id = $1 AND payment_type = $2
		ORDER BY payment_date
	`

	var payments []*domain.Payment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, loanID, domain.PaymentTypeEMI); err != nil {
		return nil, err
	}

	return payments, nil
}

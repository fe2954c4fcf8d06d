package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dwiputra/lending-engine/internal/domain"
)

type loanRepository struct {
	db sqlx.ExtContext
}

// NewLoanRepository creates a loan repository bound to a database handle or
// an open transaction.
func NewLoanRepository(db sqlx.ExtContext) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (loan_id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.LoanID,
		loan.CustomerID,
		loan.PrincipalAmount,
		loan.TotalAmount,
		loan.InterestRate,
		loan.LoanPeriodYears,
		loan.MonthlyEMI,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT loan_id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, status, created_at, updated_at
		FROM loans
		WHERE loan_id = $1
	`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.db, &loan, query, loanID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByCustomerID(ctx context.Context, customerID string) ([]*domain.Loan, error) {
	query := `
		SELECT loan_id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, status, created_at, updated_at
		FROM loans
		WHERE customer_id = $1
		ORDER BY created_at
	`

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, customerID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET total_amount = $2, monthly_emi = $3, status = $4, updated_at = $5
		WHERE loan_id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.LoanID,
		loan.TotalAmount,
		loan.MonthlyEMI,
		loan.Status,
		time.Now(),
	)

	return err
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT loan_id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, status, created_at, updated_at
		FROM loans
		WHERE status = $1
		ORDER BY created_at
	`

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, domain.LoanStatusActive); err != nil {
		return nil, err
	}

	return loans, nil
}

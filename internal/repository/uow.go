package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dwiputra/lending-engine/internal/domain"
)

type sqlxUnitOfWork struct {
	db *sqlx.DB
}

// NewUnitOfWork creates a sqlx-backed UnitOfWork.
func NewUnitOfWork(db *sqlx.DB) UnitOfWork {
	return &sqlxUnitOfWork{db: db}
}

func (u *sqlxUnitOfWork) WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, loan *domain.Loan) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Row lock serializes concurrent payments against the same loan.
	query := `
		SELECT loan_id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, status, created_at, updated_at
		FROM loans
		WHERE loan_id = $1
		FOR UPDATE
	`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, tx, &loan, query, loanID); err != nil {
		return err
	}

	if err := fn(txRepos(tx), &loan); err != nil {
		return err
	}

	return tx.Commit()
}

func (u *sqlxUnitOfWork) WithinReadTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := u.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(txRepos(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func txRepos(tx *sqlx.Tx) Repos {
	return Repos{
		Loans:     NewLoanRepository(tx),
		Payments:  NewPaymentRepository(tx),
		Customers: NewCustomerRepository(tx),
	}
}

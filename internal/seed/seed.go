// Package seed inserts a small fixed data set for local development and
// demos: three customers, three active loans, and a handful of payments.
// Inserts are idempotent so repeated server starts are harmless.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dwiputra/lending-engine/internal/domain"
)

func Run(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := seedCustomers(ctx, tx); err != nil {
		return err
	}
	if err := seedLoans(ctx, tx); err != nil {
		return err
	}
	if err := seedPayments(ctx, tx); err != nil {
		return err
	}

	return tx.Commit()
}

func seedCustomers(ctx context.Context, tx *sqlx.Tx) error {
	customers := []domain.Customer{
		{CustomerID: "cust_001", Name: "Alice Smith"},
		{CustomerID: "cust_002", Name: "Bob Johnson"},
		{CustomerID: "cust_003", Name: "Charlie Brown"},
	}

	query := `
		INSERT INTO customers (customer_id, name)
		VALUES ($1, $2)
		ON CONFLICT (customer_id) DO NOTHING
	`
	for _, c := range customers {
		if _, err := tx.ExecContext(ctx, query, c.CustomerID, c.Name); err != nil {
			return err
		}
	}
	return nil
}

func seedLoans(ctx context.Context, tx *sqlx.Tx) error {
	now := time.Now()
	loans := []domain.Loan{
		{
			LoanID:          "loan_001",
			CustomerID:      "cust_001",
			PrincipalAmount: decimal.NewFromInt(10000),
			TotalAmount:     decimal.NewFromInt(11000),
			InterestRate:    decimal.NewFromInt(10),
			LoanPeriodYears: 1,
			MonthlyEMI:      decimal.RequireFromString("916.67"),
			Status:          domain.LoanStatusActive,
		},
		{
			LoanID:          "loan_002",
			CustomerID:      "cust_001",
			PrincipalAmount: decimal.NewFromInt(5000),
			TotalAmount:     decimal.RequireFromString("5750"),
			InterestRate:    decimal.NewFromInt(15),
			LoanPeriodYears: 1,
			MonthlyEMI:      decimal.RequireFromString("479.17"),
			Status:          domain.LoanStatusActive,
		},
		{
			LoanID:          "loan_003",
			CustomerID:      "cust_002",
			PrincipalAmount: decimal.NewFromInt(20000),
			TotalAmount:     decimal.NewFromInt(24000),
			InterestRate:    decimal.NewFromInt(10),
			LoanPeriodYears: 2,
			MonthlyEMI:      decimal.NewFromInt(1000),
			Status:          domain.LoanStatusActive,
		},
	}

	query := `
		INSERT INTO loans (loan_id, customer_id, principal_amount, total_amount, interest_rate, loan_period_years, monthly_emi, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (loan_id) DO NOTHING
	`
	for _, l := range loans {
		if _, err := tx.ExecContext(ctx, query,
			l.LoanID, l.CustomerID, l.PrincipalAmount, l.TotalAmount, l.InterestRate,
			l.LoanPeriodYears, l.MonthlyEMI, l.Status, now, now,
		); err != nil {
			return err
		}
	}
	return nil
}

func seedPayments(ctx context.Context, tx *sqlx.Tx) error {
	payments := []domain.Payment{
		{LoanID: "loan_001", Amount: decimal.RequireFromString("916.67"), PaymentType: domain.PaymentTypeEMI, PaymentDate: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)},
		{LoanID: "loan_001", Amount: decimal.RequireFromString("916.67"), PaymentType: domain.PaymentTypeEMI, PaymentDate: time.Date(2025, 2, 15, 10, 0, 0, 0, time.UTC)},
		{LoanID: "loan_003", Amount: decimal.NewFromInt(1000), PaymentType: domain.PaymentTypeEMI, PaymentDate: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)},
		{LoanID: "loan_003", Amount: decimal.NewFromInt(5000), PaymentType: domain.PaymentTypeLumpSum, PaymentDate: time.Date(2025, 4, 5, 14, 30, 0, 0, time.UTC)},
	}

	// Skip if the loan already has payments so reseeding cannot duplicate.
	var existing int
	if err := tx.GetContext(ctx, &existing,
		`SELECT COUNT(*) FROM payments WHERE loan_id IN ('loan_001', 'loan_003')`); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	query := `
		INSERT INTO payments (payment_id, loan_id, amount, payment_type, payment_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, p := range payments {
		if _, err := tx.ExecContext(ctx, query,
			uuid.New().String(), p.LoanID, p.Amount, p.PaymentType, p.PaymentDate,
		); err != nil {
			return err
		}
	}
	return nil
}

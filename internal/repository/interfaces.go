package repository

import (
	"context"

	"github.com/dwiputra/lending-engine/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByLoanID retrieves a loan by its loan ID
	GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)

	// GetByCustomerID retrieves all loans belonging to a customer
	GetByCustomerID(ctx context.Context, customerID string) ([]*domain.Loan, error)

	// Update persists the mutable loan fields (total_amount, monthly_emi, status)
	Update(ctx context.Context, loan *domain.Loan) error

	// ListActive retrieves all loans that are not yet paid off
	ListActive(ctx context.Context) ([]*domain.Loan, error)
}

// PaymentRepository defines the interface for payment data operations.
// Payments are append-only; there is no update or delete.
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByLoanID retrieves all payments for a loan in chronological order
	GetByLoanID(ctx context.Context, loanID string) ([]*domain.Payment, error)

	// GetEMIPaymentsByLoanID retrieves only EMI-type payments for a loan
	GetEMIPaymentsByLoanID(ctx context.Context, loanID string) ([]*domain.Payment, error)
}

// CustomerRepository reads the externally-owned customers table
type CustomerRepository interface {
	// GetByCustomerID retrieves a customer by its customer ID
	GetByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error)
}

// Repos bundles transaction-scoped repositories for unit-of-work callbacks.
type Repos struct {
	Loans     LoanRepository
	Payments  PaymentRepository
	Customers CustomerRepository
}

// UnitOfWork scopes multi-row reads and writes to a single database
// transaction.
type UnitOfWork interface {
	// WithinLoanTx locks the loan row, then runs fn with repositories bound to
	// the same transaction. The read-modify-write on total_amount, monthly_emi
	// and status is therefore serialized per loan_id. Returns sql.ErrNoRows
	// when the loan does not exist. Any error from fn rolls everything back.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, loan *domain.Loan) error) error

	// WithinReadTx runs fn against a consistent snapshot for read-only
	// aggregation (ledger, overview).
	WithinReadTx(ctx context.Context, fn func(r Repos) error) error
}

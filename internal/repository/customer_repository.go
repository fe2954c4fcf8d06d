package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/dwiputra/lending-engine/internal/domain"
)

type customerRepository struct {
	db sqlx.ExtContext
}

// NewCustomerRepository creates a customer repository bound to a database
// handle or an open transaction.
func NewCustomerRepository(db sqlx.ExtContext) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.Customer, error) {
	query := `
		SELECT customer_id, name
		FROM customers
		WHERE customer_id = $1
	`

	var customer domain.Customer
	if err := sqlx.GetContext(ctx, r.db, &customer, query, customerID); err != nil {
		return nil, err
	}

	return &customer, nil
}

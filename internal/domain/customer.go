package domain

import "github.com/shopspring/decimal"

// Customer is owned by an external system; this service only reads it.
type Customer struct {
	CustomerID string `json:"customer_id" db:"customer_id"`
	Name       string `json:"name" db:"name"`
}

// LoanOverview annotates a loan with its remaining EMI count.
type LoanOverview struct {
	Loan
	EMIsLeft decimal.Decimal `json:"emis_left"`
}

type CustomerOverviewResponse struct {
	CustomerID string          `json:"customer_id"`
	TotalLoans int             `json:"total_loans"`
	Loans      []*LoanOverview `json:"loans"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentTypeEMI     = "EMI"
	PaymentTypeLumpSum = "LUMP_SUM"
)

// Payment is an append-only record of money received against a loan.
type Payment struct {
	PaymentID   string          `json:"payment_id" db:"payment_id"`
	LoanID      string          `json:"loan_id" db:"loan_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentType string          `json:"payment_type" db:"payment_type"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
}

type MakePaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required,decimal_gt0"`
	PaymentType *string          `json:"payment_type" validate:"required"`
}

// PaymentResult carries the post-payment loan figures back to the handler.
// RemainingAmount and EMIsLeft are unrounded; the handler rounds for display.
type PaymentResult struct {
	Payment         *Payment
	RemainingAmount decimal.Decimal
	EMIsLeft        decimal.Decimal
}

type MakePaymentResponse struct {
	PaymentID       string          `json:"payment_id"`
	LoanID          string          `json:"loan_id"`
	Message         string          `json:"message"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PaymentType     string          `json:"payment_type"`
	EMILeft         decimal.Decimal `json:"emi_left"`
}

// LedgerResponse is the point-in-time balance view of a single loan.
// TotalAmount is the original principal + simple interest, independent of any
// lump-sum recomputation since creation; MonthlyEMI is the current value.
type LedgerResponse struct {
	LoanID        string          `json:"loan_id"`
	CustomerID    string          `json:"customer_id"`
	Principal     decimal.Decimal `json:"principal"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	MonthlyEMI    decimal.Decimal `json:"monthly_emi"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Transactions  []*Payment      `json:"transactions"`
}

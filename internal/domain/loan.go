package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive  = "ACTIVE"
	LoanStatusPaidOff = "PAID_OFF"
)

// MonthsPerYear converts a loan period in years to its scheduled EMI count.
const MonthsPerYear = 12

// Loan represents a loan entity
type Loan struct {
	LoanID          string          `json:"loan_id" db:"loan_id"`
	CustomerID      string          `json:"customer_id" db:"customer_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	LoanPeriodYears int             `json:"loan_period_years" db:"loan_period_years"`
	MonthlyEMI      decimal.Decimal `json:"monthly_emi" db:"monthly_emi"`
	Status          string          `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ScheduledEMIs returns the total number of EMI slots over the loan term.
func (l *Loan) ScheduledEMIs() decimal.Decimal {
	return decimal.NewFromInt(int64(l.LoanPeriodYears * MonthsPerYear))
}

// OriginalTotal recomputes principal + simple interest from the immutable loan
// terms. Lump-sum payments overwrite TotalAmount, so this is the only stable
// baseline for ledger reporting.
func (l *Loan) OriginalTotal() decimal.Decimal {
	total, _ := ComputeLoanTerms(l.PrincipalAmount, l.LoanPeriodYears, l.InterestRate)
	return total
}

// ComputeLoanTerms calculates the total payable amount and monthly EMI for a
// simple-interest loan:
//
//	totalInterest = principal * years * (rate / 100)
//	totalPayable  = principal + totalInterest
//	monthlyEMI    = totalPayable / (years * 12)
//
// Values are kept at full precision; rounding happens at the response boundary.
func ComputeLoanTerms(principal decimal.Decimal, periodYears int, annualRatePercent decimal.Decimal) (totalPayable, monthlyEMI decimal.Decimal) {
	years := decimal.NewFromInt(int64(periodYears))
	totalInterest := principal.Mul(years).Mul(annualRatePercent.Div(decimal.NewFromInt(100)))
	totalPayable = principal.Add(totalInterest)

	// Period is validated as positive at the boundary; guard anyway so a zero
	// period can never panic the divide.
	if periodYears == 0 {
		return totalPayable, decimal.Zero
	}
	monthlyEMI = totalPayable.Div(years.Mul(decimal.NewFromInt(MonthsPerYear)))
	return totalPayable, monthlyEMI
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	CustomerID         *string          `json:"customer_id" validate:"required"`
	LoanAmount         *decimal.Decimal `json:"loan_amount" validate:"required,decimal_gt0"`
	LoanPeriodYears    *int             `json:"loan_period_years" validate:"required,gt=0"`
	InterestRateYearly *decimal.Decimal `json:"interest_rate_yearly" validate:"required,decimal_gte0"`
}

type CreateLoanResponse struct {
	LoanID             string          `json:"loan_id"`
	CustomerID         string          `json:"customer_id"`
	TotalAmountPayable decimal.Decimal `json:"total_amount_payable"`
	MonthlyEMI         decimal.Decimal `json:"monthly_emi"`
}

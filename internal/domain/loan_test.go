package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeLoanTerms(t *testing.T) {
	tests := []struct {
		name          string
		principal     decimal.Decimal
		periodYears   int
		rate          decimal.Decimal
		expectedTotal decimal.Decimal
		expectedEMI   decimal.Decimal
	}{
		{
			name:          "10000 over 1 year at 10 percent",
			principal:     decimal.NewFromInt(10000),
			periodYears:   1,
			rate:          decimal.NewFromInt(10),
			expectedTotal: decimal.NewFromInt(11000),
			expectedEMI:   decimal.NewFromInt(11000).Div(decimal.NewFromInt(12)),
		},
		{
			name:          "20000 over 2 years at 10 percent",
			principal:     decimal.NewFromInt(20000),
			periodYears:   2,
			rate:          decimal.NewFromInt(10),
			expectedTotal: decimal.NewFromInt(24000),
			expectedEMI:   decimal.NewFromInt(1000),
		},
		{
			name:          "zero interest rate",
			principal:     decimal.NewFromInt(12000),
			periodYears:   1,
			rate:          decimal.Zero,
			expectedTotal: decimal.NewFromInt(12000),
			expectedEMI:   decimal.NewFromInt(1000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, emi := ComputeLoanTerms(tt.principal, tt.periodYears, tt.rate)
			assert.True(t, total.Equal(tt.expectedTotal), "total %s != %s", total, tt.expectedTotal)
			assert.True(t, emi.Equal(tt.expectedEMI), "emi %s != %s", emi, tt.expectedEMI)
		})
	}
}

func TestComputeLoanTerms_ZeroPeriodDefensive(t *testing.T) {
	total, emi := ComputeLoanTerms(decimal.NewFromInt(10000), 0, decimal.NewFromInt(10))
	assert.True(t, total.Equal(decimal.NewFromInt(10000)))
	assert.True(t, emi.IsZero())
}

func TestOriginalTotal_IndependentOfCurrentBalance(t *testing.T) {
	loan := &Loan{
		PrincipalAmount: decimal.NewFromInt(20000),
		InterestRate:    decimal.NewFromInt(10),
		LoanPeriodYears: 2,
		// Mutated by a lump-sum recomputation; must not affect the baseline.
		TotalAmount: decimal.NewFromInt(18000),
		MonthlyEMI:  decimal.RequireFromString("782.61"),
	}

	assert.True(t, loan.OriginalTotal().Equal(decimal.NewFromInt(24000)))
}

func TestScheduledEMIs(t *testing.T) {
	loan := &Loan{LoanPeriodYears: 2}
	assert.True(t, loan.ScheduledEMIs().Equal(decimal.NewFromInt(24)))
}

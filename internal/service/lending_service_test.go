package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dwiputra/lending-engine/internal/domain"
	"github.com/dwiputra/lending-engine/internal/repository"
	customError "github.com/dwiputra/lending-engine/pkg/errors"
	"github.com/dwiputra/lending-engine/tests/mocks"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestService(loan *domain.Loan) (*LendingService, *mocks.MockLoanRepository, *mocks.MockPaymentRepository, *mocks.MockCustomerRepository) {
	loanRepo := &mocks.MockLoanRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	customerRepo := &mocks.MockCustomerRepository{}

	uow := &mocks.StubUnitOfWork{
		Repos: repository.Repos{
			Loans:     loanRepo,
			Payments:  paymentRepo,
			Customers: customerRepo,
		},
		Loan: loan,
	}
	if loan == nil {
		uow.Err = sql.ErrNoRows
	}

	svc := NewLendingService(uow, loanRepo, nil)
	return svc, loanRepo, paymentRepo, customerRepo
}

func activeLoan(principal int64, years int, ratePercent int64) *domain.Loan {
	p := decimal.NewFromInt(principal)
	rate := decimal.NewFromInt(ratePercent)
	total, emi := domain.ComputeLoanTerms(p, years, rate)
	return &domain.Loan{
		LoanID:          "loan_test",
		CustomerID:      "cust_test",
		PrincipalAmount: p,
		TotalAmount:     total,
		InterestRate:    rate,
		LoanPeriodYears: years,
		MonthlyEMI:      emi,
		Status:          domain.LoanStatusActive,
	}
}

func emiPayments(amount decimal.Decimal, count int) []*domain.Payment {
	payments := make([]*domain.Payment, 0, count)
	for i := 0; i < count; i++ {
		payments = append(payments, &domain.Payment{
			LoanID:      "loan_test",
			Amount:      amount,
			PaymentType: domain.PaymentTypeEMI,
		})
	}
	return payments
}

func TestCreateLoan_ComputesSimpleInterestTerms(t *testing.T) {
	svc, loanRepo, _, _ := newTestService(nil)

	loanRepo.On("Create", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
		return loan.CustomerID == "cust_001" &&
			loan.Status == domain.LoanStatusActive &&
			loan.TotalAmount.Equal(decimal.NewFromInt(11000)) &&
			loan.MonthlyEMI.Equal(decimal.NewFromInt(11000).Div(decimal.NewFromInt(12)))
	})).Return(nil)

	loan, err := svc.CreateLoan(context.Background(), &domain.CreateLoanRequest{
		CustomerID:         strPtr("cust_001"),
		LoanAmount:         decPtr("10000"),
		LoanPeriodYears:    intPtr(1),
		InterestRateYearly: decPtr("10"),
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, loan.LoanID)
	assert.True(t, loan.TotalAmount.Equal(decimal.NewFromInt(11000)))
	assert.True(t, loan.MonthlyEMI.Equal(decimal.NewFromInt(11000).Div(decimal.NewFromInt(12))))

	loanRepo.AssertExpectations(t)
}

func TestMakePayment_EMI_Success(t *testing.T) {
	// 20000 over 2 years at 10% -> total 24000, EMI 1000
	loan := activeLoan(20000, 2, 10)
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.PaymentType == domain.PaymentTypeEMI && p.Amount.Equal(decimal.NewFromInt(1000))
	})).Return(nil)
	paymentRepo.On("GetEMIPaymentsByLoanID", mock.Anything, "loan_test").
		Return(emiPayments(decimal.NewFromInt(1000), 1), nil)
	loanRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Status == domain.LoanStatusActive && l.TotalAmount.Equal(decimal.NewFromInt(23000))
	})).Return(nil)

	result, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("1000"),
		PaymentType: strPtr(domain.PaymentTypeEMI),
	})

	assert.NoError(t, err)
	assert.True(t, result.RemainingAmount.Equal(decimal.NewFromInt(23000)))
	assert.True(t, result.EMIsLeft.Equal(decimal.NewFromInt(23)))

	loanRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestMakePayment_EMI_AmountMismatchLeavesLoanUntouched(t *testing.T) {
	loan := activeLoan(20000, 2, 10)
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	_, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("999"),
		PaymentType: strPtr(domain.PaymentTypeEMI),
	})

	assert.Equal(t, customError.ErrCodeInvalidEMIAmount, customError.Code(err))
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	loanRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.True(t, loan.TotalAmount.Equal(decimal.NewFromInt(24000)))
}

func TestMakePayment_EMI_FinalPaymentClosesLoan(t *testing.T) {
	// 12000 over 1 year at 0% -> EMI 1000; eleven already paid.
	loan := activeLoan(12000, 1, 0)
	loan.TotalAmount = decimal.NewFromInt(1000)
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	paymentRepo.On("GetEMIPaymentsByLoanID", mock.Anything, "loan_test").
		Return(emiPayments(decimal.NewFromInt(1000), 12), nil)
	loanRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Status == domain.LoanStatusPaidOff && l.TotalAmount.IsZero()
	})).Return(nil)

	result, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("1000"),
		PaymentType: strPtr(domain.PaymentTypeEMI),
	})

	assert.NoError(t, err)
	assert.True(t, result.RemainingAmount.IsZero())
	assert.True(t, result.EMIsLeft.IsZero())

	loanRepo.AssertExpectations(t)
}

func TestMakePayment_EMI_TwelfthRoundedPaymentClosesLoan(t *testing.T) {
	// Seeded-loan shape: EMI fixed at the displayed 916.67, eleven paid.
	loan := activeLoan(10000, 1, 10)
	loan.MonthlyEMI = decimal.RequireFromString("916.67")
	loan.TotalAmount = decimal.NewFromInt(11000).Sub(decimal.RequireFromString("916.67").Mul(decimal.NewFromInt(11)))
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	paymentRepo.On("GetEMIPaymentsByLoanID", mock.Anything, "loan_test").
		Return(emiPayments(decimal.RequireFromString("916.67"), 12), nil)
	loanRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Status == domain.LoanStatusPaidOff
	})).Return(nil)

	result, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("916.67"),
		PaymentType: strPtr(domain.PaymentTypeEMI),
	})

	assert.NoError(t, err)
	// 12 x 916.67 overshoots 11000 by 4 cents; final balance is ~0.
	assert.InDelta(t, 0, result.RemainingAmount.InexactFloat64(), 0.05)
	assert.True(t, result.EMIsLeft.IsZero())

	loanRepo.AssertExpectations(t)
}

func TestMakePayment_EMI_NotPaidOffBeforeLastInstallment(t *testing.T) {
	loan := activeLoan(12000, 1, 0)
	loan.TotalAmount = decimal.NewFromInt(2000)
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	paymentRepo.On("GetEMIPaymentsByLoanID", mock.Anything, "loan_test").
		Return(emiPayments(decimal.NewFromInt(1000), 11), nil)
	loanRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Status == domain.LoanStatusActive
	})).Return(nil)

	result, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("1000"),
		PaymentType: strPtr(domain.PaymentTypeEMI),
	})

	assert.NoError(t, err)
	assert.True(t, result.EMIsLeft.Equal(decimal.NewFromInt(1)))

	loanRepo.AssertExpectations(t)
}

func TestMakePayment_LumpSum_RecomputesEMI(t *testing.T) {
	// After one EMI of 1000 on the 24000 loan: balance 23000. A lump sum of
	// 5000 re-amortizes 18000 over the 23 remaining slots.
	loan := activeLoan(20000, 2, 10)
	loan.TotalAmount = decimal.NewFromInt(23000)
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.PaymentType == domain.PaymentTypeLumpSum
	})).Return(nil)
	paymentRepo.On("GetEMIPaymentsByLoanID", mock.Anything, "loan_test").
		Return(emiPayments(decimal.NewFromInt(1000), 1), nil)
	loanRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Status == domain.LoanStatusActive &&
			l.TotalAmount.Equal(decimal.NewFromInt(18000)) &&
			l.MonthlyEMI.Round(2).Equal(decimal.RequireFromString("782.61"))
	})).Return(nil)

	result, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("5000"),
		PaymentType: strPtr(domain.PaymentTypeLumpSum),
	})

	assert.NoError(t, err)
	assert.True(t, result.RemainingAmount.Equal(decimal.NewFromInt(18000)))
	assert.True(t, result.EMIsLeft.Equal(decimal.NewFromInt(23)))

	loanRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestMakePayment_LumpSum_ExcessRejectedUnchanged(t *testing.T) {
	loan := activeLoan(20000, 2, 10)
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	_, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("25000"),
		PaymentType: strPtr(domain.PaymentTypeLumpSum),
	})

	assert.Equal(t, customError.ErrCodeExcessPayment, customError.Code(err))
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	loanRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMakePayment_LumpSum_ExactPayoffKeepsLoanActive(t *testing.T) {
	loan := activeLoan(20000, 2, 10)
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	paymentRepo.On("GetEMIPaymentsByLoanID", mock.Anything, "loan_test").
		Return([]*domain.Payment{}, nil)
	// Zero balance, yet the status stays ACTIVE: only the EMI path closes a
	// loan. Observed behavior preserved deliberately.
	loanRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Status == domain.LoanStatusActive && l.TotalAmount.IsZero()
	})).Return(nil)

	result, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("24000"),
		PaymentType: strPtr(domain.PaymentTypeLumpSum),
	})

	assert.NoError(t, err)
	assert.True(t, result.RemainingAmount.IsZero())

	loanRepo.AssertExpectations(t)
}

func TestMakePayment_LumpSum_NoSlotsLeft(t *testing.T) {
	loan := activeLoan(12000, 1, 0)
	loan.TotalAmount = decimal.NewFromInt(500)
	svc, _, paymentRepo, _ := newTestService(loan)

	paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	// All 12 slots consumed but the loan was never closed.
	paymentRepo.On("GetEMIPaymentsByLoanID", mock.Anything, "loan_test").
		Return(emiPayments(decimal.NewFromInt(1000), 12), nil)

	_, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("100"),
		PaymentType: strPtr(domain.PaymentTypeLumpSum),
	})

	assert.Equal(t, customError.ErrCodeDivisionUndefined, customError.Code(err))
}

func TestMakePayment_PaidOffLoanRejectsEverything(t *testing.T) {
	loan := activeLoan(20000, 2, 10)
	loan.Status = domain.LoanStatusPaidOff
	svc, _, paymentRepo, _ := newTestService(loan)

	for _, paymentType := range []string{domain.PaymentTypeEMI, domain.PaymentTypeLumpSum} {
		_, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
			Amount:      decPtr("1000"),
			PaymentType: &paymentType,
		})
		assert.Equal(t, customError.ErrCodeLoanAlreadyPaid, customError.Code(err))
	}
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMakePayment_LoanNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	_, err := svc.MakePayment(context.Background(), "missing", &domain.MakePaymentRequest{
		Amount:      decPtr("1000"),
		PaymentType: strPtr(domain.PaymentTypeEMI),
	})

	assert.Equal(t, customError.ErrCodeLoanNotFound, customError.Code(err))
}

func TestMakePayment_InvalidPaymentType(t *testing.T) {
	loan := activeLoan(20000, 2, 10)
	svc, _, paymentRepo, _ := newTestService(loan)

	_, err := svc.MakePayment(context.Background(), "loan_test", &domain.MakePaymentRequest{
		Amount:      decPtr("1000"),
		PaymentType: strPtr("PARTIAL"),
	})

	assert.Equal(t, customError.ErrCodeInvalidPaymentType, customError.Code(err))
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetLedger_OriginalTotalIsStableBaseline(t *testing.T) {
	// Loan has been lump-sum recomputed (balance 18000, EMI 782.61...), but
	// the ledger baseline stays at the original 24000.
	loan := activeLoan(20000, 2, 10)
	loan.TotalAmount = decimal.NewFromInt(18000)
	loan.MonthlyEMI = decimal.NewFromInt(18000).Div(decimal.NewFromInt(23))
	svc, loanRepo, paymentRepo, _ := newTestService(loan)

	payments := []*domain.Payment{
		{LoanID: "loan_test", Amount: decimal.NewFromInt(1000), PaymentType: domain.PaymentTypeEMI},
		{LoanID: "loan_test", Amount: decimal.NewFromInt(5000), PaymentType: domain.PaymentTypeLumpSum},
	}

	loanRepo.On("GetByLoanID", mock.Anything, "loan_test").Return(loan, nil)
	paymentRepo.On("GetByLoanID", mock.Anything, "loan_test").Return(payments, nil)

	ledger, err := svc.GetLedger(context.Background(), "loan_test")

	assert.NoError(t, err)
	assert.True(t, ledger.TotalAmount.Equal(decimal.NewFromInt(24000)))
	assert.True(t, ledger.AmountPaid.Equal(decimal.NewFromInt(6000)))
	assert.True(t, ledger.BalanceAmount.Equal(decimal.NewFromInt(18000)))
	assert.Len(t, ledger.Transactions, 2)

	loanRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestGetLedger_LoanNotFound(t *testing.T) {
	svc, loanRepo, _, _ := newTestService(activeLoan(20000, 2, 10))

	loanRepo.On("GetByLoanID", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	_, err := svc.GetLedger(context.Background(), "missing")

	assert.Equal(t, customError.ErrCodeLoanNotFound, customError.Code(err))
}

func TestGetCustomerOverview_AnnotatesEMIsLeft(t *testing.T) {
	loan := activeLoan(20000, 2, 10)
	svc, loanRepo, paymentRepo, customerRepo := newTestService(loan)

	customerRepo.On("GetByCustomerID", mock.Anything, "cust_test").
		Return(&domain.Customer{CustomerID: "cust_test", Name: "Alice Smith"}, nil)
	loanRepo.On("GetByCustomerID", mock.Anything, "cust_test").
		Return([]*domain.Loan{loan}, nil)
	paymentRepo.On("GetEMIPaymentsByLoanID", mock.Anything, "loan_test").
		Return(emiPayments(decimal.NewFromInt(1000), 3), nil)

	overview, err := svc.GetCustomerOverview(context.Background(), "cust_test")

	assert.NoError(t, err)
	assert.Equal(t, 1, overview.TotalLoans)
	assert.True(t, overview.Loans[0].EMIsLeft.Equal(decimal.NewFromInt(21)))

	customerRepo.AssertExpectations(t)
	loanRepo.AssertExpectations(t)
}

func TestGetCustomerOverview_CustomerNotFound(t *testing.T) {
	svc, _, _, customerRepo := newTestService(activeLoan(20000, 2, 10))

	customerRepo.On("GetByCustomerID", mock.Anything, "cust_unknown").Return(nil, sql.ErrNoRows)

	_, err := svc.GetCustomerOverview(context.Background(), "cust_unknown")

	assert.Equal(t, customError.ErrCodeCustomerNotFound, customError.Code(err))
}

func TestGetCustomerOverview_NoLoans(t *testing.T) {
	svc, loanRepo, _, customerRepo := newTestService(activeLoan(20000, 2, 10))

	customerRepo.On("GetByCustomerID", mock.Anything, "cust_empty").
		Return(&domain.Customer{CustomerID: "cust_empty", Name: "Bob Johnson"}, nil)
	loanRepo.On("GetByCustomerID", mock.Anything, "cust_empty").
		Return([]*domain.Loan{}, nil)

	_, err := svc.GetCustomerOverview(context.Background(), "cust_empty")

	assert.Equal(t, customError.ErrCodeNoLoansFound, customError.Code(err))
}

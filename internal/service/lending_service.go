package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dwiputra/lending-engine/internal/domain"
	"github.com/dwiputra/lending-engine/internal/repository"
	customError "github.com/dwiputra/lending-engine/pkg/errors"
)

// LendingService owns loan creation, payment processing and the read-only
// ledger/overview aggregations. Payment processing runs inside a per-loan
// locked transaction so no concurrent request can observe a half-applied
// payment.
type LendingService struct {
	uow      repository.UnitOfWork
	loanRepo repository.LoanRepository
	cache    *ViewCache
}

func NewLendingService(
	uow repository.UnitOfWork,
	loanRepo repository.LoanRepository,
	cache *ViewCache,
) *LendingService {
	return &LendingService{
		uow:      uow,
		loanRepo: loanRepo,
		cache:    cache,
	}
}

// CreateLoan issues a loan with simple-interest amortization:
// total = principal + principal*years*(rate/100), EMI = total/(years*12).
// The request is assumed validated at the handler boundary.
func (s *LendingService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	totalPayable, monthlyEMI := domain.ComputeLoanTerms(*request.LoanAmount, *request.LoanPeriodYears, *request.InterestRateYearly)

	now := time.Now()
	loan := &domain.Loan{
		LoanID:          uuid.New().String(),
		CustomerID:      *request.CustomerID,
		PrincipalAmount: *request.LoanAmount,
		TotalAmount:     totalPayable,
		InterestRate:    *request.InterestRateYearly,
		LoanPeriodYears: *request.LoanPeriodYears,
		MonthlyEMI:      monthlyEMI,
		Status:          domain.LoanStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.cache.Invalidate(ctx, overviewKeyPrefix+loan.CustomerID)

	return loan, nil
}

// MakePayment applies an EMI or lump-sum payment to a loan. The whole
// read-compute-write runs in one transaction with the loan row locked, so a
// rejected payment leaves no trace.
func (s *LendingService) MakePayment(ctx context.Context, loanID string, request *domain.MakePaymentRequest) (*domain.PaymentResult, error) {
	amount := *request.Amount
	paymentType := *request.PaymentType

	if paymentType != domain.PaymentTypeEMI && paymentType != domain.PaymentTypeLumpSum {
		return nil, customError.WrapInvalidPaymentType(paymentType)
	}

	var result *domain.PaymentResult
	var customerID string

	err := s.uow.WithinLoanTx(ctx, loanID, func(r repository.Repos, loan *domain.Loan) error {
		if loan.Status == domain.LoanStatusPaidOff {
			return customError.WrapLoanAlreadyPaid()
		}
		customerID = loan.CustomerID

		var err error
		switch paymentType {
		case domain.PaymentTypeEMI:
			result, err = applyEMIPayment(ctx, r, loan, amount)
		case domain.PaymentTypeLumpSum:
			result, err = applyLumpSumPayment(ctx, r, loan, amount)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound()
		}
		var be *customError.BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.cache.Invalidate(ctx, ledgerKeyPrefix+loanID, overviewKeyPrefix+customerID)

	return result, nil
}

// applyEMIPayment records an exact-EMI installment. The paid-EMI count is
// reconciled as sum(EMI amounts)/current EMI rather than a row count, so it
// stays a consistent fraction of the current EMI after any lump-sum
// recomputation. Reaching the scheduled count exactly closes the loan.
func applyEMIPayment(ctx context.Context, r repository.Repos, loan *domain.Loan, amount decimal.Decimal) (*domain.PaymentResult, error) {
	if !amount.Equal(loan.MonthlyEMI) {
		return nil, customError.WrapEMIAmountMismatch()
	}

	payment := newPayment(loan.LoanID, amount, domain.PaymentTypeEMI)
	if err := r.Payments.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	emisPaid, err := reconcileEMIsPaid(ctx, r, loan)
	if err != nil {
		return nil, err
	}

	loan.TotalAmount = loan.TotalAmount.Sub(amount)
	if emisPaid.Equal(loan.ScheduledEMIs()) {
		loan.Status = domain.LoanStatusPaidOff
	}

	if err := r.Loans.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.PaymentResult{
		Payment:         payment,
		RemainingAmount: loan.TotalAmount,
		EMIsLeft:        loan.ScheduledEMIs().Sub(emisPaid),
	}, nil
}

// applyLumpSumPayment applies an out-of-schedule payment and re-amortizes the
// remaining balance over the remaining EMI slots. A lump sum never closes the
// loan, even when it zeroes the balance; only the EMI path transitions status
// to PAID_OFF.
func applyLumpSumPayment(ctx context.Context, r repository.Repos, loan *domain.Loan, amount decimal.Decimal) (*domain.PaymentResult, error) {
	if amount.GreaterThan(loan.TotalAmount) {
		return nil, customError.WrapExcessPayment()
	}

	payment := newPayment(loan.LoanID, amount, domain.PaymentTypeLumpSum)
	if err := r.Payments.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	remaining := loan.TotalAmount.Sub(amount)

	// emisPaid is computed against the pre-update EMI; the reported emi_left
	// uses the same figure.
	emisPaid, err := reconcileEMIsPaid(ctx, r, loan)
	if err != nil {
		return nil, err
	}

	slotsLeft := loan.ScheduledEMIs().Sub(emisPaid)
	if slotsLeft.IsZero() {
		return nil, customError.WrapDivisionUndefined(loan.LoanID)
	}

	loan.TotalAmount = remaining
	loan.MonthlyEMI = remaining.Div(slotsLeft)

	if err := r.Loans.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.PaymentResult{
		Payment:         payment,
		RemainingAmount: remaining,
		EMIsLeft:        slotsLeft,
	}, nil
}

// GetLedger aggregates a loan's payment history against its original terms.
func (s *LendingService) GetLedger(ctx context.Context, loanID string) (*domain.LedgerResponse, error) {
	cacheKey := ledgerKeyPrefix + loanID
	var cached domain.LedgerResponse
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var ledger *domain.LedgerResponse
	err := s.uow.WithinReadTx(ctx, func(r repository.Repos) error {
		loan, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}

		payments, err := r.Payments.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}

		amountPaid := decimal.Zero
		for _, p := range payments {
			amountPaid = amountPaid.Add(p.Amount)
		}

		originalTotal := loan.OriginalTotal()
		ledger = &domain.LedgerResponse{
			LoanID:        loan.LoanID,
			CustomerID:    loan.CustomerID,
			Principal:     loan.PrincipalAmount,
			TotalAmount:   originalTotal,
			MonthlyEMI:    loan.MonthlyEMI,
			AmountPaid:    amountPaid,
			BalanceAmount: originalTotal.Sub(amountPaid),
			Transactions:  payments,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound()
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.cache.SetJSON(ctx, cacheKey, ledger)

	return ledger, nil
}

// GetCustomerOverview summarizes all loans for a customer with per-loan
// remaining-EMI counts.
func (s *LendingService) GetCustomerOverview(ctx context.Context, customerID string) (*domain.CustomerOverviewResponse, error) {
	cacheKey := overviewKeyPrefix + customerID
	var cached domain.CustomerOverviewResponse
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var overview *domain.CustomerOverviewResponse
	err := s.uow.WithinReadTx(ctx, func(r repository.Repos) error {
		if _, err := r.Customers.GetByCustomerID(ctx, customerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return customError.WrapCustomerNotFound()
			}
			return err
		}

		loans, err := r.Loans.GetByCustomerID(ctx, customerID)
		if err != nil {
			return err
		}
		if len(loans) == 0 {
			return customError.WrapNoLoansFound()
		}

		annotated := make([]*domain.LoanOverview, 0, len(loans))
		for _, loan := range loans {
			emisPaid, err := reconcileEMIsPaid(ctx, r, loan)
			if err != nil {
				return err
			}
			annotated = append(annotated, &domain.LoanOverview{
				Loan:     *loan,
				EMIsLeft: loan.ScheduledEMIs().Sub(emisPaid),
			})
		}

		overview = &domain.CustomerOverviewResponse{
			CustomerID: customerID,
			TotalLoans: len(loans),
			Loans:      annotated,
		}
		return nil
	})
	if err != nil {
		var be *customError.BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.cache.SetJSON(ctx, cacheKey, overview)

	return overview, nil
}

// reconcileEMIsPaid reconciles how many EMIs have been paid: the sum of all EMI-type
// payment amounts divided by the loan's current monthly EMI. The result can
// be fractional after a lump-sum recomputation changes the EMI.
func reconcileEMIsPaid(ctx context.Context, r repository.Repos, loan *domain.Loan) (decimal.Decimal, error) {
	emiPayments, err := r.Payments.GetEMIPaymentsByLoanID(ctx, loan.LoanID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	totalEMIPaid := decimal.Zero
	for _, p := range emiPayments {
		totalEMIPaid = totalEMIPaid.Add(p.Amount)
	}

	if loan.MonthlyEMI.IsZero() {
		return decimal.Zero, nil
	}

	return totalEMIPaid.Div(loan.MonthlyEMI), nil
}

func newPayment(loanID string, amount decimal.Decimal, paymentType string) *domain.Payment {
	return &domain.Payment{
		PaymentID:   uuid.New().String(),
		LoanID:      loanID,
		Amount:      amount,
		PaymentType: paymentType,
		PaymentDate: time.Now(),
	}
}

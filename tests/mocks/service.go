package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dwiputra/lending-engine/internal/domain"
)

type MockLendingService struct {
	mock.Mock
}

func (m *MockLendingService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingService) MakePayment(ctx context.Context, loanID string, request *domain.MakePaymentRequest) (*domain.PaymentResult, error) {
	args := m.Called(ctx, loanID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

func (m *MockLendingService) GetLedger(ctx context.Context, loanID string) (*domain.LedgerResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerResponse), args.Error(1)
}

func (m *MockLendingService) GetCustomerOverview(ctx context.Context, customerID string) (*domain.CustomerOverviewResponse, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerOverviewResponse), args.Error(1)
}

// NewMockLendingService creates a new mock lending service instance
func NewMockLendingService() *MockLendingService {
	return &MockLendingService{}
}

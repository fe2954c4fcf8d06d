package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound       = errors.New("loan not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrNoLoansFound       = errors.New("no loans found for customer")
	ErrLoanAlreadyPaid    = errors.New("loan is already paid")
	ErrPaymentMismatch    = errors.New("payment amount must match the monthly EMI exactly")
	ErrExcessPayment      = errors.New("payment amount exceeds outstanding loan amount")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrDivisionUndefined  = errors.New("no EMI slots remaining to re-amortize over")
	ErrValidation         = errors.New("validation failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeLoanNotFound       = "LOAN_NOT_FOUND"
	ErrCodeCustomerNotFound   = "CUSTOMER_NOT_FOUND"
	ErrCodeNoLoansFound       = "NO_LOANS_FOUND"
	ErrCodeLoanAlreadyPaid    = "LOAN_ALREADY_PAID"
	ErrCodeInvalidEMIAmount   = "INVALID_EMI_AMOUNT"
	ErrCodeExcessPayment      = "EXCESS_PAYMENT"
	ErrCodeInvalidPaymentType = "INVALID_PAYMENT_TYPE"
	ErrCodeDivisionUndefined  = "DIVISION_UNDEFINED"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapLoanNotFound() *BusinessError {
	return NewBusinessError(ErrCodeLoanNotFound, "Loan not found", ErrLoanNotFound)
}

func WrapCustomerNotFound() *BusinessError {
	return NewBusinessError(ErrCodeCustomerNotFound, "Customer Not Found", ErrCustomerNotFound)
}

func WrapNoLoansFound() *BusinessError {
	return NewBusinessError(ErrCodeNoLoansFound, "No Loans Found", ErrNoLoansFound)
}

func WrapLoanAlreadyPaid() *BusinessError {
	return NewBusinessError(ErrCodeLoanAlreadyPaid, "Loan is already paid", ErrLoanAlreadyPaid)
}

func WrapEMIAmountMismatch() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidEMIAmount,
		"Either change the amount to the monthly EMI or change the payment type to LUMP_SUM",
		ErrPaymentMismatch,
	)
}

func WrapExcessPayment() *BusinessError {
	return NewBusinessError(
		ErrCodeExcessPayment,
		"Payment amount is greater than the loan amount",
		ErrExcessPayment,
	)
}

func WrapInvalidPaymentType(paymentType string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentType,
		"Invalid payment type",
		fmt.Errorf("%w: %q", ErrInvalidPaymentType, paymentType),
	)
}

func WrapDivisionUndefined(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDivisionUndefined,
		fmt.Sprintf("Loan %s has no scheduled EMIs left to re-amortize over", loanID),
		ErrDivisionUndefined,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(ErrCodeDatabaseError, "database operation failed", err)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(ErrCodeCacheError, "cache operation failed", err)
}

// Code extracts the business error code from err, or the empty string if err
// is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/dwiputra/lending-engine/internal/domain"
	customError "github.com/dwiputra/lending-engine/pkg/errors"
	"github.com/dwiputra/lending-engine/pkg/response"
	"github.com/dwiputra/lending-engine/pkg/utils"
)

const paymentRecordedMessage = "Payment recorded successfully."

// LendingService is the business-logic surface the handlers depend on.
type LendingService interface {
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error)
	MakePayment(ctx context.Context, loanID string, request *domain.MakePaymentRequest) (*domain.PaymentResult, error)
	GetLedger(ctx context.Context, loanID string) (*domain.LedgerResponse, error)
	GetCustomerOverview(ctx context.Context, customerID string) (*domain.CustomerOverviewResponse, error)
}

type LendingHandler struct {
	service   LendingService
	validator *validator.Validate
}

func NewLendingHandler(service LendingService) *LendingHandler {
	v := validator.New()

	// Range validators for decimal fields; nil-ness is covered by `required`.
	_ = v.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.GreaterThan(decimal.Zero)
	})
	_ = v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.GreaterThanOrEqual(decimal.Zero)
	})

	return &LendingHandler{
		service:   service,
		validator: v,
	}
}

// CreateLoan handles POST /loans
func (h *LendingHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid data types for one or more fields. Ensure loan_amount, loan_period_years, and interest_rate_yearly are numbers.")
		return
	}

	if msg, ok := missingField(map[string]bool{
		"customer_id":          request.CustomerID == nil,
		"loan_amount":          request.LoanAmount == nil,
		"loan_period_years":    request.LoanPeriodYears == nil,
		"interest_rate_yearly": request.InterestRateYearly == nil,
	}, "customer_id", "loan_amount", "loan_period_years", "interest_rate_yearly"); !ok {
		response.BadRequest(w, msg)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Loan amount and loan period must be positive. Interest rate cannot be negative.")
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{
		LoanID:             loan.LoanID,
		CustomerID:         loan.CustomerID,
		TotalAmountPayable: utils.Round2(loan.TotalAmount),
		MonthlyEMI:         utils.Round2(loan.MonthlyEMI),
	})
}

// MakePayment handles POST /loans/{loan_id}/payments
func (h *LendingHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loan_id"]

	var request domain.MakePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid data types for one or more fields. Ensure amount is a number and payment_type is a string.")
		return
	}

	if msg, ok := missingField(map[string]bool{
		"amount":       request.Amount == nil,
		"payment_type": request.PaymentType == nil,
	}, "amount", "payment_type"); !ok {
		response.BadRequest(w, msg)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Payment amount must be positive.")
		return
	}

	result, err := h.service.MakePayment(r.Context(), loanID, &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, domain.MakePaymentResponse{
		PaymentID:       result.Payment.PaymentID,
		LoanID:          result.Payment.LoanID,
		Message:         paymentRecordedMessage,
		RemainingAmount: utils.Round2(result.RemainingAmount),
		PaymentType:     result.Payment.PaymentType,
		EMILeft:         utils.Round2(result.EMIsLeft),
	})
}

// GetLedger handles GET /loans/{loan_id}/ledger
func (h *LendingHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loan_id"]

	ledger, err := h.service.GetLedger(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	// Derived figures are rounded here, never in the service, so cached views
	// stay at full precision.
	view := *ledger
	view.TotalAmount = utils.Round2(ledger.TotalAmount)
	view.MonthlyEMI = utils.Round2(ledger.MonthlyEMI)
	view.AmountPaid = utils.Round2(ledger.AmountPaid)
	view.BalanceAmount = utils.Round2(ledger.BalanceAmount)

	response.OK(w, view)
}

// GetCustomerOverview handles GET /customers/{customer_id}/overview
func (h *LendingHandler) GetCustomerOverview(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["customer_id"]

	overview, err := h.service.GetCustomerOverview(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}

	loans := make([]*domain.LoanOverview, 0, len(overview.Loans))
	for _, lo := range overview.Loans {
		rounded := *lo
		rounded.EMIsLeft = utils.Round2(lo.EMIsLeft)
		loans = append(loans, &rounded)
	}

	response.OK(w, domain.CustomerOverviewResponse{
		CustomerID: overview.CustomerID,
		TotalLoans: overview.TotalLoans,
		Loans:      loans,
	})
}

// missingField reports the first absent required field in declaration order.
func missingField(absent map[string]bool, order ...string) (string, bool) {
	for _, name := range order {
		if absent[name] {
			return "Missing required field: " + name, false
		}
	}
	return "", true
}

// respondError maps business error codes to HTTP statuses; anything
// unrecognized is a 500 with the detail kept out of the body.
func respondError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		response.InternalServerError(w, "Internal server error")
		return
	}

	switch be.Code {
	case customError.ErrCodeLoanNotFound,
		customError.ErrCodeCustomerNotFound,
		customError.ErrCodeNoLoansFound:
		response.NotFound(w, be.Message)
	case customError.ErrCodeValidation,
		customError.ErrCodeLoanAlreadyPaid,
		customError.ErrCodeInvalidEMIAmount,
		customError.ErrCodeExcessPayment,
		customError.ErrCodeInvalidPaymentType,
		customError.ErrCodeDivisionUndefined:
		response.BadRequest(w, be.Message)
	default:
		response.InternalServerError(w, "Internal server error")
	}
}

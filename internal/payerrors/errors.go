// Package payerrors defines the rejection taxonomy shared by every stage of the
// purchase pipeline. Each rejection carries a stable reason code for programmatic
// handling and a human-readable message for display and logging.
package payerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable rejection reason.
type Code string

// Mandate stage
const (
	CodeInvalidSignature Code = "invalid_signature"
	CodeNotYetValid      Code = "mandate_not_yet_valid"
	CodeExpired          Code = "mandate_expired"
)

// Constraint stage
const (
	CodeExceedsPerTransactionLimit Code = "exceeds_per_transaction_limit"
	CodeCategoryNotAllowed         Code = "category_not_allowed"
	CodeBrandNotAllowed            Code = "brand_not_allowed"
)

// Ledger stage
const (
	CodeDuplicateTransaction  Code = "duplicate_transaction"
	CodeBudgetExceeded        Code = "budget_exceeded"
	CodeAuthorizationInactive Code = "authorization_inactive"
	CodeAuthorizationMismatch Code = "authorization_mismatch"
)

// On-chain stage
const (
	CodeTransactionFailed       Code = "transaction_failed"
	CodeTransferNotFound        Code = "transfer_not_found"
	CodeRecipientMismatch       Code = "recipient_mismatch"
	CodeAmountMismatch          Code = "amount_mismatch"
	CodeVerificationUnavailable Code = "verification_unavailable"
)

// Request stage
const (
	CodeMalformedAttestation  Code = "malformed_attestation"
	CodeUnsupportedNetwork    Code = "unsupported_network"
	CodeItemNotFound          Code = "item_not_found"
	CodePurchaseNotFound      Code = "purchase_not_found"
	CodeAuthorizationNotFound Code = "authorization_not_found"
)

// CodeInternal is used for errors that are not rejections.
const CodeInternal Code = "internal_error"

var statusByCode = map[Code]int{
	CodeInvalidSignature:           http.StatusForbidden,
	CodeNotYetValid:                http.StatusForbidden,
	CodeExpired:                    http.StatusForbidden,
	CodeExceedsPerTransactionLimit: http.StatusForbidden,
	CodeCategoryNotAllowed:         http.StatusForbidden,
	CodeBrandNotAllowed:            http.StatusForbidden,
	CodeAuthorizationInactive:      http.StatusForbidden,
	CodeAuthorizationMismatch:      http.StatusForbidden,
	CodeDuplicateTransaction:       http.StatusConflict,
	CodeBudgetExceeded:             http.StatusPaymentRequired,
	CodeTransactionFailed:          http.StatusPaymentRequired,
	CodeTransferNotFound:           http.StatusPaymentRequired,
	CodeRecipientMismatch:          http.StatusPaymentRequired,
	CodeAmountMismatch:             http.StatusPaymentRequired,
	CodeVerificationUnavailable:    http.StatusServiceUnavailable,
	CodeMalformedAttestation:       http.StatusBadRequest,
	CodeUnsupportedNetwork:         http.StatusBadRequest,
	CodeItemNotFound:               http.StatusNotFound,
	CodePurchaseNotFound:           http.StatusNotFound,
	CodeAuthorizationNotFound:      http.StatusNotFound,
	CodeInternal:                   http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status used when this rejection is surfaced to a caller.
func (c Code) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether resubmitting the same attestation unmodified can succeed.
// Only an unavailable chain oracle qualifies.
func (c Code) Retryable() bool {
	return c == CodeVerificationUnavailable
}

// PaymentError represents a terminal rejection of a purchase attempt
type PaymentError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// Is matches any PaymentError with the same code, so sentinels below work with errors.Is.
func (e *PaymentError) Is(target error) bool {
	var t *PaymentError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of the error with an extra detail entry.
func (e *PaymentError) WithDetail(key string, value interface{}) *PaymentError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &PaymentError{Code: e.Code, Message: e.Message, Details: details, Err: e.Err}
}

// New creates a new payment error
func New(code Code, message string) *PaymentError {
	return &PaymentError{Code: code, Message: message}
}

// Newf creates a new payment error with a formatted message
func Newf(code Code, format string, args ...interface{}) *PaymentError {
	return &PaymentError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a payment error that keeps the underlying cause for logging.
func Wrap(code Code, message string, err error) *PaymentError {
	return &PaymentError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the rejection code from err. Errors that are not rejections
// report CodeInternal and false.
func CodeOf(err error) (Code, bool) {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return CodeInternal, false
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidSignature           = New(CodeInvalidSignature, "mandate signature is invalid")
	ErrNotYetValid                = New(CodeNotYetValid, "mandate is not yet valid")
	ErrExpired                    = New(CodeExpired, "mandate has expired")
	ErrExceedsPerTransactionLimit = New(CodeExceedsPerTransactionLimit, "price exceeds per-transaction limit")
	ErrCategoryNotAllowed         = New(CodeCategoryNotAllowed, "category is not allowed")
	ErrBrandNotAllowed            = New(CodeBrandNotAllowed, "brand is not allowed")
	ErrDuplicateTransaction       = New(CodeDuplicateTransaction, "settlement reference already recorded")
	ErrBudgetExceeded             = New(CodeBudgetExceeded, "monthly budget exceeded")
	ErrAuthorizationInactive      = New(CodeAuthorizationInactive, "spending authorization is not active")
	ErrAuthorizationMismatch      = New(CodeAuthorizationMismatch, "spending authorization does not match mandate")
	ErrTransactionFailed          = New(CodeTransactionFailed, "transaction failed on-chain")
	ErrTransferNotFound           = New(CodeTransferNotFound, "token transfer not found in transaction")
	ErrRecipientMismatch          = New(CodeRecipientMismatch, "transfer recipient does not match")
	ErrAmountMismatch             = New(CodeAmountMismatch, "transfer amount outside tolerance")
	ErrVerificationUnavailable    = New(CodeVerificationUnavailable, "on-chain verification unavailable")
	ErrMalformedAttestation       = New(CodeMalformedAttestation, "payment attestation is malformed")
	ErrUnsupportedNetwork         = New(CodeUnsupportedNetwork, "network is not supported")
	ErrItemNotFound               = New(CodeItemNotFound, "item not found")
	ErrPurchaseNotFound           = New(CodePurchaseNotFound, "purchase not found")
	ErrAuthorizationNotFound      = New(CodeAuthorizationNotFound, "spending authorization not found")
)

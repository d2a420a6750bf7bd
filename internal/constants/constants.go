package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment = "prod"
	DevEnvironment  = "dev"
	LocalStage      = "local"
	TestStage       = "test"

	// Ledger backends
	LedgerBackendPostgres = "postgres"
	LedgerBackendMemory   = "memory"

	// Currencies
	USDCurrency  = "USD"
	USDCCurrency = "USDC"

	// Service name reported in structured logs
	ServiceName = "cyphera-agentpay"
)

// HTTP headers used by the payment challenge protocol
const (
	PaymentHeader         = "X-PAYMENT"
	PaymentResponseHeader = "X-PAYMENT-RESPONSE"
	CorrelationIDHeader   = "X-Correlation-ID"
)

// Settlement status values echoed back to clients
const (
	SettlementStatusConfirmed = "confirmed"
)

// Error codes for failures outside the payment taxonomy
const (
	RateLimitedError  = "rate_limited"
	UnauthorizedError = "unauthorized"
	ForbiddenError    = "forbidden"
	BadRequestError   = "bad_request"
)

// Purchase event types
const (
	EventTypePurchaseRecorded = "purchase.recorded"
)

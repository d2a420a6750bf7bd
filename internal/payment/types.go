package payment

import (
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/catalog"
	"github.com/cyphera/cyphera-agentpay/internal/ledger"
	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
)

// State is a step of a purchase attempt.
type State string

const (
	StateRequested          State = "REQUESTED"
	StatePaymentRequired    State = "PAYMENT_REQUIRED"
	StateIntentVerified     State = "INTENT_VERIFIED"
	StateConstraintsChecked State = "CONSTRAINTS_CHECKED"
	StateDuplicateChecked   State = "DUPLICATE_CHECKED"
	StateOnchainVerified    State = "ONCHAIN_VERIFIED"
	StateRecorded           State = "RECORDED"
	StateRejected           State = "REJECTED"
)

// PaymentOption is one accepted way to pay. Amount is in token base units.
type PaymentOption struct {
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
	Network     string `json:"network"`
	Recipient   string `json:"recipient"`
	Asset       string `json:"asset"`
}

// ItemSummary is the item as shown in a challenge.
type ItemSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
}

// Challenge is the payment-required response for a purchase without attestation.
type Challenge struct {
	Accepted []PaymentOption `json:"accepted"`
	Item     ItemSummary     `json:"item"`
}

// Attestation is a caller's claim that it paid for an item under a mandate.
type Attestation struct {
	Intent              mandate.IntentMandate `json:"intent"`
	IntentSignature     string                `json:"intentSignature"`
	SettlementReference string                `json:"settlementReference"`
	Network             string                `json:"network"`
	AuthorizationID     string                `json:"authorizationId,omitempty"`
}

// Confirmation is echoed to the caller after a purchase is recorded.
type Confirmation struct {
	SettlementReference string `json:"settlementReference"`
	Status              string `json:"status"`
	PurchaseID          string `json:"purchaseId"`
}

// Outcome is the result of processing an attestation. On rejection State is
// StateRejected, FailedAt is the last state reached and Err holds the reason.
type Outcome struct {
	State        State
	Trace        []State
	FailedAt     State
	Err          *payerrors.PaymentError
	Record       *ledger.PurchaseRecord
	Confirmation *Confirmation
	Item         catalog.Item
	CompletedAt  time.Time
}

func summarize(item catalog.Item) ItemSummary {
	return ItemSummary{ID: item.ID, Name: item.Name, Price: item.Price, Category: item.Category}
}

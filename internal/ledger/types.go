package ledger

import (
	"math/big"
	"strings"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/catalog"
	"github.com/cyphera/cyphera-agentpay/internal/constraints"
	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/onchain"
	"github.com/google/uuid"
)

// authorizationNamespace seeds mandate-derived authorization ids.
var authorizationNamespace = uuid.MustParse("6f1c5a2e-8d4b-4f3a-9e2c-7b5d1a0c3e91")

// PurchaseRecord is the durable outcome of a verified purchase. SettlementReference
// is unique across all records.
type PurchaseRecord struct {
	ID                  uuid.UUID             `json:"id"`
	ItemID              string                `json:"itemId"`
	SettlementReference string                `json:"settlementReference"`
	PayerAddress        string                `json:"payerAddress"`
	PayeeAddress        string                `json:"payeeAddress"`
	Amount              *big.Int              `json:"amount"`
	AmountCents         int64                 `json:"amountCents"`
	Network             string                `json:"network"`
	BlockNumber         uint64                `json:"blockNumber"`
	AuthorizationID     *uuid.UUID            `json:"authorizationId,omitempty"`
	PaymentProof        onchain.PaymentProof  `json:"paymentProof"`
	MandateSnapshot     mandate.IntentMandate `json:"mandateSnapshot"`
	ItemSnapshot        catalog.Item          `json:"itemSnapshot"`
	CreatedAt           time.Time             `json:"createdAt"`
}

// SpendingAuthorization is the persisted, budget-tracking form of a mandate.
type SpendingAuthorization struct {
	ID                 uuid.UUID `json:"id"`
	UserID             string    `json:"userId"`
	AgentID            string    `json:"agentId"`
	MonthlyBudget      int64     `json:"monthlyBudget"`
	MaxPerTransaction  int64     `json:"maxPerTransaction"`
	AllowedCategories  []string  `json:"allowedCategories"`
	AllowedBrands      []string  `json:"allowedBrands"`
	CurrentPeriodStart time.Time `json:"currentPeriodStart"`
	CurrentPeriodSpent int64     `json:"currentPeriodSpent"`
	ValidFrom          time.Time `json:"validFrom"`
	ValidUntil         time.Time `json:"validUntil"`
	Active             bool      `json:"active"`
	MandateDigest      string    `json:"mandateDigest"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Limits returns the per-purchase rules of the authorization.
func (a SpendingAuthorization) Limits() constraints.Limits {
	return constraints.Limits{
		MaxPerTransaction: a.MaxPerTransaction,
		AllowedCategories: a.AllowedCategories,
		AllowedBrands:     a.AllowedBrands,
	}
}

// SpentAt returns the amount spent in the period containing now. A stored period
// that has ended counts as nothing spent.
func (a SpendingAuthorization) SpentAt(now time.Time) int64 {
	if PeriodStart(now).After(a.CurrentPeriodStart) {
		return 0
	}
	return a.CurrentPeriodSpent
}

// RemainingAt returns the budget left in the period containing now.
func (a SpendingAuthorization) RemainingAt(now time.Time) int64 {
	return a.MonthlyBudget - a.SpentAt(now)
}

// BudgetDebit asks a commit to charge Amount against an authorization. When the
// authorization does not exist yet it is created from Authorization.
type BudgetDebit struct {
	Authorization SpendingAuthorization
	Amount        int64
	At            time.Time
}

// CanonicalReference returns the form of a settlement reference used as the
// deduplication key. Transaction hashes are case-insensitive hex, so every case
// variant of one hash maps to the same key.
func CanonicalReference(reference string) string {
	return strings.ToLower(strings.TrimSpace(reference))
}

// PeriodStart returns the start of the calendar month (UTC) containing t.
func PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AuthorizationIDForDigest derives the authorization id of a mandate from its digest,
// so the same signed mandate always draws on the same budget.
func AuthorizationIDForDigest(digest string) uuid.UUID {
	return uuid.NewSHA1(authorizationNamespace, []byte(digest))
}

// AuthorizationFromMandate projects a verified mandate onto a new authorization
// whose first period contains now.
func AuthorizationFromMandate(m mandate.IntentMandate, now time.Time) (SpendingAuthorization, error) {
	digest, err := m.Digest()
	if err != nil {
		return SpendingAuthorization{}, err
	}
	return SpendingAuthorization{
		ID:                 AuthorizationIDForDigest(digest),
		UserID:             m.UserID,
		AgentID:            m.AgentID,
		MonthlyBudget:      m.MonthlyBudget,
		MaxPerTransaction:  m.MaxPerTransaction,
		AllowedCategories:  copySet(m.AllowedCategories),
		AllowedBrands:      copySet(m.AllowedBrands),
		CurrentPeriodStart: PeriodStart(now),
		ValidFrom:          m.ValidFrom.UTC(),
		ValidUntil:         m.ValidUntil.UTC(),
		Active:             true,
		MandateDigest:      digest,
		CreatedAt:          now.UTC(),
		UpdatedAt:          now.UTC(),
	}, nil
}

func copySet(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

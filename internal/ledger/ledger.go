// Package ledger records verified purchases exactly once per settlement reference
// and tracks cumulative spend against spending authorizations.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ledger is the settlement ledger service over a Store.
type Ledger struct {
	store  Store
	logger *zap.Logger
}

// New creates a new ledger service
func New(store Store) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger.Log,
	}
}

// CheckNotDuplicate fails fast when a purchase with this settlement reference is
// already recorded. The commit re-checks atomically; this is only an early exit.
func (l *Ledger) CheckNotDuplicate(ctx context.Context, settlementReference string) error {
	settlementReference = CanonicalReference(settlementReference)
	exists, err := l.store.PurchaseExists(ctx, settlementReference)
	if err != nil {
		return err
	}
	if exists {
		return duplicateError(settlementReference)
	}
	return nil
}

// Commit persists record and applies debit in one atomic step. Either both take
// effect or neither does.
func (l *Ledger) Commit(ctx context.Context, record PurchaseRecord, debit *BudgetDebit) (*PurchaseRecord, error) {
	record.SettlementReference = CanonicalReference(record.SettlementReference)
	record.PaymentProof.SettlementReference = CanonicalReference(record.PaymentProof.SettlementReference)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if debit != nil {
		if debit.Amount < 0 {
			return nil, fmt.Errorf("debit amount must not be negative: %d", debit.Amount)
		}
		if debit.At.IsZero() {
			debit.At = record.CreatedAt
		}
		id := debit.Authorization.ID
		record.AuthorizationID = &id
	}

	committed, err := l.store.CommitPurchase(ctx, record, debit)
	if err != nil {
		if code, ok := payerrors.CodeOf(err); ok {
			l.logger.Warn("Purchase commit rejected",
				zap.String("reason", string(code)),
				zap.String("settlement_reference", record.SettlementReference),
			)
		} else {
			l.logger.Error("Purchase commit failed",
				zap.String("settlement_reference", record.SettlementReference),
				zap.Error(err),
			)
		}
		return nil, err
	}

	l.logger.Info("Purchase recorded",
		zap.String("purchase_id", committed.ID.String()),
		zap.String("settlement_reference", committed.SettlementReference),
		zap.String("item_id", committed.ItemID),
	)
	return committed, nil
}

// GetPurchase returns a recorded purchase.
func (l *Ledger) GetPurchase(ctx context.Context, id uuid.UUID) (*PurchaseRecord, error) {
	return l.store.GetPurchase(ctx, id)
}

// CreateAuthorization persists the authorization derived from a verified mandate.
// Creating it again for the same mandate returns the existing authorization.
func (l *Ledger) CreateAuthorization(ctx context.Context, m mandate.IntentMandate, now time.Time) (*SpendingAuthorization, bool, error) {
	auth, err := AuthorizationFromMandate(m, now)
	if err != nil {
		return nil, false, err
	}
	stored, created, err := l.store.CreateAuthorization(ctx, auth)
	if err != nil {
		return nil, false, err
	}
	if created {
		l.logger.Info("Spending authorization created",
			zap.String("authorization_id", stored.ID.String()),
			zap.String("user_id", stored.UserID),
			zap.String("agent_id", stored.AgentID),
		)
	}
	return stored, created, nil
}

// GetAuthorization returns a spending authorization.
func (l *Ledger) GetAuthorization(ctx context.Context, id uuid.UUID) (*SpendingAuthorization, error) {
	return l.store.GetAuthorization(ctx, id)
}

// CancelAuthorization deactivates an authorization. It is never deleted.
func (l *Ledger) CancelAuthorization(ctx context.Context, id uuid.UUID) (*SpendingAuthorization, error) {
	auth, err := l.store.DeactivateAuthorization(ctx, id)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Spending authorization cancelled", zap.String("authorization_id", id.String()))
	return auth, nil
}

// ExpireAuthorizations deactivates every active authorization past its validUntil.
func (l *Ledger) ExpireAuthorizations(ctx context.Context, now time.Time) (int64, error) {
	n, err := l.store.DeactivateExpiredAuthorizations(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		l.logger.Info("Expired spending authorizations deactivated", zap.Int64("count", n))
	}
	return n, nil
}

// CheckDebit returns the rejection a debit of amount at the given time would hit,
// or nil if it fits in the authorization's current period.
func CheckDebit(a SpendingAuthorization, amount int64, at time.Time) error {
	if !a.Active {
		return payerrors.Newf(payerrors.CodeAuthorizationInactive, "spending authorization %s is cancelled", a.ID)
	}
	if at.After(a.ValidUntil) {
		return payerrors.Newf(payerrors.CodeAuthorizationInactive, "spending authorization %s expired at %s",
			a.ID, a.ValidUntil.UTC().Format(time.RFC3339))
	}
	if spent := a.SpentAt(at); spent+amount > a.MonthlyBudget {
		return payerrors.Newf(payerrors.CodeBudgetExceeded,
			"purchase of %d would exceed monthly budget %d (spent %d)", amount, a.MonthlyBudget, spent).
			WithDetail("monthlyBudget", a.MonthlyBudget).
			WithDetail("currentPeriodSpent", spent).
			WithDetail("amount", amount)
	}
	return nil
}

func duplicateError(settlementReference string) error {
	return payerrors.Newf(payerrors.CodeDuplicateTransaction, "settlement reference %s already recorded", settlementReference).
		WithDetail("settlementReference", settlementReference)
}

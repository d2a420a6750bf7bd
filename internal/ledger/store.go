package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the transactional persistence behind the ledger. CommitPurchase must
// insert the record and apply the optional debit atomically, rejecting a reused
// settlement reference with duplicate_transaction and an overdrawn budget with
// budget_exceeded.
type Store interface {
	PurchaseExists(ctx context.Context, settlementReference string) (bool, error)
	CommitPurchase(ctx context.Context, record PurchaseRecord, debit *BudgetDebit) (*PurchaseRecord, error)
	GetPurchase(ctx context.Context, id uuid.UUID) (*PurchaseRecord, error)

	// CreateAuthorization inserts auth unless one with the same id exists, and
	// returns the stored authorization with whether it was created.
	CreateAuthorization(ctx context.Context, auth SpendingAuthorization) (*SpendingAuthorization, bool, error)
	GetAuthorization(ctx context.Context, id uuid.UUID) (*SpendingAuthorization, error)
	DeactivateAuthorization(ctx context.Context, id uuid.UUID) (*SpendingAuthorization, error)
	DeactivateExpiredAuthorizations(ctx context.Context, now time.Time) (int64, error)
}

package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/google/uuid"
)

// MemoryStore is a single-process ledger store. One mutex serializes commits,
// which gives the same guarantees as the Postgres store within a process.
type MemoryStore struct {
	mu             sync.Mutex
	purchases      map[uuid.UUID]PurchaseRecord
	byReference    map[string]uuid.UUID
	authorizations map[uuid.UUID]SpendingAuthorization
}

// NewMemoryStore creates an empty in-memory ledger store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		purchases:      make(map[uuid.UUID]PurchaseRecord),
		byReference:    make(map[string]uuid.UUID),
		authorizations: make(map[uuid.UUID]SpendingAuthorization),
	}
}

func (s *MemoryStore) PurchaseExists(_ context.Context, settlementReference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byReference[settlementReference]
	return ok, nil
}

func (s *MemoryStore) CommitPurchase(ctx context.Context, record PurchaseRecord, debit *BudgetDebit) (*PurchaseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byReference[record.SettlementReference]; ok {
		return nil, duplicateError(record.SettlementReference)
	}

	if debit != nil {
		auth, ok := s.authorizations[debit.Authorization.ID]
		if !ok {
			auth = debit.Authorization
		}
		if err := CheckDebit(auth, debit.Amount, debit.At); err != nil {
			return nil, err
		}
		if start := PeriodStart(debit.At); start.After(auth.CurrentPeriodStart) {
			auth.CurrentPeriodStart = start
			auth.CurrentPeriodSpent = 0
		}
		auth.CurrentPeriodSpent += debit.Amount
		auth.UpdatedAt = debit.At
		s.authorizations[auth.ID] = auth
	}

	s.purchases[record.ID] = record
	s.byReference[record.SettlementReference] = record.ID
	committed := record
	return &committed, nil
}

func (s *MemoryStore) GetPurchase(_ context.Context, id uuid.UUID) (*PurchaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.purchases[id]
	if !ok {
		return nil, payerrors.Newf(payerrors.CodePurchaseNotFound, "purchase %s not found", id)
	}
	return &r, nil
}

func (s *MemoryStore) CreateAuthorization(_ context.Context, auth SpendingAuthorization) (*SpendingAuthorization, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.authorizations[auth.ID]; ok {
		return &existing, false, nil
	}
	s.authorizations[auth.ID] = auth
	return &auth, true, nil
}

func (s *MemoryStore) GetAuthorization(_ context.Context, id uuid.UUID) (*SpendingAuthorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.authorizations[id]
	if !ok {
		return nil, payerrors.Newf(payerrors.CodeAuthorizationNotFound, "spending authorization %s not found", id)
	}
	return &a, nil
}

func (s *MemoryStore) DeactivateAuthorization(_ context.Context, id uuid.UUID) (*SpendingAuthorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.authorizations[id]
	if !ok {
		return nil, payerrors.Newf(payerrors.CodeAuthorizationNotFound, "spending authorization %s not found", id)
	}
	a.Active = false
	a.UpdatedAt = time.Now().UTC()
	s.authorizations[id] = a
	return &a, nil
}

func (s *MemoryStore) DeactivateExpiredAuthorizations(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, a := range s.authorizations {
		if a.Active && a.ValidUntil.Before(now) {
			a.Active = false
			a.UpdatedAt = now
			s.authorizations[id] = a
			n++
		}
	}
	return n, nil
}

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/db"
	"github.com/cyphera/cyphera-agentpay/internal/helpers"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	settlementReferenceConstraint = "purchases_settlement_reference_key"
	// commitRetries bounds retries of a commit aborted by a serialization failure.
	commitRetries = 3
)

// TxRunner runs fn with queries bound to one database transaction, committing
// only if fn returns nil.
type TxRunner func(ctx context.Context, fn func(q db.Querier) error) error

// PostgresStore persists the ledger in Postgres. Uniqueness of settlement
// references is enforced by a unique constraint and budget debits by a single
// conditional UPDATE, so correctness holds across processes.
type PostgresStore struct {
	queries db.Querier
	runInTx TxRunner
}

// NewPostgresStore creates a ledger store over a connection pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	queries := db.New(pool)
	return &PostgresStore{
		queries: queries,
		runInTx: func(ctx context.Context, fn func(q db.Querier) error) error {
			return helpers.WithTransactionRetry(ctx, pool, commitRetries, func(tx pgx.Tx) error {
				return fn(queries.WithTx(tx))
			})
		},
	}
}

// NewPostgresStoreWithQuerier creates a store over explicit queries and
// transaction runner.
func NewPostgresStoreWithQuerier(queries db.Querier, runInTx TxRunner) *PostgresStore {
	return &PostgresStore{queries: queries, runInTx: runInTx}
}

func (s *PostgresStore) PurchaseExists(ctx context.Context, settlementReference string) (bool, error) {
	exists, err := s.queries.PurchaseExistsBySettlementReference(ctx, settlementReference)
	if err != nil {
		return false, fmt.Errorf("failed to check settlement reference: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CommitPurchase(ctx context.Context, record PurchaseRecord, debit *BudgetDebit) (*PurchaseRecord, error) {
	params, err := toInsertPurchaseParams(record)
	if err != nil {
		return nil, err
	}

	var committed *PurchaseRecord
	err = s.runInTx(ctx, func(q db.Querier) error {
		if debit != nil {
			if _, err := q.InsertSpendingAuthorizationIfAbsent(ctx, toInsertAuthorizationParams(debit.Authorization)); err != nil {
				return fmt.Errorf("failed to ensure spending authorization: %w", err)
			}
		}

		row, err := q.InsertPurchase(ctx, params)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || helpers.IsUniqueViolation(err, settlementReferenceConstraint) {
				return duplicateError(record.SettlementReference)
			}
			return fmt.Errorf("failed to insert purchase: %w", err)
		}

		if debit != nil {
			_, err := q.DebitSpendingAuthorization(ctx, db.DebitSpendingAuthorizationParams{
				Now:    helpers.TimeToNullableTimestamptz(debit.At),
				Amount: debit.Amount,
				ID:     debit.Authorization.ID,
			})
			if errors.Is(err, pgx.ErrNoRows) {
				return classifyDebitFailure(ctx, q, debit)
			}
			if err != nil {
				return fmt.Errorf("failed to debit spending authorization: %w", err)
			}
		}

		committed, err = fromDBPurchase(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// classifyDebitFailure explains why the conditional debit matched no row. It runs
// inside the failing transaction, which is rolled back regardless.
func classifyDebitFailure(ctx context.Context, q db.Querier, debit *BudgetDebit) error {
	row, err := q.GetSpendingAuthorization(ctx, debit.Authorization.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payerrors.Newf(payerrors.CodeAuthorizationNotFound, "spending authorization %s not found", debit.Authorization.ID)
		}
		return fmt.Errorf("failed to load spending authorization: %w", err)
	}
	if rejection := CheckDebit(fromDBAuthorization(row), debit.Amount, debit.At); rejection != nil {
		return rejection
	}
	// Lost a race between the debit and the read; report the conservative outcome.
	return payerrors.ErrBudgetExceeded
}

func (s *PostgresStore) GetPurchase(ctx context.Context, id uuid.UUID) (*PurchaseRecord, error) {
	row, err := s.queries.GetPurchase(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payerrors.Newf(payerrors.CodePurchaseNotFound, "purchase %s not found", id)
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return fromDBPurchase(row)
}

func (s *PostgresStore) CreateAuthorization(ctx context.Context, auth SpendingAuthorization) (*SpendingAuthorization, bool, error) {
	var (
		stored  *SpendingAuthorization
		created bool
	)
	err := s.runInTx(ctx, func(q db.Querier) error {
		n, err := q.InsertSpendingAuthorizationIfAbsent(ctx, toInsertAuthorizationParams(auth))
		if err != nil {
			return fmt.Errorf("failed to insert spending authorization: %w", err)
		}
		created = n > 0
		row, err := q.GetSpendingAuthorization(ctx, auth.ID)
		if err != nil {
			return fmt.Errorf("failed to load spending authorization: %w", err)
		}
		a := fromDBAuthorization(row)
		stored = &a
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *PostgresStore) GetAuthorization(ctx context.Context, id uuid.UUID) (*SpendingAuthorization, error) {
	row, err := s.queries.GetSpendingAuthorization(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payerrors.Newf(payerrors.CodeAuthorizationNotFound, "spending authorization %s not found", id)
		}
		return nil, fmt.Errorf("failed to get spending authorization: %w", err)
	}
	a := fromDBAuthorization(row)
	return &a, nil
}

func (s *PostgresStore) DeactivateAuthorization(ctx context.Context, id uuid.UUID) (*SpendingAuthorization, error) {
	row, err := s.queries.DeactivateSpendingAuthorization(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payerrors.Newf(payerrors.CodeAuthorizationNotFound, "spending authorization %s not found", id)
		}
		return nil, fmt.Errorf("failed to deactivate spending authorization: %w", err)
	}
	a := fromDBAuthorization(row)
	return &a, nil
}

func (s *PostgresStore) DeactivateExpiredAuthorizations(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.queries.DeactivateExpiredSpendingAuthorizations(ctx, helpers.TimeToNullableTimestamptz(now))
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired authorizations: %w", err)
	}
	return n, nil
}

func toInsertPurchaseParams(r PurchaseRecord) (db.InsertPurchaseParams, error) {
	proof, err := json.Marshal(r.PaymentProof)
	if err != nil {
		return db.InsertPurchaseParams{}, fmt.Errorf("failed to encode payment proof: %w", err)
	}
	mandateSnapshot, err := json.Marshal(r.MandateSnapshot)
	if err != nil {
		return db.InsertPurchaseParams{}, fmt.Errorf("failed to encode mandate snapshot: %w", err)
	}
	itemSnapshot, err := json.Marshal(r.ItemSnapshot)
	if err != nil {
		return db.InsertPurchaseParams{}, fmt.Errorf("failed to encode item snapshot: %w", err)
	}
	return db.InsertPurchaseParams{
		ID:                  r.ID,
		ItemID:              r.ItemID,
		SettlementReference: r.SettlementReference,
		PayerAddress:        r.PayerAddress,
		PayeeAddress:        r.PayeeAddress,
		Amount:              helpers.BigIntToNumeric(r.Amount),
		AmountCents:         r.AmountCents,
		Network:             r.Network,
		BlockNumber:         int64(r.BlockNumber),
		AuthorizationID:     helpers.UUIDToNullable(r.AuthorizationID),
		PaymentProof:        proof,
		MandateSnapshot:     mandateSnapshot,
		ItemSnapshot:        itemSnapshot,
		CreatedAt:           helpers.TimeToNullableTimestamptz(r.CreatedAt),
	}, nil
}

func fromDBPurchase(row db.Purchase) (*PurchaseRecord, error) {
	r := &PurchaseRecord{
		ID:                  row.ID,
		ItemID:              row.ItemID,
		SettlementReference: row.SettlementReference,
		PayerAddress:        row.PayerAddress,
		PayeeAddress:        row.PayeeAddress,
		Amount:              helpers.NumericToBigInt(row.Amount),
		AmountCents:         row.AmountCents,
		Network:             row.Network,
		BlockNumber:         uint64(row.BlockNumber),
		AuthorizationID:     helpers.NullableToUUID(row.AuthorizationID),
		CreatedAt:           row.CreatedAt.Time,
	}
	if err := json.Unmarshal(row.PaymentProof, &r.PaymentProof); err != nil {
		return nil, fmt.Errorf("failed to decode payment proof: %w", err)
	}
	if err := json.Unmarshal(row.MandateSnapshot, &r.MandateSnapshot); err != nil {
		return nil, fmt.Errorf("failed to decode mandate snapshot: %w", err)
	}
	if err := json.Unmarshal(row.ItemSnapshot, &r.ItemSnapshot); err != nil {
		return nil, fmt.Errorf("failed to decode item snapshot: %w", err)
	}
	return r, nil
}

func toInsertAuthorizationParams(a SpendingAuthorization) db.InsertSpendingAuthorizationIfAbsentParams {
	return db.InsertSpendingAuthorizationIfAbsentParams{
		ID:                 a.ID,
		UserID:             a.UserID,
		AgentID:            a.AgentID,
		MonthlyBudget:      a.MonthlyBudget,
		MaxPerTransaction:  a.MaxPerTransaction,
		AllowedCategories:  copySet(a.AllowedCategories),
		AllowedBrands:      copySet(a.AllowedBrands),
		CurrentPeriodStart: helpers.TimeToNullableTimestamptz(a.CurrentPeriodStart),
		ValidFrom:          helpers.TimeToNullableTimestamptz(a.ValidFrom),
		ValidUntil:         helpers.TimeToNullableTimestamptz(a.ValidUntil),
		MandateDigest:      a.MandateDigest,
	}
}

func fromDBAuthorization(row db.SpendingAuthorization) SpendingAuthorization {
	return SpendingAuthorization{
		ID:                 row.ID,
		UserID:             row.UserID,
		AgentID:            row.AgentID,
		MonthlyBudget:      row.MonthlyBudget,
		MaxPerTransaction:  row.MaxPerTransaction,
		AllowedCategories:  row.AllowedCategories,
		AllowedBrands:      row.AllowedBrands,
		CurrentPeriodStart: row.CurrentPeriodStart.Time,
		CurrentPeriodSpent: row.CurrentPeriodSpent,
		ValidFrom:          row.ValidFrom.Time,
		ValidUntil:         row.ValidUntil.Time,
		Active:             row.Active,
		MandateDigest:      row.MandateDigest,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}

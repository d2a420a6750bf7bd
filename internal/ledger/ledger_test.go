package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/catalog"
	"github.com/cyphera/cyphera-agentpay/internal/ledger"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/onchain"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

var march = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func testMandate() mandate.IntentMandate {
	return mandate.IntentMandate{
		UserID:            "0x00000000000000000000000000000000000000aa",
		AgentID:           "stylist-agent",
		MonthlyBudget:     100,
		MaxPerTransaction: 50,
		AllowedCategories: []string{"outerwear"},
		ValidFrom:         march.Add(-24 * time.Hour),
		ValidUntil:        march.Add(90 * 24 * time.Hour),
	}
}

func testRecord(reference string, cents int64) ledger.PurchaseRecord {
	return ledger.PurchaseRecord{
		ItemID:              "jacket-1",
		SettlementReference: reference,
		PayerAddress:        "0x00000000000000000000000000000000000000aa",
		PayeeAddress:        "0x00000000000000000000000000000000000000bb",
		Amount:              big.NewInt(cents * 10_000),
		AmountCents:         cents,
		Network:             "eip155:84532",
		BlockNumber:         42,
		PaymentProof:        onchain.PaymentProof{SettlementReference: reference, Amount: big.NewInt(cents * 10_000)},
		MandateSnapshot:     testMandate(),
		ItemSnapshot:        catalog.Item{ID: "jacket-1", Price: cents, Category: "outerwear"},
		CreatedAt:           march,
	}
}

func debit(t *testing.T, amount int64, at time.Time) *ledger.BudgetDebit {
	t.Helper()
	auth, err := ledger.AuthorizationFromMandate(testMandate(), at)
	require.NoError(t, err)
	return &ledger.BudgetDebit{Authorization: auth, Amount: amount, At: at}
}

func TestCommit_IdempotentSequential(t *testing.T) {
	l := ledger.New(ledger.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, l.CheckNotDuplicate(ctx, "0xabc"))

	first, err := l.Commit(ctx, testRecord("0xabc", 10), nil)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	_, err = l.Commit(ctx, testRecord("0xabc", 10), nil)
	assert.True(t, errors.Is(err, payerrors.ErrDuplicateTransaction))

	err = l.CheckNotDuplicate(ctx, "0xabc")
	assert.True(t, errors.Is(err, payerrors.ErrDuplicateTransaction))

	stored, err := l.GetPurchase(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", stored.SettlementReference)
}

func TestCommit_ReferenceCaseVariantsAreOneKey(t *testing.T) {
	l := ledger.New(ledger.NewMemoryStore())
	ctx := context.Background()

	first, err := l.Commit(ctx, testRecord("0xABCdef01", 10), nil)
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef01", first.SettlementReference)
	assert.Equal(t, "0xabcdef01", first.PaymentProof.SettlementReference)

	for _, variant := range []string{"0xabcdef01", "0XABCDEF01", " 0xAbCdEf01 "} {
		err = l.CheckNotDuplicate(ctx, variant)
		assert.True(t, errors.Is(err, payerrors.ErrDuplicateTransaction), variant)

		_, err = l.Commit(ctx, testRecord(variant, 10), nil)
		assert.True(t, errors.Is(err, payerrors.ErrDuplicateTransaction), variant)
	}
}

func TestCommit_IdempotentConcurrent(t *testing.T) {
	l := ledger.New(ledger.NewMemoryStore())

	const attempts = 20
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		duplicates int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Commit(context.Background(), testRecord("0xabc", 10), nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, payerrors.ErrDuplicateTransaction) {
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, duplicates)
}

func TestCommit_BudgetNeverExceededUnderConcurrency(t *testing.T) {
	l := ledger.New(ledger.NewMemoryStore())
	ctx := context.Background()

	_, err := l.Commit(ctx, testRecord("0xseed", 90), debit(t, 90, march))
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		exceeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Commit(ctx, testRecord(fmt.Sprintf("0x%d", i), 5), debit(t, 5, march))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, payerrors.ErrBudgetExceeded) {
				exceeded++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, ok)
	assert.Equal(t, 8, exceeded)

	auth, err := l.GetAuthorization(ctx, debit(t, 0, march).Authorization.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), auth.CurrentPeriodSpent)
}

func TestCommit_RejectedDebitPersistsNothing(t *testing.T) {
	l := ledger.New(ledger.NewMemoryStore())
	ctx := context.Background()

	_, err := l.Commit(ctx, testRecord("0xbig", 101), debit(t, 101, march))
	assert.True(t, errors.Is(err, payerrors.ErrBudgetExceeded))

	assert.NoError(t, l.CheckNotDuplicate(ctx, "0xbig"))
	_, err = l.GetAuthorization(ctx, debit(t, 0, march).Authorization.ID)
	assert.True(t, errors.Is(err, payerrors.ErrAuthorizationNotFound))
}

func TestCommit_MonthlyRollover(t *testing.T) {
	l := ledger.New(ledger.NewMemoryStore())
	ctx := context.Background()

	_, err := l.Commit(ctx, testRecord("0x1", 100), debit(t, 100, march))
	require.NoError(t, err)

	_, err = l.Commit(ctx, testRecord("0x2", 1), debit(t, 1, march.Add(time.Hour)))
	assert.True(t, errors.Is(err, payerrors.ErrBudgetExceeded))

	april := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	_, err = l.Commit(ctx, testRecord("0x3", 40), debit(t, 40, april))
	require.NoError(t, err)

	auth, err := l.GetAuthorization(ctx, debit(t, 0, march).Authorization.ID)
	require.NoError(t, err)
	assert.Equal(t, april, auth.CurrentPeriodStart)
	assert.Equal(t, int64(40), auth.CurrentPeriodSpent)
}

func TestCommit_CancelledAuthorization(t *testing.T) {
	l := ledger.New(ledger.NewMemoryStore())
	ctx := context.Background()

	auth, created, err := l.CreateAuthorization(ctx, testMandate(), march)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := l.CreateAuthorization(ctx, testMandate(), march.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, auth.ID, again.ID)

	cancelled, err := l.CancelAuthorization(ctx, auth.ID)
	require.NoError(t, err)
	assert.False(t, cancelled.Active)

	_, err = l.Commit(ctx, testRecord("0xabc", 10), debit(t, 10, march))
	assert.True(t, errors.Is(err, payerrors.ErrAuthorizationInactive))
	assert.NoError(t, l.CheckNotDuplicate(ctx, "0xabc"))
}

func TestExpireAuthorizations(t *testing.T) {
	l := ledger.New(ledger.NewMemoryStore())
	ctx := context.Background()

	auth, _, err := l.CreateAuthorization(ctx, testMandate(), march)
	require.NoError(t, err)

	n, err := l.ExpireAuthorizations(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = l.ExpireAuthorizations(ctx, auth.ValidUntil.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := l.GetAuthorization(ctx, auth.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestAuthorizationFromMandate_Deterministic(t *testing.T) {
	a, err := ledger.AuthorizationFromMandate(testMandate(), march)
	require.NoError(t, err)
	b, err := ledger.AuthorizationFromMandate(testMandate(), march.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	other := testMandate()
	other.MonthlyBudget = 200
	c, err := ledger.AuthorizationFromMandate(other, march)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)

	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), a.CurrentPeriodStart)
}

func TestCheckDebit(t *testing.T) {
	auth, err := ledger.AuthorizationFromMandate(testMandate(), march)
	require.NoError(t, err)
	auth.CurrentPeriodSpent = 90

	assert.NoError(t, ledger.CheckDebit(auth, 10, march))
	assert.True(t, errors.Is(ledger.CheckDebit(auth, 11, march), payerrors.ErrBudgetExceeded))
	assert.True(t, errors.Is(ledger.CheckDebit(auth, 1, auth.ValidUntil.Add(time.Second)), payerrors.ErrAuthorizationInactive))

	auth.Active = false
	assert.True(t, errors.Is(ledger.CheckDebit(auth, 1, march), payerrors.ErrAuthorizationInactive))
}

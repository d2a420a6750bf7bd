package chain

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

type fakeReader struct {
	chainID  int64
	receipt  *types.Receipt
	err      error
	notFound int32
	calls    int32
	closed   bool
}

func (f *fakeReader) TransactionReceipt(ctx context.Context, _ common.Hash) (*types.Receipt, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.notFound {
		return nil, ethereum.NotFound
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

func (f *fakeReader) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(f.chainID), nil
}

func (f *fakeReader) Close() { f.closed = true }

func newTestClient(t *testing.T, reader *fakeReader, timeout time.Duration) *Client {
	t.Helper()
	registry, err := NewRegistry([]string{NetworkBaseSepolia})
	require.NoError(t, err)

	c := NewClient(registry, ClientConfig{RPCAPIKey: "key", Timeout: timeout, PollInterval: 5 * time.Millisecond})
	c.dial = func(context.Context, string) (receiptReader, error) { return reader, nil }
	require.NoError(t, c.Initialize(context.Background()))
	return c
}

func TestClient_RPCURL(t *testing.T) {
	n, ok := Lookup(NetworkBase)
	require.True(t, ok)

	c := NewClient(NewRegistryFromNetworks(n), ClientConfig{RPCAPIKey: "abc"})
	url, err := c.RPCURL(n)
	require.NoError(t, err)
	assert.Equal(t, "https://base-mainnet.infura.io/v3/abc", url)

	c = NewClient(NewRegistryFromNetworks(n), ClientConfig{RPCURLs: map[string]string{NetworkBase: "http://localhost:8545"}})
	url, err = c.RPCURL(n)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", url)

	c = NewClient(NewRegistryFromNetworks(n), ClientConfig{})
	_, err = c.RPCURL(n)
	assert.Error(t, err)
}

func TestClient_InitializeRejectsWrongChain(t *testing.T) {
	registry, err := NewRegistry([]string{NetworkBaseSepolia})
	require.NoError(t, err)

	reader := &fakeReader{chainID: 1}
	c := NewClient(registry, ClientConfig{RPCAPIKey: "key"})
	c.dial = func(context.Context, string) (receiptReader, error) { return reader, nil }

	err = c.Initialize(context.Background())
	assert.Error(t, err)
	assert.True(t, reader.closed)
}

func TestClient_FetchReceipt(t *testing.T) {
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(7)}

	t.Run("found", func(t *testing.T) {
		c := newTestClient(t, &fakeReader{chainID: 84532, receipt: receipt}, time.Second)
		got, err := c.FetchReceipt(context.Background(), "0xabc", NetworkBaseSepolia)
		require.NoError(t, err)
		assert.Equal(t, receipt, got)
	})

	t.Run("polls until indexed", func(t *testing.T) {
		reader := &fakeReader{chainID: 84532, receipt: receipt, notFound: 2}
		c := newTestClient(t, reader, time.Second)
		got, err := c.FetchReceipt(context.Background(), "0xabc", NetworkBaseSepolia)
		require.NoError(t, err)
		assert.Equal(t, receipt, got)
		assert.Equal(t, int32(3), atomic.LoadInt32(&reader.calls))
	})

	t.Run("times out while never indexed", func(t *testing.T) {
		reader := &fakeReader{chainID: 84532, notFound: 1 << 30}
		c := newTestClient(t, reader, 50*time.Millisecond)
		_, err := c.FetchReceipt(context.Background(), "0xabc", NetworkBaseSepolia)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("rpc error is not retried", func(t *testing.T) {
		reader := &fakeReader{chainID: 84532, err: errors.New("connection refused")}
		c := newTestClient(t, reader, time.Second)
		_, err := c.FetchReceipt(context.Background(), "0xabc", NetworkBaseSepolia)
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&reader.calls))
	})

	t.Run("unknown network", func(t *testing.T) {
		c := newTestClient(t, &fakeReader{chainID: 84532}, time.Second)
		_, err := c.FetchReceipt(context.Background(), "0xabc", NetworkBase)
		assert.True(t, errors.Is(err, ErrUnknownNetwork))
	})
}

func TestTokenUnitsForMinor(t *testing.T) {
	n, ok := Lookup(NetworkBaseSepolia)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(250_000_000), n.TokenUnitsForMinor(250_00))

	eighteen := Network{TokenDecimals: 18}
	expected, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, expected, eighteen.TokenUnitsForMinor(100))
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry([]string{NetworkBase, " eip155:137 ", NetworkBase})
	require.NoError(t, err)
	ids := []string{}
	for _, n := range r.List() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{NetworkBase, NetworkPolygon}, ids)

	_, err = NewRegistry([]string{"eip155:999999"})
	assert.Error(t, err)

	_, err = NewRegistry(nil)
	assert.Error(t, err)
}

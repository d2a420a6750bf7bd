// Package chain provides read-only access to EVM networks: the supported network
// registry and a receipt oracle backed by JSON-RPC.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single receipt lookup, including polling while the
// transaction is not yet indexed by the node.
const DefaultTimeout = 15 * time.Second

// ErrUnknownNetwork is returned for networks without an RPC connection.
var ErrUnknownNetwork = errors.New("no RPC client for network")

// receiptReader is the subset of ethclient.Client the oracle needs.
type receiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

type dialFunc func(ctx context.Context, rawURL string) (receiptReader, error)

func dialEthclient(ctx context.Context, rawURL string) (receiptReader, error) {
	return ethclient.DialContext(ctx, rawURL)
}

// ClientConfig configures RPC endpoints and timeouts.
type ClientConfig struct {
	// RPCAPIKey is the Infura project key used to build default RPC URLs.
	RPCAPIKey string
	// RPCURLs overrides the RPC URL per CAIP-2 network id.
	RPCURLs map[string]string
	// Timeout bounds each receipt lookup. Defaults to DefaultTimeout.
	Timeout time.Duration
	// PollInterval is the initial delay between lookups of a not-yet-indexed receipt.
	PollInterval time.Duration
}

// Client is a receipt oracle over one RPC connection per supported network.
type Client struct {
	logger   *zap.Logger
	registry *Registry
	config   ClientConfig
	readers  map[string]receiptReader
	dial     dialFunc
}

// NewClient creates a new chain client. Call Initialize before use.
func NewClient(registry *Registry, config ClientConfig) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 500 * time.Millisecond
	}
	return &Client{
		logger:   logger.Log,
		registry: registry,
		config:   config,
		readers:  make(map[string]receiptReader),
		dial:     dialEthclient,
	}
}

// RPCURL returns the RPC endpoint for a network: an explicit override, or the
// Infura URL built from the network's RPC id and the API key.
func (c *Client) RPCURL(n Network) (string, error) {
	if url, ok := c.config.RPCURLs[n.ID]; ok && url != "" {
		return url, nil
	}
	if c.config.RPCAPIKey == "" {
		return "", fmt.Errorf("RPC API key not provided for network %s", n.ID)
	}
	// Pattern: https://<rpc_id>.infura.io/v3/<api_key>
	return fmt.Sprintf("https://%s.infura.io/v3/%s", n.InfuraRPCID, c.config.RPCAPIKey), nil
}

// Initialize connects to every supported network. Dialing is retried with
// exponential backoff; a network whose chain id does not match is rejected.
func (c *Client) Initialize(ctx context.Context) error {
	for _, n := range c.registry.List() {
		rpcURL, err := c.RPCURL(n)
		if err != nil {
			return err
		}

		var reader receiptReader
		operation := func() error {
			r, dialErr := c.dial(ctx, rpcURL)
			if dialErr != nil {
				return dialErr
			}
			reader = r
			return nil
		}

		expBackoff := backoff.NewExponentialBackOff()
		expBackoff.InitialInterval = 200 * time.Millisecond
		expBackoff.MaxElapsedTime = 10 * time.Second
		if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(expBackoff, 3), ctx)); err != nil {
			return errors.Wrapf(err, "failed to connect to network %s", n.ID)
		}

		chainID, err := reader.ChainID(ctx)
		if err != nil {
			reader.Close()
			return errors.Wrapf(err, "failed to read chain id for network %s", n.ID)
		}
		if chainID.Int64() != n.ChainID {
			reader.Close()
			return fmt.Errorf("network %s: RPC reports chain id %s, expected %d", n.ID, chainID, n.ChainID)
		}

		c.readers[n.ID] = reader
		c.logger.Info("Connected to network RPC",
			zap.String("network", n.ID),
			zap.String("name", n.Name),
		)
	}
	return nil
}

// FetchReceipt returns the receipt for a transaction hash on a network. A receipt
// that is not yet available is polled for until the configured timeout elapses.
// Any error means the chain could not be consulted; callers must fail closed.
func (c *Client) FetchReceipt(ctx context.Context, reference string, network string) (*types.Receipt, error) {
	reader, ok := c.readers[network]
	if !ok {
		return nil, errors.Wrap(ErrUnknownNetwork, network)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	hash := common.HexToHash(reference)

	var receipt *types.Receipt
	operation := func() error {
		r, err := reader.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return err
			}
			return backoff.Permanent(err)
		}
		receipt = r
		return nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.config.PollInterval
	expBackoff.MaxInterval = 2 * time.Second
	expBackoff.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		c.logger.Debug("Receipt not available yet, retrying",
			zap.String("settlement_reference", reference),
			zap.String("network", network),
			zap.Duration("wait", wait),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(expBackoff, ctx), notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "receipt lookup for %s timed out", reference)
		}
		return nil, errors.Wrapf(err, "failed to fetch receipt for %s", reference)
	}
	return receipt, nil
}

// Close closes all RPC connections
func (c *Client) Close() {
	for network, reader := range c.readers {
		reader.Close()
		c.logger.Info("Closed RPC connection", zap.String("network", network))
	}
}

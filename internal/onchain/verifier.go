// Package onchain confirms that a claimed payment settled on-chain: a successful
// transaction carrying an ERC-20 Transfer of the expected amount to the expected
// recipient.
package onchain

import (
	"context"
	"math/big"
	"strings"

	"github.com/cyphera/cyphera-agentpay/internal/chain"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// TransferEventTopic is keccak256("Transfer(address,address,uint256)").
var TransferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// Tolerance band, in percent of the expected amount.
const (
	toleranceLowPercent  = 99
	toleranceHighPercent = 101
)

// ReceiptOracle fetches a transaction receipt from a network. Implementations bound
// the call with a timeout; any error is treated as the chain being unreachable.
type ReceiptOracle interface {
	FetchReceipt(ctx context.Context, reference string, network string) (*types.Receipt, error)
}

// PaymentProof is what actually transferred on-chain. Amount is in token base units.
type PaymentProof struct {
	From                string   `json:"from"`
	To                  string   `json:"to"`
	Amount              *big.Int `json:"amount"`
	SettlementReference string   `json:"settlementReference"`
	BlockNumber         uint64   `json:"blockNumber"`
	Network             string   `json:"network"`
	TokenAddress        string   `json:"tokenAddress"`
}

// Transfer is a decoded ERC-20 Transfer log.
type Transfer struct {
	Token common.Address
	From  common.Address
	To    common.Address
	Value *big.Int
}

// Verifier checks settlement references against a receipt oracle.
type Verifier struct {
	oracle   ReceiptOracle
	registry *chain.Registry
	logger   *zap.Logger
}

// NewVerifier creates a new on-chain payment verifier
func NewVerifier(oracle ReceiptOracle, registry *chain.Registry) *Verifier {
	return &Verifier{
		oracle:   oracle,
		registry: registry,
		logger:   logger.Log,
	}
}

// Verify confirms that reference is a successful transaction on network that
// transferred expectedAmount (within the tolerance band) of the network's token to
// expectedRecipient. It performs no writes and is safe to retry.
func (v *Verifier) Verify(ctx context.Context, reference string, expectedAmount *big.Int, expectedRecipient string, network string) (*PaymentProof, error) {
	n, ok := v.registry.Get(network)
	if !ok {
		return nil, payerrors.Newf(payerrors.CodeUnsupportedNetwork, "network %q is not supported", network)
	}

	receipt, err := v.oracle.FetchReceipt(ctx, reference, network)
	if err != nil {
		v.logger.Warn("Receipt lookup failed",
			zap.String("settlement_reference", reference),
			zap.String("network", network),
			zap.Error(err),
		)
		return nil, payerrors.Wrap(payerrors.CodeVerificationUnavailable, "transaction receipt could not be fetched", err)
	}
	if receipt == nil {
		return nil, payerrors.New(payerrors.CodeVerificationUnavailable, "oracle returned no receipt")
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, payerrors.Newf(payerrors.CodeTransactionFailed, "transaction %s reverted", reference)
	}

	transfers := DecodeTransfers(receipt.Logs, common.HexToAddress(n.TokenAddress))
	if len(transfers) == 0 {
		return nil, payerrors.Newf(payerrors.CodeTransferNotFound, "no %s transfer in transaction %s", n.TokenSymbol, reference)
	}

	var matched []Transfer
	for _, t := range transfers {
		if strings.EqualFold(t.To.Hex(), expectedRecipient) {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		return nil, payerrors.Newf(payerrors.CodeRecipientMismatch,
			"transfer recipient %s does not match %s", transfers[0].To.Hex(), expectedRecipient).
			WithDetail("expected", expectedRecipient).
			WithDetail("actual", transfers[0].To.Hex())
	}

	for _, t := range matched {
		if !WithinTolerance(t.Value, expectedAmount) {
			continue
		}
		var block uint64
		if receipt.BlockNumber != nil {
			block = receipt.BlockNumber.Uint64()
		}
		return &PaymentProof{
			From:                t.From.Hex(),
			To:                  t.To.Hex(),
			Amount:              new(big.Int).Set(t.Value),
			SettlementReference: reference,
			BlockNumber:         block,
			Network:             network,
			TokenAddress:        t.Token.Hex(),
		}, nil
	}

	return nil, payerrors.Newf(payerrors.CodeAmountMismatch,
		"transferred %s, expected %s", matched[0].Value, expectedAmount).
		WithDetail("expected", expectedAmount.String()).
		WithDetail("actual", matched[0].Value.String())
}

// DecodeTransfers returns the well-formed Transfer logs emitted by token, in log order.
func DecodeTransfers(logs []*types.Log, token common.Address) []Transfer {
	var out []Transfer
	for _, l := range logs {
		if l == nil || l.Address != token {
			continue
		}
		if len(l.Topics) != 3 || l.Topics[0] != TransferEventTopic || len(l.Data) != 32 {
			continue
		}
		out = append(out, Transfer{
			Token: l.Address,
			From:  common.BytesToAddress(l.Topics[1].Bytes()),
			To:    common.BytesToAddress(l.Topics[2].Bytes()),
			Value: new(big.Int).SetBytes(l.Data),
		})
	}
	return out
}

// WithinTolerance reports whether value lies in [expected*0.99, expected*1.01],
// inclusive, using integer arithmetic only.
func WithinTolerance(value, expected *big.Int) bool {
	if value == nil || expected == nil || value.Sign() < 0 || expected.Sign() < 0 {
		return false
	}
	scaled := new(big.Int).Mul(value, big.NewInt(100))
	low := new(big.Int).Mul(expected, big.NewInt(toleranceLowPercent))
	high := new(big.Int).Mul(expected, big.NewInt(toleranceHighPercent))
	return scaled.Cmp(low) >= 0 && scaled.Cmp(high) <= 0
}

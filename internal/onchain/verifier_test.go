package onchain_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/cyphera/cyphera-agentpay/internal/chain"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/cyphera/cyphera-agentpay/internal/mocks"
	"github.com/cyphera/cyphera-agentpay/internal/onchain"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	logger.InitLogger("test")
}

const (
	reference = "0x5f7c2c4a1d3e6b8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f"
	payee     = "0x1111111111111111111111111111111111111111"
	payer     = "0x2222222222222222222222222222222222222222"
)

func network(t *testing.T) chain.Network {
	t.Helper()
	n, ok := chain.Lookup(chain.NetworkBaseSepolia)
	require.True(t, ok)
	return n
}

func transferLog(token, from, to string, value int64) *types.Log {
	return &types.Log{
		Address: common.HexToAddress(token),
		Topics: []common.Hash{
			onchain.TransferEventTopic,
			common.BytesToHash(common.HexToAddress(from).Bytes()),
			common.BytesToHash(common.HexToAddress(to).Bytes()),
		},
		Data: common.LeftPadBytes(big.NewInt(value).Bytes(), 32),
	}
}

func receipt(status uint64, logs ...*types.Log) *types.Receipt {
	return &types.Receipt{Status: status, Logs: logs, BlockNumber: big.NewInt(1234)}
}

func TestVerify(t *testing.T) {
	n := network(t)
	registry := chain.NewRegistryFromNetworks(n)
	expected := big.NewInt(1_000_000)

	tests := []struct {
		name       string
		receipt    *types.Receipt
		oracleErr  error
		recipient  string
		wantCode   payerrors.Code
		wantAmount int64
	}{
		{
			name:       "exact amount",
			receipt:    receipt(types.ReceiptStatusSuccessful, transferLog(n.TokenAddress, payer, payee, 1_000_000)),
			recipient:  payee,
			wantAmount: 1_000_000,
		},
		{
			name:       "lower tolerance bound accepted",
			receipt:    receipt(types.ReceiptStatusSuccessful, transferLog(n.TokenAddress, payer, payee, 990_000)),
			recipient:  payee,
			wantAmount: 990_000,
		},
		{
			name:      "below lower bound rejected",
			receipt:   receipt(types.ReceiptStatusSuccessful, transferLog(n.TokenAddress, payer, payee, 989_999)),
			recipient: payee,
			wantCode:  payerrors.CodeAmountMismatch,
		},
		{
			name:       "upper tolerance bound accepted",
			receipt:    receipt(types.ReceiptStatusSuccessful, transferLog(n.TokenAddress, payer, payee, 1_010_000)),
			recipient:  payee,
			wantAmount: 1_010_000,
		},
		{
			name:      "above upper bound rejected",
			receipt:   receipt(types.ReceiptStatusSuccessful, transferLog(n.TokenAddress, payer, payee, 1_010_001)),
			recipient: payee,
			wantCode:  payerrors.CodeAmountMismatch,
		},
		{
			name:       "recipient compared case-insensitively",
			receipt:    receipt(types.ReceiptStatusSuccessful, transferLog(n.TokenAddress, payer, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", 1_000_000)),
			recipient:  "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD",
			wantAmount: 1_000_000,
		},
		{
			name:      "reverted transaction",
			receipt:   receipt(types.ReceiptStatusFailed, transferLog(n.TokenAddress, payer, payee, 1_000_000)),
			recipient: payee,
			wantCode:  payerrors.CodeTransactionFailed,
		},
		{
			name:      "transfer from another token",
			receipt:   receipt(types.ReceiptStatusSuccessful, transferLog("0x3333333333333333333333333333333333333333", payer, payee, 1_000_000)),
			recipient: payee,
			wantCode:  payerrors.CodeTransferNotFound,
		},
		{
			name:      "no logs",
			receipt:   receipt(types.ReceiptStatusSuccessful),
			recipient: payee,
			wantCode:  payerrors.CodeTransferNotFound,
		},
		{
			name:      "wrong recipient",
			receipt:   receipt(types.ReceiptStatusSuccessful, transferLog(n.TokenAddress, payer, payer, 1_000_000)),
			recipient: payee,
			wantCode:  payerrors.CodeRecipientMismatch,
		},
		{
			name: "picks the transfer to the recipient",
			receipt: receipt(types.ReceiptStatusSuccessful,
				transferLog(n.TokenAddress, payer, payer, 5),
				transferLog(n.TokenAddress, payer, payee, 1_000_000),
			),
			recipient:  payee,
			wantAmount: 1_000_000,
		},
		{
			name:      "oracle unavailable",
			oracleErr: context.DeadlineExceeded,
			recipient: payee,
			wantCode:  payerrors.CodeVerificationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			oracle := mocks.NewMockReceiptOracle(ctrl)
			oracle.EXPECT().
				FetchReceipt(gomock.Any(), reference, n.ID).
				Return(tt.receipt, tt.oracleErr).
				Times(1)

			verifier := onchain.NewVerifier(oracle, registry)
			proof, err := verifier.Verify(context.Background(), reference, expected, tt.recipient, n.ID)

			if tt.wantCode != "" {
				require.Error(t, err)
				code, ok := payerrors.CodeOf(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, code)
				assert.Nil(t, proof)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, big.NewInt(tt.wantAmount), proof.Amount)
			assert.Equal(t, reference, proof.SettlementReference)
			assert.Equal(t, uint64(1234), proof.BlockNumber)
			assert.Equal(t, common.HexToAddress(payer).Hex(), proof.From)
			assert.Equal(t, n.ID, proof.Network)
		})
	}
}

func TestVerify_UnavailableIsRetryable(t *testing.T) {
	n := network(t)
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockReceiptOracle(ctrl)
	oracle.EXPECT().FetchReceipt(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("dial tcp: i/o timeout"))

	_, err := onchain.NewVerifier(oracle, chain.NewRegistryFromNetworks(n)).
		Verify(context.Background(), reference, big.NewInt(1), payee, n.ID)

	code, _ := payerrors.CodeOf(err)
	assert.True(t, code.Retryable())
}

func TestVerify_UnsupportedNetworkSkipsOracle(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockReceiptOracle(ctrl)
	oracle.EXPECT().FetchReceipt(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := onchain.NewVerifier(oracle, chain.NewRegistryFromNetworks(network(t))).
		Verify(context.Background(), reference, big.NewInt(1), payee, chain.NetworkPolygon)

	assert.True(t, errors.Is(err, payerrors.ErrUnsupportedNetwork))
}

func TestWithinTolerance(t *testing.T) {
	expected := big.NewInt(1_000_000)
	assert.True(t, onchain.WithinTolerance(big.NewInt(990_000), expected))
	assert.False(t, onchain.WithinTolerance(big.NewInt(989_999), expected))
	assert.True(t, onchain.WithinTolerance(big.NewInt(1_010_000), expected))
	assert.False(t, onchain.WithinTolerance(big.NewInt(1_010_001), expected))
	assert.False(t, onchain.WithinTolerance(nil, expected))
	assert.False(t, onchain.WithinTolerance(big.NewInt(-1), expected))
}

func TestDecodeTransfers_SkipsMalformedLogs(t *testing.T) {
	n := network(t)
	good := transferLog(n.TokenAddress, payer, payee, 42)
	approval := transferLog(n.TokenAddress, payer, payee, 42)
	approval.Topics[0] = common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925")
	short := transferLog(n.TokenAddress, payer, payee, 42)
	short.Topics = short.Topics[:2]

	transfers := onchain.DecodeTransfers([]*types.Log{approval, short, nil, good}, common.HexToAddress(n.TokenAddress))
	require.Len(t, transfers, 1)
	assert.Equal(t, big.NewInt(42), transfers[0].Value)
	assert.Equal(t, common.HexToAddress(payee), transfers[0].To)
}

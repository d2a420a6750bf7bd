package encoding_test

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/encoding"
	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/cyphera/cyphera-agentpay/internal/payment"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedAttestation(t *testing.T) payment.Attestation {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	m := mandate.IntentMandate{
		UserID:            crypto.PubkeyToAddress(key.PublicKey).Hex(),
		AgentID:           "agent-1",
		MonthlyBudget:     1000_00,
		MaxPerTransaction: 500_00,
		AllowedCategories: []string{"outerwear"},
		ValidFrom:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	sig, err := mandate.Sign(m, key)
	require.NoError(t, err)

	return payment.Attestation{
		Intent:              m,
		IntentSignature:     sig,
		SettlementReference: "0x5f7c2c4a1d3e6b8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f",
		Network:             "eip155:84532",
	}
}

func TestAttestationHeader(t *testing.T) {
	att := signedAttestation(t)

	header, err := encoding.EncodeAttestation(att)
	require.NoError(t, err)

	decoded, err := encoding.DecodeAttestation(header)
	require.NoError(t, err)
	assert.Equal(t, att.SettlementReference, decoded.SettlementReference)
	assert.Equal(t, att.IntentSignature, decoded.IntentSignature)
	assert.True(t, att.Intent.ValidFrom.Equal(decoded.Intent.ValidFrom))

	// The signature still verifies after the header round trip.
	_, err = mandate.Verify(decoded.Intent, decoded.IntentSignature, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
}

func TestDecodeAttestation_Malformed(t *testing.T) {
	b64 := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name   string
		header string
	}{
		{name: "empty", header: ""},
		{name: "not base64", header: "%%%not-base64%%%"},
		{name: "not json", header: b64("hello")},
		{name: "missing intent", header: b64(`{"intentSignature":"0x00","settlementReference":"0x1","network":"eip155:8453"}`)},
		{name: "signature wrong shape", header: b64(`{"intent":{"userId":"0x1","agentId":"a","monthlyBudget":1,"maxPerTransaction":1,"allowedCategories":[],"validFrom":"2026-03-01T00:00:00Z","validUntil":"2026-04-01T00:00:00Z"},"intentSignature":"0xdead","settlementReference":"0x1","network":"eip155:8453"}`)},
		{name: "negative budget", header: b64(`{"intent":{"userId":"0x1","agentId":"a","monthlyBudget":-5,"maxPerTransaction":1,"allowedCategories":[],"validFrom":"2026-03-01T00:00:00Z","validUntil":"2026-04-01T00:00:00Z"},"intentSignature":"0x` + zeros(130) + `","settlementReference":"0x1","network":"eip155:8453"}`)},
		{name: "fractional amount", header: b64(`{"intent":{"userId":"0x1","agentId":"a","monthlyBudget":1.5,"maxPerTransaction":1,"allowedCategories":[],"validFrom":"2026-03-01T00:00:00Z","validUntil":"2026-04-01T00:00:00Z"},"intentSignature":"0x` + zeros(130) + `","settlementReference":"0x1","network":"eip155:8453"}`)},
		{name: "bad timestamp", header: b64(`{"intent":{"userId":"0x1","agentId":"a","monthlyBudget":1,"maxPerTransaction":1,"allowedCategories":[],"validFrom":"yesterday","validUntil":"2026-04-01T00:00:00Z"},"intentSignature":"0x` + zeros(130) + `","settlementReference":"0x1","network":"eip155:8453"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encoding.DecodeAttestation(tt.header)
			require.Error(t, err)
			assert.True(t, errors.Is(err, payerrors.ErrMalformedAttestation), "got %v", err)
		})
	}
}

func TestDecodeAttestation_AcceptsURLSafeAlphabet(t *testing.T) {
	att := signedAttestation(t)
	header, err := encoding.EncodeAttestation(att)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(header)
	require.NoError(t, err)

	decoded, err := encoding.DecodeAttestation(base64.RawURLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, att.Network, decoded.Network)
}

func TestConfirmationHeader(t *testing.T) {
	c := payment.Confirmation{
		SettlementReference: "0xabc",
		Status:              "confirmed",
		PurchaseID:          "2d1b6a57-4a51-4c1f-9d6e-3b1f0f6c2a11",
	}
	header, err := encoding.EncodeConfirmation(c)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(header)
	require.NoError(t, err)
	assert.JSONEq(t, `{"settlementReference":"0xabc","status":"confirmed","purchaseId":"2d1b6a57-4a51-4c1f-9d6e-3b1f0f6c2a11"}`, string(raw))

	decoded, err := encoding.DecodeConfirmation(header)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

func zeros(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

package mandate

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

// Sign produces an EIP-191 personal_sign signature over the canonical serialization.
// The recovery id is encoded as 27/28, matching wallet output.
func Sign(m IntentMandate, key *ecdsa.PrivateKey) (string, error) {
	data, err := m.CanonicalBytes()
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(accounts.TextHash(data), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign mandate: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverSigner returns the address that produced signature over data.
func RecoverSigner(data []byte, signature string) (common.Address, error) {
	if !strings.HasPrefix(signature, "0x") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != signatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(sig))
	}

	// Adjust v value
	v := sig[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	sigCopy := make([]byte, signatureLength)
	copy(sigCopy, sig)
	sigCopy[crypto.RecoveryIDOffset] = v

	pubKey, err := crypto.SigToPub(accounts.TextHash(data), sigCopy)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// VerifySignature checks that signature was produced by the mandate's userId over
// exactly its canonical serialization.
func VerifySignature(m IntentMandate, signature string) error {
	if !common.IsHexAddress(m.UserID) {
		return payerrors.ErrInvalidSignature.WithDetail("reason", "userId is not an address")
	}
	data, err := m.CanonicalBytes()
	if err != nil {
		return payerrors.Wrap(payerrors.CodeInvalidSignature, "mandate could not be serialized", err)
	}
	signer, err := RecoverSigner(data, signature)
	if err != nil {
		return payerrors.Wrap(payerrors.CodeInvalidSignature, "mandate signature could not be recovered", err)
	}
	if !bytes.Equal(signer.Bytes(), common.HexToAddress(m.UserID).Bytes()) {
		return payerrors.Newf(payerrors.CodeInvalidSignature, "mandate was not signed by %s", m.UserID)
	}
	return nil
}

// Verify runs the mandate checks in order, stopping at the first failure:
// signature, then not-yet-valid, then expiry. It has no side effects.
func Verify(m IntentMandate, signature string, now time.Time) (*IntentMandate, error) {
	if err := VerifySignature(m, signature); err != nil {
		return nil, err
	}
	if now.Before(m.ValidFrom) {
		return nil, payerrors.Newf(payerrors.CodeNotYetValid, "mandate is valid from %s", m.ValidFrom.UTC().Format(time.RFC3339))
	}
	if now.After(m.ValidUntil) {
		return nil, payerrors.Newf(payerrors.CodeExpired, "mandate expired at %s", m.ValidUntil.UTC().Format(time.RFC3339))
	}
	verified := m
	return &verified, nil
}

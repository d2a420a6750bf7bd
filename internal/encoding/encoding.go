// Package encoding converts payment protocol messages to and from their HTTP
// header form: base64-encoded JSON.
package encoding

import (
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/cyphera/cyphera-agentpay/internal/payment"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/attestation.json
var attestationSchemaJSON []byte

var attestationSchema = mustLoadSchema(attestationSchemaJSON)

func mustLoadSchema(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}

// EncodeAttestation converts an Attestation to the X-PAYMENT header value.
func EncodeAttestation(att payment.Attestation) (string, error) {
	return encode(att, "attestation")
}

// DecodeAttestation parses an X-PAYMENT header value. Anything that is not
// valid base64, not JSON, or does not match the attestation schema is
// rejected with malformed_attestation.
func DecodeAttestation(header string) (payment.Attestation, error) {
	var att payment.Attestation

	raw, err := decodeBase64(header)
	if err != nil {
		return att, payerrors.Wrap(payerrors.CodeMalformedAttestation, "payment header is not valid base64", err)
	}

	if err := ValidateAttestationJSON(raw); err != nil {
		return att, err
	}

	if err := json.Unmarshal(raw, &att); err != nil {
		return att, payerrors.Wrap(payerrors.CodeMalformedAttestation, "payment header is not a valid attestation", err)
	}
	return att, nil
}

// ValidateAttestationJSON checks raw JSON against the attestation schema.
func ValidateAttestationJSON(raw []byte) error {
	result, err := attestationSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return payerrors.Wrap(payerrors.CodeMalformedAttestation, "payment header is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return payerrors.New(payerrors.CodeMalformedAttestation, strings.Join(problems, "; ")).
		WithDetail("errors", problems)
}

// EncodeConfirmation converts a Confirmation to the X-PAYMENT-RESPONSE header value.
func EncodeConfirmation(c payment.Confirmation) (string, error) {
	return encode(c, "confirmation")
}

// DecodeConfirmation parses an X-PAYMENT-RESPONSE header value.
func DecodeConfirmation(header string) (payment.Confirmation, error) {
	var c payment.Confirmation
	raw, err := decodeBase64(header)
	if err != nil {
		return c, fmt.Errorf("failed to decode base64: %w", err)
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("failed to unmarshal confirmation: %w", err)
	}
	return c, nil
}

func encode(v interface{}, name string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// decodeBase64 accepts standard and URL-safe alphabets, padded or not.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("illegal base64 data")
}

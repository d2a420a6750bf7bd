// Package mandate implements verification of Intent Mandates: signed, time-bounded
// authorizations that let an agent spend on a user's behalf.
package mandate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// IntentMandate is a user-issued spending authorization delegated to an agent.
// Amounts are integer minor currency units (cents).
type IntentMandate struct {
	UserID            string    `json:"userId"`
	AgentID           string    `json:"agentId"`
	MonthlyBudget     int64     `json:"monthlyBudget"`
	MaxPerTransaction int64     `json:"maxPerTransaction"`
	AllowedCategories []string  `json:"allowedCategories"`
	AllowedBrands     []string  `json:"allowedBrands,omitempty"`
	ValidFrom         time.Time `json:"validFrom"`
	ValidUntil        time.Time `json:"validUntil"`
}

// canonicalMandate fixes key order (alphabetical) and value normalisation for signing.
type canonicalMandate struct {
	AgentID           string   `json:"agentId"`
	AllowedBrands     []string `json:"allowedBrands"`
	AllowedCategories []string `json:"allowedCategories"`
	MaxPerTransaction int64    `json:"maxPerTransaction"`
	MonthlyBudget     int64    `json:"monthlyBudget"`
	UserID            string   `json:"userId"`
	ValidFrom         string   `json:"validFrom"`
	ValidUntil        string   `json:"validUntil"`
}

// Validate checks the structural invariants of a mandate. It does not check the
// signature or the time window.
func (m IntentMandate) Validate() error {
	if !common.IsHexAddress(m.UserID) {
		return payerrors.Newf(payerrors.CodeMalformedAttestation, "userId %q is not a valid address", m.UserID)
	}
	if strings.TrimSpace(m.AgentID) == "" {
		return payerrors.New(payerrors.CodeMalformedAttestation, "agentId is required")
	}
	if m.MonthlyBudget < 0 || m.MaxPerTransaction < 0 {
		return payerrors.New(payerrors.CodeMalformedAttestation, "budget limits must not be negative")
	}
	if m.ValidFrom.IsZero() || m.ValidUntil.IsZero() {
		return payerrors.New(payerrors.CodeMalformedAttestation, "validFrom and validUntil are required")
	}
	if m.ValidFrom.After(m.ValidUntil) {
		return payerrors.New(payerrors.CodeMalformedAttestation, "validFrom is after validUntil")
	}
	return nil
}

// CanonicalBytes returns the exact byte sequence a user signs. Keys are ordered
// alphabetically, sets are trimmed, de-duplicated and sorted, the user address is
// lower-cased and timestamps are RFC 3339 in UTC.
func (m IntentMandate) CanonicalBytes() ([]byte, error) {
	c := canonicalMandate{
		AgentID:           m.AgentID,
		AllowedBrands:     normalizeSet(m.AllowedBrands),
		AllowedCategories: normalizeSet(m.AllowedCategories),
		MaxPerTransaction: m.MaxPerTransaction,
		MonthlyBudget:     m.MonthlyBudget,
		UserID:            strings.ToLower(m.UserID),
		ValidFrom:         m.ValidFrom.UTC().Format(time.RFC3339Nano),
		ValidUntil:        m.ValidUntil.UTC().Format(time.RFC3339Nano),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode mandate: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Digest is the keccak256 hash of the canonical serialization, hex encoded. Two
// mandates with the same digest are the same mandate.
func (m IntentMandate) Digest() (string, error) {
	data, err := m.CanonicalBytes()
	if err != nil {
		return "", err
	}
	return crypto.Keccak256Hash(data).Hex(), nil
}

// InWindow reports whether now lies inside [ValidFrom, ValidUntil].
func (m IntentMandate) InWindow(now time.Time) bool {
	return !now.Before(m.ValidFrom) && !now.After(m.ValidUntil)
}

// normalizeSet never returns nil so an absent set and an empty set serialize identically.
func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

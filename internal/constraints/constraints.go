// Package constraints checks a proposed purchase against the spending rules of a
// mandate or a persisted spending authorization.
package constraints

import (
	"strings"

	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
)

// Purchase is the part of a purchase the rules look at. Price is in minor units.
type Purchase struct {
	Price    int64
	Category string
	Brand    string
}

// Limits are the per-purchase rules shared by stateless mandates and stateful
// spending authorizations. An empty AllowedBrands means any brand.
type Limits struct {
	MaxPerTransaction int64
	AllowedCategories []string
	AllowedBrands     []string
}

// LimitsFromMandate projects a mandate onto its per-purchase rules.
func LimitsFromMandate(m mandate.IntentMandate) Limits {
	return Limits{
		MaxPerTransaction: m.MaxPerTransaction,
		AllowedCategories: m.AllowedCategories,
		AllowedBrands:     m.AllowedBrands,
	}
}

// Validate returns the first failing rule in a fixed order: per-transaction cap,
// category, brand. Names must match exactly after trimming.
func Validate(limits Limits, p Purchase) error {
	if p.Price > limits.MaxPerTransaction {
		return payerrors.Newf(payerrors.CodeExceedsPerTransactionLimit,
			"price %d exceeds per-transaction limit %d", p.Price, limits.MaxPerTransaction).
			WithDetail("price", p.Price).
			WithDetail("maxPerTransaction", limits.MaxPerTransaction)
	}

	if !contains(limits.AllowedCategories, p.Category) {
		return payerrors.Newf(payerrors.CodeCategoryNotAllowed, "category %q is not allowed", p.Category).
			WithDetail("category", p.Category)
	}

	if len(limits.AllowedBrands) > 0 && !contains(limits.AllowedBrands, p.Brand) {
		return payerrors.Newf(payerrors.CodeBrandNotAllowed, "brand %q is not allowed", p.Brand).
			WithDetail("brand", p.Brand)
	}

	return nil
}

func contains(set []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, candidate := range set {
		if strings.TrimSpace(candidate) == value {
			return true
		}
	}
	return false
}

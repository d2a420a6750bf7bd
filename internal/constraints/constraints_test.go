package constraints

import (
	"testing"

	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	limits := Limits{
		MaxPerTransaction: 500_00,
		AllowedCategories: []string{"outerwear", "Accessories"},
	}
	branded := Limits{
		MaxPerTransaction: 500_00,
		AllowedCategories: []string{"outerwear"},
		AllowedBrands:     []string{"acme", "northwind"},
	}

	tests := []struct {
		name     string
		limits   Limits
		purchase Purchase
		wantCode payerrors.Code
	}{
		{
			name:     "allowed purchase",
			limits:   limits,
			purchase: Purchase{Price: 250_00, Category: "outerwear"},
		},
		{
			name:     "price equal to cap",
			limits:   limits,
			purchase: Purchase{Price: 500_00, Category: "outerwear"},
		},
		{
			name:     "price one cent over cap",
			limits:   limits,
			purchase: Purchase{Price: 500_01, Category: "outerwear"},
			wantCode: payerrors.CodeExceedsPerTransactionLimit,
		},
		{
			name:     "category not allowed",
			limits:   limits,
			purchase: Purchase{Price: 100_00, Category: "footwear"},
			wantCode: payerrors.CodeCategoryNotAllowed,
		},
		{
			name:     "category match is case-sensitive",
			limits:   limits,
			purchase: Purchase{Price: 100_00, Category: "accessories"},
			wantCode: payerrors.CodeCategoryNotAllowed,
		},
		{
			name:     "category match trims whitespace",
			limits:   limits,
			purchase: Purchase{Price: 100_00, Category: " Accessories "},
		},
		{
			name:     "empty category never matches",
			limits:   limits,
			purchase: Purchase{Price: 100_00},
			wantCode: payerrors.CodeCategoryNotAllowed,
		},
		{
			name:     "cap checked before category",
			limits:   limits,
			purchase: Purchase{Price: 900_00, Category: "footwear"},
			wantCode: payerrors.CodeExceedsPerTransactionLimit,
		},
		{
			name:     "no brand list allows any brand",
			limits:   limits,
			purchase: Purchase{Price: 100_00, Category: "outerwear", Brand: "whatever"},
		},
		{
			name:     "brand allowed",
			limits:   branded,
			purchase: Purchase{Price: 100_00, Category: "outerwear", Brand: "northwind"},
		},
		{
			name:     "brand match is case-sensitive",
			limits:   branded,
			purchase: Purchase{Price: 100_00, Category: "outerwear", Brand: "Northwind"},
			wantCode: payerrors.CodeBrandNotAllowed,
		},
		{
			name:     "brand not allowed",
			limits:   branded,
			purchase: Purchase{Price: 100_00, Category: "outerwear", Brand: "contoso"},
			wantCode: payerrors.CodeBrandNotAllowed,
		},
		{
			name:     "category checked before brand",
			limits:   branded,
			purchase: Purchase{Price: 100_00, Category: "footwear", Brand: "contoso"},
			wantCode: payerrors.CodeCategoryNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.limits, tt.purchase)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			code, ok := payerrors.CodeOf(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestLimitsFromMandate(t *testing.T) {
	m := mandate.IntentMandate{
		MaxPerTransaction: 42,
		AllowedCategories: []string{"outerwear"},
		AllowedBrands:     []string{"acme"},
	}

	limits := LimitsFromMandate(m)
	assert.Equal(t, int64(42), limits.MaxPerTransaction)
	assert.Equal(t, []string{"outerwear"}, limits.AllowedCategories)
	assert.Equal(t, []string{"acme"}, limits.AllowedBrands)
}

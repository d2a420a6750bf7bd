package handlers

import (
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/catalog"
	"github.com/cyphera/cyphera-agentpay/internal/ledger"
	"github.com/cyphera/cyphera-agentpay/internal/mandate"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ItemResponse is an item as exposed to API clients
type ItemResponse struct {
	ID       string `json:"id" example:"jacket-001"`
	Name     string `json:"name" example:"Waxed Cotton Jacket"`
	Price    int64  `json:"price" example:"25000"`
	Currency string `json:"currency" example:"USD"`
	Category string `json:"category" example:"outerwear"`
	Brand    string `json:"brand,omitempty" example:"Barbour"`
}

// PurchaseSummary identifies a recorded purchase in a success response
type PurchaseSummary struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	SettlementReference string    `json:"settlementReference"`
	Network             string    `json:"network"`
}

// PurchaseSuccessResponse is returned once a purchase is recorded
type PurchaseSuccessResponse struct {
	Success  bool            `json:"success" example:"true"`
	Purchase PurchaseSummary `json:"purchase"`
	Item     ItemResponse    `json:"item"`
}

// PurchaseResponse is a recorded purchase
type PurchaseResponse struct {
	ID                  string       `json:"id"`
	ItemID              string       `json:"itemId"`
	SettlementReference string       `json:"settlementReference"`
	PayerAddress        string       `json:"payerAddress"`
	PayeeAddress        string       `json:"payeeAddress"`
	Amount              string       `json:"amount" example:"250000000"`
	AmountCents         int64        `json:"amountCents" example:"25000"`
	Network             string       `json:"network" example:"eip155:8453"`
	BlockNumber         uint64       `json:"blockNumber"`
	AuthorizationID     string       `json:"authorizationId,omitempty"`
	Item                ItemResponse `json:"item"`
	CreatedAt           time.Time    `json:"createdAt"`
}

// CreateAuthorizationRequest carries a signed mandate to persist
type CreateAuthorizationRequest struct {
	Intent          mandate.IntentMandate `json:"intent" binding:"required"`
	IntentSignature string                `json:"intentSignature" binding:"required"`
}

// AuthorizationResponse is a spending authorization with its current-period state
type AuthorizationResponse struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	AgentID            string    `json:"agentId"`
	MonthlyBudget      int64     `json:"monthlyBudget"`
	MaxPerTransaction  int64     `json:"maxPerTransaction"`
	AllowedCategories  []string  `json:"allowedCategories"`
	AllowedBrands      []string  `json:"allowedBrands"`
	CurrentPeriodStart time.Time `json:"currentPeriodStart"`
	CurrentPeriodSpent int64     `json:"currentPeriodSpent"`
	Remaining          int64     `json:"remaining"`
	ValidFrom          time.Time `json:"validFrom"`
	ValidUntil         time.Time `json:"validUntil"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toItemResponse(i catalog.Item) ItemResponse {
	return ItemResponse{
		ID:       i.ID,
		Name:     i.Name,
		Price:    i.Price,
		Currency: i.Currency,
		Category: i.Category,
		Brand:    i.Brand,
	}
}

func toPurchaseResponse(r ledger.PurchaseRecord) PurchaseResponse {
	resp := PurchaseResponse{
		ID:                  r.ID.String(),
		ItemID:              r.ItemID,
		SettlementReference: r.SettlementReference,
		PayerAddress:        r.PayerAddress,
		PayeeAddress:        r.PayeeAddress,
		AmountCents:         r.AmountCents,
		Network:             r.Network,
		BlockNumber:         r.BlockNumber,
		Item:                toItemResponse(r.ItemSnapshot),
		CreatedAt:           r.CreatedAt,
	}
	if r.Amount != nil {
		resp.Amount = r.Amount.String()
	}
	if r.AuthorizationID != nil {
		resp.AuthorizationID = r.AuthorizationID.String()
	}
	return resp
}

// toAuthorizationResponse reports spend for the period containing now, so a
// stored period that has ended shows as fully available.
func toAuthorizationResponse(a ledger.SpendingAuthorization, now time.Time) AuthorizationResponse {
	return AuthorizationResponse{
		ID:                 a.ID.String(),
		UserID:             a.UserID,
		AgentID:            a.AgentID,
		MonthlyBudget:      a.MonthlyBudget,
		MaxPerTransaction:  a.MaxPerTransaction,
		AllowedCategories:  a.AllowedCategories,
		AllowedBrands:      a.AllowedBrands,
		CurrentPeriodStart: ledger.PeriodStart(now),
		CurrentPeriodSpent: a.SpentAt(now),
		Remaining:          a.RemainingAt(now),
		ValidFrom:          a.ValidFrom,
		ValidUntil:         a.ValidUntil,
		Active:             a.Active,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

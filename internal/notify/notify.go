// Package notify announces recorded purchases to downstream systems. Delivery is
// best effort: a purchase is final once committed, whether or not any
// notification succeeds.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/ledger"
)

// PurchaseEvent describes a recorded purchase.
type PurchaseEvent struct {
	Type                string    `json:"type"`
	PurchaseID          string    `json:"purchaseId"`
	SettlementReference string    `json:"settlementReference"`
	ItemID              string    `json:"itemId"`
	ItemName            string    `json:"itemName"`
	AmountCents         int64     `json:"amountCents"`
	Currency            string    `json:"currency"`
	TokenAmount         string    `json:"tokenAmount"`
	Network             string    `json:"network"`
	PayerAddress        string    `json:"payerAddress"`
	UserID              string    `json:"userId"`
	AgentID             string    `json:"agentId"`
	AuthorizationID     string    `json:"authorizationId,omitempty"`
	OccurredAt          time.Time `json:"occurredAt"`
}

// NewPurchaseEvent builds the purchase.recorded event for a committed record.
func NewPurchaseEvent(r ledger.PurchaseRecord) PurchaseEvent {
	e := PurchaseEvent{
		Type:                constants.EventTypePurchaseRecorded,
		PurchaseID:          r.ID.String(),
		SettlementReference: r.SettlementReference,
		ItemID:              r.ItemID,
		ItemName:            r.ItemSnapshot.Name,
		AmountCents:         r.AmountCents,
		Currency:            r.ItemSnapshot.Currency,
		Network:             r.Network,
		PayerAddress:        r.PayerAddress,
		UserID:              r.MandateSnapshot.UserID,
		AgentID:             r.MandateSnapshot.AgentID,
		OccurredAt:          r.CreatedAt,
	}
	if r.Amount != nil {
		e.TokenAmount = r.Amount.String()
	}
	if r.AuthorizationID != nil {
		e.AuthorizationID = r.AuthorizationID.String()
	}
	return e
}

// Publisher delivers purchase events.
type Publisher interface {
	Publish(ctx context.Context, event PurchaseEvent) error
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, PurchaseEvent) error { return nil }

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event PurchaseEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

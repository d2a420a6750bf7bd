package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cyphera/cyphera-agentpay/internal/catalog"
	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/encoding"
	"github.com/cyphera/cyphera-agentpay/internal/ledger"
	"github.com/cyphera/cyphera-agentpay/internal/middleware"
	"github.com/cyphera/cyphera-agentpay/internal/payment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseEngine issues challenges and settles attestations.
type PurchaseEngine interface {
	Challenge(item catalog.Item) payment.Challenge
	Process(ctx context.Context, item catalog.Item, att payment.Attestation) (*payment.Outcome, error)
}

// PurchaseReader looks up recorded purchases.
type PurchaseReader interface {
	GetPurchase(ctx context.Context, id uuid.UUID) (*ledger.PurchaseRecord, error)
}

// PurchaseHandler handles purchase related operations
type PurchaseHandler struct {
	items     catalog.Store
	engine    PurchaseEngine
	purchases PurchaseReader
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(items catalog.Store, engine PurchaseEngine, purchases PurchaseReader) *PurchaseHandler {
	return &PurchaseHandler{
		items:     items,
		engine:    engine,
		purchases: purchases,
	}
}

// ListItems godoc
// @Summary      List items
// @Description  Lists every item available for purchase
// @Tags         items
// @Produce      json
// @Success      200  {array}   ItemResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /items [get]
func (h *PurchaseHandler) ListItems(c *gin.Context) {
	items, err := h.items.ListItems(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}

	resp := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item))
	}
	sendList(c, resp)
}

// Purchase godoc
// @Summary      Purchase an item
// @Description  Without an X-PAYMENT header, responds 402 with the accepted payment options.
// @Description  With one, verifies the attestation and records the purchase.
// @Tags         purchases
// @Produce      json
// @Param        item_id    path    string  true   "Item ID"
// @Param        X-PAYMENT  header  string  false  "Base64-encoded JSON payment attestation"
// @Success      200  {object}  PurchaseSuccessResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      402  {object}  payment.Challenge
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /items/{item_id}/purchase [post]
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	ctx := c.Request.Context()
	log := middleware.LogWithCorrelationID(ctx)

	item, err := h.items.GetItem(ctx, c.Param("item_id"))
	if err != nil {
		sendError(c, err)
		return
	}

	header := strings.TrimSpace(c.GetHeader(constants.PaymentHeader))
	if header == "" {
		log.Debug("Issuing payment challenge", zap.String("item_id", item.ID))
		c.JSON(http.StatusPaymentRequired, h.engine.Challenge(*item))
		return
	}

	att, err := encoding.DecodeAttestation(header)
	if err != nil {
		sendError(c, err)
		return
	}

	outcome, err := h.engine.Process(ctx, *item, att)
	if err != nil {
		sendError(c, err)
		return
	}

	confirmation, err := encoding.EncodeConfirmation(*outcome.Confirmation)
	if err != nil {
		// The purchase is already recorded; the header is a convenience.
		log.Error("Failed to encode payment confirmation", zap.Error(err))
	} else {
		c.Header(constants.PaymentResponseHeader, confirmation)
	}

	sendSuccess(c, http.StatusOK, PurchaseSuccessResponse{
		Success: true,
		Purchase: PurchaseSummary{
			ID:                  outcome.Record.ID.String(),
			Timestamp:           outcome.Record.CreatedAt,
			SettlementReference: outcome.Record.SettlementReference,
			Network:             outcome.Record.Network,
		},
		Item: toItemResponse(outcome.Item),
	})
}

// GetPurchase godoc
// @Summary      Get a purchase
// @Description  Returns a recorded purchase by ID
// @Tags         purchases
// @Produce      json
// @Param        purchase_id  path  string  true  "Purchase ID"
// @Success      200  {object}  PurchaseResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /purchases/{purchase_id} [get]
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	id, err := uuid.Parse(c.Param("purchase_id"))
	if err != nil {
		sendBadRequest(c, "Invalid purchase ID format")
		return
	}

	record, err := h.purchases.GetPurchase(c.Request.Context(), id)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, toPurchaseResponse(*record))
}

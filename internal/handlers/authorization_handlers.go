package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/ledger"
	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/middleware"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthorizationService manages persisted spending authorizations.
type AuthorizationService interface {
	CreateAuthorization(ctx context.Context, m mandate.IntentMandate, now time.Time) (*ledger.SpendingAuthorization, bool, error)
	GetAuthorization(ctx context.Context, id uuid.UUID) (*ledger.SpendingAuthorization, error)
	CancelAuthorization(ctx context.Context, id uuid.UUID) (*ledger.SpendingAuthorization, error)
}

// AuthorizationHandler handles spending authorization operations. Every route
// requires a bearer token whose subject is the authorization's user.
type AuthorizationHandler struct {
	service AuthorizationService
	now     func() time.Time
}

// NewAuthorizationHandler creates a new authorization handler
func NewAuthorizationHandler(service AuthorizationService, now func() time.Time) *AuthorizationHandler {
	if now == nil {
		now = time.Now
	}
	return &AuthorizationHandler{service: service, now: now}
}

// CreateAuthorization godoc
// @Summary      Create a spending authorization
// @Description  Persists a signed intent mandate so later purchases can reference it by ID.
// @Description  Creating it again for the same mandate returns the existing authorization.
// @Tags         authorizations
// @Accept       json
// @Produce      json
// @Param        authorization  body  CreateAuthorizationRequest  true  "Signed mandate"
// @Success      200  {object}  AuthorizationResponse  "Already existed"
// @Success      201  {object}  AuthorizationResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Security     Bearer
// @Router       /authorizations [post]
func (h *AuthorizationHandler) CreateAuthorization(c *gin.Context) {
	var req CreateAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	now := h.now().UTC()
	if err := mandate.VerifySignature(req.Intent, req.IntentSignature); err != nil {
		sendError(c, err)
		return
	}
	if err := req.Intent.Validate(); err != nil {
		sendError(c, err)
		return
	}
	if now.After(req.Intent.ValidUntil) {
		sendError(c, payerrors.ErrExpired)
		return
	}
	if !sameUser(middleware.GetSubject(c), req.Intent.UserID) {
		sendForbidden(c, "Mandate belongs to another user")
		return
	}

	auth, created, err := h.service.CreateAuthorization(c.Request.Context(), req.Intent, now)
	if err != nil {
		sendError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	sendSuccess(c, status, toAuthorizationResponse(*auth, now))
}

// GetAuthorization godoc
// @Summary      Get a spending authorization
// @Description  Returns an authorization with the spend of the current monthly period
// @Tags         authorizations
// @Produce      json
// @Param        authorization_id  path  string  true  "Authorization ID"
// @Success      200  {object}  AuthorizationResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     Bearer
// @Router       /authorizations/{authorization_id} [get]
func (h *AuthorizationHandler) GetAuthorization(c *gin.Context) {
	auth, ok := h.loadOwned(c)
	if !ok {
		return
	}
	sendSuccess(c, http.StatusOK, toAuthorizationResponse(*auth, h.now().UTC()))
}

// CancelAuthorization godoc
// @Summary      Cancel a spending authorization
// @Description  Deactivates an authorization. Later purchases against it are rejected.
// @Tags         authorizations
// @Produce      json
// @Param        authorization_id  path  string  true  "Authorization ID"
// @Success      200  {object}  AuthorizationResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     Bearer
// @Router       /authorizations/{authorization_id}/cancel [post]
func (h *AuthorizationHandler) CancelAuthorization(c *gin.Context) {
	auth, ok := h.loadOwned(c)
	if !ok {
		return
	}

	cancelled, err := h.service.CancelAuthorization(c.Request.Context(), auth.ID)
	if err != nil {
		sendError(c, err)
		return
	}

	middleware.LogWithCorrelationID(c.Request.Context()).Info("Spending authorization cancelled by user",
		zap.String("authorization_id", auth.ID.String()),
	)
	sendSuccess(c, http.StatusOK, toAuthorizationResponse(*cancelled, h.now().UTC()))
}

// loadOwned fetches the authorization named in the path. Authorizations of
// other users are reported as not found.
func (h *AuthorizationHandler) loadOwned(c *gin.Context) (*ledger.SpendingAuthorization, bool) {
	id, err := uuid.Parse(c.Param("authorization_id"))
	if err != nil {
		sendBadRequest(c, "Invalid authorization ID format")
		return nil, false
	}

	auth, err := h.service.GetAuthorization(c.Request.Context(), id)
	if err != nil {
		sendError(c, err)
		return nil, false
	}
	if !sameUser(middleware.GetSubject(c), auth.UserID) {
		sendError(c, payerrors.ErrAuthorizationNotFound)
		return nil, false
	}
	return auth, true
}

func sameUser(subject, userID string) bool {
	return subject != "" && strings.EqualFold(subject, userID)
}

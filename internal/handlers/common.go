// Package handlers exposes the payment engine over HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/middleware"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error" example:"budget_exceeded"`
	Details string `json:"details" example:"purchase of 25000 would exceed monthly budget 30000 (spent 10000)"`
}

// sendError writes err as an ErrorResponse. Rejections use their own code and
// status; anything else is logged and reported as an internal error without detail.
func sendError(c *gin.Context, err error) {
	log := middleware.LogWithCorrelationID(c.Request.Context())

	var pe *payerrors.PaymentError
	if !errors.As(err, &pe) {
		log.Error("Request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   string(payerrors.CodeInternal),
			Details: "Internal server error",
		})
		return
	}

	if pe.Code.Retryable() {
		c.Header("Retry-After", "5")
	}
	c.JSON(pe.Code.HTTPStatus(), ErrorResponse{Error: string(pe.Code), Details: pe.Message})
}

// sendBadRequest reports invalid input that never reached the payment engine.
func sendBadRequest(c *gin.Context, details string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: constants.BadRequestError, Details: details})
}

// sendForbidden reports an authenticated caller acting on another user's data.
func sendForbidden(c *gin.Context, details string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Error: constants.ForbiddenError, Details: details})
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}

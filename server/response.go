package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/etnz/papertrade"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes. Every domain error of the simulator maps to its own code:
// distinct business failures are never collapsed into one generic response.
const (
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter   = "INVALID_PARAMETER"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeNotFetched         = "NOT_FETCHED"
	ErrCodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	ErrCodeInsufficientShares = "INSUFFICIENT_SHARES"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
	ErrCodeStore              = "STORE_ERROR"
)

// notFetchedMessage is matched verbatim by clients to trigger an automatic
// history fetch. Keep the wording stable.
const notFetchedMessage = "Please fetch the historical data for this ticker before making a purchase."

// Error sends an error response with the given status and code.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: GetRequestID(c),
			Timestamp: time.Now(),
		},
	})
}

// DomainError maps a simulator error to its HTTP status and error code.
func DomainError(c *gin.Context, err error) {
	var storeErr *papertrade.StoreError
	var upstreamErr *papertrade.UpstreamError

	switch {
	case errors.Is(err, papertrade.ErrNotFetched):
		Error(c, http.StatusBadRequest, ErrCodeNotFetched, notFetchedMessage)
	case errors.Is(err, papertrade.ErrInsufficientFunds):
		Error(c, http.StatusBadRequest, ErrCodeInsufficientFunds, "Insufficient funds")
	case errors.Is(err, papertrade.ErrInsufficientShares):
		Error(c, http.StatusBadRequest, ErrCodeInsufficientShares, "Insufficient shares")
	case errors.Is(err, papertrade.ErrInvalidQuantity):
		Error(c, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
	case errors.Is(err, papertrade.ErrNotFound):
		Error(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.As(err, &upstreamErr):
		Error(c, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	case errors.As(err, &storeErr):
		Error(c, http.StatusInternalServerError, ErrCodeStore, err.Error())
	default:
		Error(c, http.StatusInternalServerError, ErrCodeInternalServer, err.Error())
	}
}

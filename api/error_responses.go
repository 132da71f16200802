package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrorCodeConnectorNotFound ErrorCode = "CONNECTOR_NOT_FOUND"
	ErrorCodeToolNotFound      ErrorCode = "TOOL_NOT_FOUND"
	ErrorCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	ErrorCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrorCodeInvalidJSON       ErrorCode = "INVALID_JSON"

	// Server Error Codes (5xx)
	ErrorCodeInternalError       ErrorCode = "INTERNAL_ERROR"
	ErrorCodeToolExecutionFailed ErrorCode = "TOOL_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	// Add request ID if available
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendConnectorNotFoundError sends a standardized connector not found error
func SendConnectorNotFoundError(c *gin.Context, connectorName string) {
	SendError(c, http.StatusNotFound, ErrorCodeConnectorNotFound,
		"Connector '"+connectorName+"' not found")
}

// SendToolNotFoundError sends a standardized tool not found error
func SendToolNotFoundError(c *gin.Context, toolName, connectorName string) {
	message := "Tool '" + toolName + "' not found"
	if connectorName != "" {
		message += " in connector '" + connectorName + "'"
	}
	SendError(c, http.StatusNotFound, ErrorCodeToolNotFound, message)
}

// SendSessionNotFoundError sends a standardized session not found error
func SendSessionNotFoundError(c *gin.Context, sessionID string) {
	SendError(c, http.StatusNotFound, ErrorCodeSessionNotFound,
		"Session '"+sessionID+"' not found or expired")
}

// SendMissingCredentialError sends a standardized missing credential error
func SendMissingCredentialError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeMissingCredential, err.Error())
}

// SendValidationError sends a standardized validation error
func SendValidationError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendToolExecutionError sends a standardized tool execution error
func SendToolExecutionError(c *gin.Context, toolName string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeToolExecutionFailed,
		"Tool '"+toolName+"' execution failed: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

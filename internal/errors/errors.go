package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrConnectorNotFound is returned when a connector is not registered
	ErrConnectorNotFound = errors.New("connector not found")

	// ErrToolNotFound is returned when a connector does not expose the requested tool
	ErrToolNotFound = errors.New("tool not found")

	// ErrSessionNotFound is returned when a session does not exist or has expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrMissingCredential is returned when a required credential is absent
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// ConnectorNotFoundError represents a connector not found error with context
type ConnectorNotFoundError struct {
	ConnectorName string
}

func (e *ConnectorNotFoundError) Error() string {
	return fmt.Sprintf("connector named '%s' not found", e.ConnectorName)
}

func (e *ConnectorNotFoundError) Is(target error) bool {
	return target == ErrConnectorNotFound
}

// NewConnectorNotFoundError creates a new ConnectorNotFoundError
func NewConnectorNotFoundError(connectorName string) *ConnectorNotFoundError {
	return &ConnectorNotFoundError{ConnectorName: connectorName}
}

// ToolNotFoundError represents a tool not found error with context
type ToolNotFoundError struct {
	ToolName      string
	ConnectorName string
}

func (e *ToolNotFoundError) Error() string {
	if e.ConnectorName != "" {
		return fmt.Sprintf("tool '%s' not found in connector '%s'", e.ToolName, e.ConnectorName)
	}
	return fmt.Sprintf("tool '%s' not found", e.ToolName)
}

func (e *ToolNotFoundError) Is(target error) bool {
	return target == ErrToolNotFound
}

// NewToolNotFoundError creates a new ToolNotFoundError
func NewToolNotFoundError(toolName string, connectorName ...string) *ToolNotFoundError {
	err := &ToolNotFoundError{ToolName: toolName}
	if len(connectorName) > 0 {
		err.ConnectorName = connectorName[0]
	}
	return err
}

// SessionNotFoundError represents a session not found error with context
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session with ID '%s' not found or expired", e.SessionID)
}

func (e *SessionNotFoundError) Is(target error) bool {
	return target == ErrSessionNotFound
}

// NewSessionNotFoundError creates a new SessionNotFoundError
func NewSessionNotFoundError(sessionID string) *SessionNotFoundError {
	return &SessionNotFoundError{SessionID: sessionID}
}

// MissingCredentialError represents a missing required credential with context
type MissingCredentialError struct {
	ConnectorName string
	CredentialKey string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("connector '%s' requires credential '%s'", e.ConnectorName, e.CredentialKey)
}

func (e *MissingCredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// NewMissingCredentialError creates a new MissingCredentialError
func NewMissingCredentialError(connectorName, credentialKey string) *MissingCredentialError {
	return &MissingCredentialError{ConnectorName: connectorName, CredentialKey: credentialKey}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

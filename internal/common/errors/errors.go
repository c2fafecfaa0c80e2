// Package errors provides standardized error handling for the export and
// update pipelines.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Remote-call failures are fatal and non-retryable: a failed call aborts the
// catalog build, aggregation, enrichment or update loop in progress.
const (
	ErrCodeAgentListFailed         ErrorCode = "AGENT_LIST_FAILED"
	ErrCodeAgentFetchFailed        ErrorCode = "AGENT_FETCH_FAILED"
	ErrCodeAgentUpdateFailed       ErrorCode = "AGENT_UPDATE_FAILED"
	ErrCodeConversationListFailed  ErrorCode = "CONVERSATION_LIST_FAILED"
	ErrCodeConversationFetchFailed ErrorCode = "CONVERSATION_FETCH_FAILED"

	ErrCodeUnknownAgent        ErrorCode = "UNKNOWN_AGENT"
	ErrCodeUnknownConversation ErrorCode = "UNKNOWN_CONVERSATION"

	ErrCodeVariableDefinitionInvalid ErrorCode = "VARIABLE_DEFINITION_INVALID"
	ErrCodeExportWriteFailed         ErrorCode = "EXPORT_WRITE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf returns the ErrorCode carried by err, or the empty string when err
// is not a StandardError.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ""
}

func NewAgentListFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentListFailed,
		Message:   "Failed to list agents from the platform",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAgentFetchFailedError(agentID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentFetchFailed,
		Message:   "Failed to fetch agent detail",
		Details:   fmt.Sprintf("agentId: %s, error: %s", agentID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAgentUpdateFailedError(agentID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentUpdateFailed,
		Message:   "Failed to update agent platform settings",
		Details:   fmt.Sprintf("agentId: %s, error: %s", agentID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewConversationListFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConversationListFailed,
		Message:   "Failed to list conversations from the platform",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewConversationFetchFailedError(conversationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConversationFetchFailed,
		Message:   "Failed to fetch conversation detail",
		Details:   fmt.Sprintf("conversationId: %s, error: %s", conversationID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownAgentError(agentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownAgent,
		Message:   "Agent id not present in index",
		Details:   fmt.Sprintf("agentId: %s", agentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownConversationError(conversationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownConversation,
		Message:   "Conversation id not present in index",
		Details:   fmt.Sprintf("conversationId: %s", conversationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewVariableDefinitionInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVariableDefinitionInvalid,
		Message:   "Variable definition failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExportWriteFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExportWriteFailed,
		Message:   "Failed to write export file",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

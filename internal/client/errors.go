package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorKind classifies a ClientError
type ErrorKind int

const (
	KindTransport  ErrorKind = iota // network failure or non-2xx response
	KindParse                       // body is not JSON or does not match the capability schema
	KindValidation                  // required input missing, no request was sent
	KindInternal                    // request could not be built
)

var errorKindNames = []string{"transport", "parse", "validation", "internal"}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// ClientError represents an error encountered when communicating with the backend API
// StatusCode 0 = no HTTP response was received, >0 = HTTP response received
type ClientError struct {
	Kind        ErrorKind `json:"kind"`
	StatusCode  int       `json:"status_code"`
	UserMessage string    `json:"user_message"`
	LogMessage  string    `json:"log_message"`
}

func (e *ClientError) Error() string {
	return e.LogMessage
}

// UserError returns the user-friendly message
func (e *ClientError) UserError() string {
	return e.UserMessage
}

// NewClientConnectionError creates a ClientError for network/connection issues
func NewClientConnectionError(err error) *ClientError {
	return &ClientError{
		Kind:        KindTransport,
		StatusCode:  0,
		UserMessage: "Unable to reach the EduVision service. Please try again.",
		LogMessage:  fmt.Sprintf("network error: %v", err),
	}
}

// NewClientInternalError creates a ClientError for internal errors, supply the error and an explanation of what was being done when the error occurred
func NewClientInternalError(err error, while string) *ClientError {
	return &ClientError{
		Kind:        KindInternal,
		UserMessage: "An error occurred. Please try again later.",
		LogMessage:  fmt.Sprintf("internal error: %v while %v", err, while),
	}
}

// NewClientParseError creates a ClientError for responses that could not be understood
func NewClientParseError(err error, while string) *ClientError {
	return &ClientError{
		Kind:        KindParse,
		UserMessage: "The service returned an unexpected response. Please try again.",
		LogMessage:  fmt.Sprintf("parse error: %v while %v", err, while),
	}
}

// NewClientValidationError creates a ClientError for a missing required input
func NewClientValidationError(field string) *ClientError {
	return &ClientError{
		Kind:        KindValidation,
		UserMessage: fmt.Sprintf("Please provide a %s.", field),
		LogMessage:  fmt.Sprintf("validation error: %s is required", field),
	}
}

// NewClientApiError creates a ClientError from a non-2xx response sent by the backend
func NewClientApiError(statusCode int, body []byte) *ClientError {
	// the backend reports errors as {"detail": "..."}; {"message": "..."} and {"error": "..."} are also accepted
	var serverErr struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	_ = json.Unmarshal(body, &serverErr)

	serverMsg := serverErr.Message
	if serverMsg == "" {
		serverMsg = serverErr.Error
	}
	if len(serverErr.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(serverErr.Detail, &detail); err == nil {
			serverMsg = detail
		} else {
			// validation errors are returned as a list of objects
			serverMsg = string(serverErr.Detail)
		}
	}

	var userMsg string
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		userMsg = "Invalid request. Please check your input and try again."
	case http.StatusNotFound:
		userMsg = "The requested item could not be found."
	case http.StatusRequestEntityTooLarge:
		userMsg = "The file is too large."
	case http.StatusTooManyRequests:
		userMsg = "Too many requests. Please try again in a few moments."
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		userMsg = "The service is temporarily unavailable. Please try again later."
	default:
		userMsg = "An error occurred. Please try again."
	}

	logMsg := fmt.Sprintf("backend status %d", statusCode)
	if serverMsg != "" {
		logMsg += fmt.Sprintf(" - %s", serverMsg)
	}

	return &ClientError{
		Kind:        KindTransport,
		StatusCode:  statusCode,
		UserMessage: userMsg,
		LogMessage:  logMsg,
	}
}

package clients

import (
	"fmt"
	"net/http"
)

const (
	// -----------------------------
	// TRANSPORT
	// -----------------------------
	ErrRequestEncoding = "request_encoding_failed"
	ErrRequestSigning  = "request_signing_failed"
	ErrTransport       = "transport_failed"
	ErrRateLimited     = "rate_limited"

	// -----------------------------
	// PROVIDER RESPONSES
	// -----------------------------
	ErrUnauthorized      = "unauthorized"
	ErrNotFound          = "transaction_not_found"
	ErrProviderRejected  = "provider_rejected"
	ErrProviderError     = "provider_error"
	ErrMalformedResponse = "malformed_response"
)

// APIError is returned when the provider answers with a non-2xx status.
type APIError struct {
	StatusCode   int    `json:"-"`
	Code         string `json:"-"`
	ProviderCode int    `json:"code,omitempty"`
	Message      string `json:"message"`
}

func (e *APIError) Error() string {
	if e.ProviderCode != 0 {
		return fmt.Sprintf("custody api: http status %d (code %d): %s", e.StatusCode, e.ProviderCode, e.Message)
	}
	return fmt.Sprintf("custody api: http status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether repeating the same request may succeed.
func (e *APIError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return e.StatusCode >= http.StatusInternalServerError && e.StatusCode != http.StatusNotImplemented
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= http.StatusInternalServerError:
		return ErrProviderError
	default:
		return ErrProviderRejected
	}
}

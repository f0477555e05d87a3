// Package model defines shared types for the proxy.
package model

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// UserRequest carries what the proxy forwards from an inbound /api/user call.
type UserRequest struct {
	Ctx context.Context
	// Cookie is the raw inbound Cookie header; empty when the caller sent none.
	Cookie string
	// RequestID is propagated upstream as X-Request-Id when non-empty.
	RequestID string
}

// Envelope wraps an opaque upstream payload as {"data": ...}.
type Envelope struct {
	Data json.RawMessage `json:"data"`
}

// UpstreamResponse is a raw response from the Mega service.
// The receiver owns Body and must close it.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Package service implements the user lookup forwarded to the Mega service.
package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"mega-user-proxy/internal/client"
	"mega-user-proxy/internal/config"
	"mega-user-proxy/internal/metrics"
	"mega-user-proxy/internal/model"
)

// userPath is appended to the configured base URL.
const userPath = "/api/v1/user"

const userAgent = "mega-user-proxy/1.0"

var (
	// ErrInvalidUpstreamBody is returned when the upstream body is empty or not JSON.
	ErrInvalidUpstreamBody = errors.New("upstream returned a non-JSON body")
	// ErrUpstreamBodyTooLarge is returned when the upstream body exceeds upstream.max_body_bytes.
	ErrUpstreamBodyTooLarge = errors.New("upstream body exceeds upstream.max_body_bytes")
)

// UserService fetches the current user from the Mega service.
type UserService struct {
	client       *client.MegaClient
	logger       *slog.Logger
	metrics      *metrics.Metrics
	targetURL    string
	redacted     string
	maxBodyBytes int64
}

// NewUserService creates a UserService. m is optional.
func NewUserService(c *client.MegaClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*UserService, error) {
	base, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}

	target := base.JoinPath(userPath)
	return &UserService{
		client:       c,
		logger:       logger.With("component", "user_service"),
		metrics:      m,
		targetURL:    target.String(),
		redacted:     target.Redacted(),
		maxBodyBytes: cfg.Upstream.MaxBodyBytes,
	}, nil
}

// TargetURL returns the upstream URL every lookup is sent to.
func (s *UserService) TargetURL() string {
	return s.targetURL
}

// RedactedTargetURL is TargetURL with any password masked, for logs.
func (s *UserService) RedactedTargetURL() string {
	return s.redacted
}

// Fetch issues one GET to the user endpoint carrying ur.Cookie and returns the
// upstream JSON body untouched. The upstream status code is not interpreted:
// any valid JSON body is returned. Nothing is cached between calls.
func (s *UserService) Fetch(ur *model.UserRequest) (json.RawMessage, error) {
	header := s.buildRequestHeaders(ur)

	resp, err := s.client.Get(ur.Ctx, s.targetURL, header)
	if err != nil {
		s.metrics.UpstreamFailed(metrics.FailureTransport)
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := s.decode(resp.Body)
	if err != nil {
		switch {
		case errors.Is(err, ErrUpstreamBodyTooLarge):
			s.metrics.UpstreamFailed(metrics.FailureTooLarge)
		case errors.Is(err, ErrInvalidUpstreamBody):
			s.metrics.UpstreamFailed(metrics.FailureInvalidJSON)
		default:
			s.metrics.UpstreamFailed(metrics.FailureRead)
		}
		return nil, fmt.Errorf("fetch user (upstream status %d): %w", resp.StatusCode, err)
	}

	s.logger.Debug("user fetched",
		"upstream_status", resp.StatusCode,
		"bytes", len(payload),
	)
	return payload, nil
}

// buildRequestHeaders sets Cookie even when it is empty so the upstream
// always sees the header.
func (s *UserService) buildRequestHeaders(ur *model.UserRequest) http.Header {
	h := make(http.Header)
	h["Cookie"] = []string{ur.Cookie}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", userAgent)
	if ur.RequestID != "" {
		h.Set("X-Request-Id", ur.RequestID)
	}
	return h
}

func (s *UserService) decode(body io.Reader) (json.RawMessage, error) {
	if s.maxBodyBytes > 0 {
		body = io.LimitReader(body, s.maxBodyBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if s.maxBodyBytes > 0 && int64(len(data)) > s.maxBodyBytes {
		return nil, ErrUpstreamBodyTooLarge
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		return nil, ErrInvalidUpstreamBody
	}
	return json.RawMessage(data), nil
}

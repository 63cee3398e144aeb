package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fetches are quick reads; uploads and approval submits may sit behind
// server-side document parsing or batch persistence and get a longer leash.
const (
	defaultFetchTimeout  = 10 * time.Second
	defaultMutateTimeout = 60 * time.Second
)

// TokenProvider supplies the bearer token attached to every request, so the
// credential lifecycle stays outside the client.
type TokenProvider func() string

// Client talks to the degree import service. It speaks the portal wire
// contract: flat success/message bodies with snake_case fields.
type Client struct {
	baseURL       string
	httpc         *http.Client
	token         TokenProvider
	gate          *UploadGate
	logger        *zap.Logger
	fetchTimeout  time.Duration
	mutateTimeout time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithToken sets a static bearer token attached to every request.
func WithToken(token string) Option {
	return WithTokenProvider(func() string { return token })
}

// WithTokenProvider injects a credential source consulted per request.
func WithTokenProvider(provider TokenProvider) Option {
	return func(c *Client) {
		if provider != nil {
			c.token = provider
		}
	}
}

// WithTimeouts overrides the per-operation timeouts: fetch applies to session
// reads, mutate to uploads and approval submits.
func WithTimeouts(fetch, mutate time.Duration) Option {
	return func(c *Client) {
		if fetch > 0 {
			c.fetchTimeout = fetch
		}
		if mutate > 0 {
			c.mutateTimeout = mutate
		}
	}
}

// WithUploadGate replaces the default upload validation gate.
func WithUploadGate(gate *UploadGate) Option {
	return func(c *Client) {
		if gate != nil {
			c.gate = gate
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a Client rooted at baseURL, e.g.
// "https://portal.example.edu/api/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpc:         &http.Client{},
		gate:          NewUploadGate(0),
		logger:        zap.NewNop(),
		fetchTimeout:  defaultFetchTimeout,
		mutateTimeout: defaultMutateTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload validates the file through the gate, then posts it as multipart
// form data. On success the returned session id keys the review workflow.
func (c *Client) Upload(ctx context.Context, filename string, size int64, content io.Reader) (*UploadResult, error) {
	if err := c.gate.Validate(filename, size); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.mutateTimeout)
	defer cancel()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy file into request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/imports/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.wireError(resp)
	}

	var result struct {
		Success   bool           `json:"success"`
		SessionID string         `json:"session_id"`
		Summary   SessionSummary `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	c.logger.Debug("upload accepted",
		zap.String("session_id", result.SessionID),
		zap.Int("extracted", result.Summary.TotalExtracted))

	return &UploadResult{SessionID: result.SessionID, Summary: result.Summary}, nil
}

// FetchSession retrieves the review payload for a session. An unknown or
// consumed session maps to ErrSessionNotFound, an expired one to
// ErrSessionExpired.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, &ValidationError{Reason: "session id is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/imports/sessions/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.wireError(resp)
	}

	var payload struct {
		Success          bool           `json:"success"`
		SessionID        string         `json:"session_id"`
		OriginalFilename string         `json:"original_filename"`
		Summary          SessionSummary `json:"summary"`
		ReviewData       []ReviewRecord `json:"review_data"`
		ExpiresAt        time.Time      `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}

	return &Session{
		SessionID:        payload.SessionID,
		OriginalFilename: payload.OriginalFilename,
		Summary:          payload.Summary,
		ReviewData:       payload.ReviewData,
		ExpiresAt:        payload.ExpiresAt,
	}, nil
}

// SubmitApprovals posts the complete decision set for a session and returns
// the apply outcome.
func (c *Client) SubmitApprovals(ctx context.Context, sessionID string, decisions []ApprovalDecision) (*UpdateResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, &ValidationError{Reason: "session id is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.mutateTimeout)
	defer cancel()

	payload, err := json.Marshal(struct {
		SessionID string             `json:"session_id"`
		Approvals []ApprovalDecision `json:"approvals"`
	}{SessionID: sessionID, Approvals: decisions})
	if err != nil {
		return nil, fmt.Errorf("encode approvals: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/imports/sessions/"+sessionID+"/approvals", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build approvals request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("approvals request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.wireError(resp)
	}

	var result struct {
		Success bool         `json:"success"`
		Result  UpdateResult `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode approvals response: %w", err)
	}

	return &result.Result, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token == nil {
		return
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// wireError maps the flat error body onto sentinel or API errors.
func (c *Client) wireError(resp *http.Response) error {
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrSessionNotFound
	case http.StatusGone:
		return ErrSessionExpired
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}

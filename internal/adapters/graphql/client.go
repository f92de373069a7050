package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/ports"
)

const (
	DefaultEndpoint       = "https://api-gw-tg.memefi.club/graphql"
	defaultRequestTimeout = 30 * time.Second
	maxResponseBytes      = 1 << 20
	maxErrorBodyBytes     = 512
)

var fixedHeaders = map[string]string{
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Content-Type":       "application/json",
	"Origin":             "https://tg-app.memefi.club",
	"Referer":            "https://tg-app.memefi.club/",
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-site",
	"Sec-Ch-Ua":          `"Google Chrome";v="127", "Chromium";v="127", "Not.A/Brand";v="24"`,
	"Sec-Ch-Ua-Mobile":   "?1",
	"Sec-Ch-Ua-Platform": `"Android"`,
}

// Client talks to the game's GraphQL gateway on behalf of one session.
type Client struct {
	Endpoint       string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	UserAgent      string

	mu     sync.RWMutex
	bearer string
}

var _ ports.GameAPI = (*Client)(nil)

func NewClient(endpoint string, httpClient *http.Client, userAgent string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		Endpoint:   endpoint,
		HTTPClient: httpClient,
		UserAgent:  userAgent,
	}
}

func (c *Client) Authorize(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = token
}

type operation struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// call posts a single operation and decodes data.<field> into out.
func (c *Client) call(ctx context.Context, op operation, field string, out any) error {
	body, err := c.post(ctx, op.OperationName, op)
	if err != nil {
		return err
	}

	env, err := decodeEnvelope(op.OperationName, body)
	if err != nil {
		return err
	}

	return extractField(op.OperationName, env, field, out)
}

// callBatch posts a list of operations and decodes data.<field> of the
// first response into out. The remaining responses are ignored.
func (c *Client) callBatch(ctx context.Context, ops []operation, field string, out any) error {
	if len(ops) == 0 {
		return errors.New("empty operation batch")
	}

	name := ops[0].OperationName
	body, err := c.post(ctx, name, ops)
	if err != nil {
		return err
	}

	env, err := decodeEnvelope(name, body)
	if err != nil {
		return err
	}

	return extractField(name, env, field, out)
}

func (c *Client) post(ctx context.Context, name string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", name, err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.Endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", name, err)
	}
	for key, value := range fixedHeaders {
		req.Header.Set(key, value)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("send %s request: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", name, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &domain.StatusError{
			Operation:  name,
			StatusCode: resp.StatusCode,
			Body:       truncate(strings.TrimSpace(string(body)), maxErrorBodyBytes),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			statusErr.Err = domain.ErrExpiredToken
		}
		return nil, statusErr
	}

	return body, nil
}

func decodeEnvelope(name string, body []byte) (envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return envelope{}, fmt.Errorf("%s: %w", name, domain.ErrEmptyResponse)
	}

	var env envelope
	if trimmed[0] == '[' {
		var list []envelope
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return envelope{}, fmt.Errorf("decode %s response: %w", name, err)
		}
		if len(list) == 0 {
			return envelope{}, fmt.Errorf("%s: %w", name, domain.ErrEmptyResponse)
		}
		env = list[0]
	} else if err := json.Unmarshal(trimmed, &env); err != nil {
		return envelope{}, fmt.Errorf("decode %s response: %w", name, err)
	}

	if len(env.Errors) > 0 {
		return envelope{}, classifyProtocolError(name, env.Errors[0].Message)
	}

	return env, nil
}

func extractField(name string, env envelope, field string, out any) error {
	if isEmptyJSON(env.Data) {
		return fmt.Errorf("%s: %w", name, domain.ErrEmptyResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		return fmt.Errorf("decode %s data: %w", name, err)
	}

	raw, ok := fields[field]
	if !ok || isEmptyJSON(raw) {
		return fmt.Errorf("%s: %w", name, domain.ErrEmptyResponse)
	}
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s.%s: %w", name, field, err)
	}

	return nil
}

func classifyProtocolError(name, message string) error {
	protocolErr := &domain.ProtocolError{Operation: name, Message: message}
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "game session not found"):
		return fmt.Errorf("%w: %w", domain.ErrGameSessionNotFound, protocolErr)
	case strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "jwt expired"),
		strings.Contains(lower, "token expired"),
		strings.Contains(lower, "invalid token"):
		return fmt.Errorf("%w: %w", domain.ErrExpiredToken, protocolErr)
	default:
		return protocolErr
	}
}

func isEmptyJSON(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "{}":
		return true
	default:
		return false
	}
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= timeout {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

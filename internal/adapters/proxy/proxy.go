package proxy

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	xproxy "golang.org/x/net/proxy"
)

var ErrUnsupportedScheme = errors.New("unsupported proxy scheme")

// Parse accepts scheme://[user:pass@]host:port, bare host:port and the
// host:port:user:pass shorthand common in proxy lists. Bare entries are
// treated as HTTP proxies.
func Parse(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("proxy is empty")
	}

	if !strings.Contains(trimmed, "://") {
		parts := strings.Split(trimmed, ":")
		switch len(parts) {
		case 2:
			trimmed = "http://" + trimmed
		case 4:
			trimmed = fmt.Sprintf("http://%s:%s@%s:%s", url.PathEscape(parts[2]), url.PathEscape(parts[3]), parts[0], parts[1])
		default:
			return nil, fmt.Errorf("parse proxy %q: expected host:port", raw)
		}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)

	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return nil, fmt.Errorf("parse proxy %q: host and port are required", raw)
	}

	return u, nil
}

// Redact hides credentials for logging.
func Redact(u *url.URL) string {
	if u == nil {
		return "direct"
	}
	return u.Redacted()
}

// NewTransport builds a transport routed through proxyURL. A nil proxyURL
// yields a direct transport.
func NewTransport(proxyURL *url.URL) (*http.Transport, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if proxyURL == nil {
		return transport, nil
	}

	switch proxyURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(proxyURL)
	case "socks5", "socks5h":
		dialer, err := xproxy.FromURL(proxyURL, xproxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create socks dialer: %w", err)
		}
		contextDialer, ok := dialer.(xproxy.ContextDialer)
		if !ok {
			return nil, errors.New("socks dialer does not support contexts")
		}
		transport.DialContext = contextDialer.DialContext
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedScheme, proxyURL.Scheme)
	}

	return transport, nil
}

// NewHTTPClient wraps NewTransport in a client. Per-request deadlines are
// applied by callers.
func NewHTTPClient(proxyURL *url.URL) (*http.Client, error) {
	transport, err := NewTransport(proxyURL)
	if err != nil {
		return nil, err
	}

	return &http.Client{Transport: transport}, nil
}

// Rotator hands out proxies round robin. It is safe for concurrent use.
type Rotator struct {
	mu      sync.Mutex
	proxies []*url.URL
	next    int
}

func NewRotator(proxies []*url.URL) *Rotator {
	return &Rotator{proxies: append([]*url.URL(nil), proxies...)}
}

// ParseAll parses every non-empty line and reports all invalid entries.
func ParseAll(lines []string) ([]*url.URL, error) {
	var (
		out  []*url.URL
		errs []error
	)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		u, err := Parse(line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, u)
	}

	return out, errors.Join(errs...)
}

// Next returns the next proxy, or nil when the pool is empty.
func (r *Rotator) Next() *url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.proxies) == 0 {
		return nil
	}

	u := r.proxies[r.next%len(r.proxies)]
	r.next++
	return u
}

func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.proxies)
}

// CheckOrigin fetches an IP echo endpoint through client and returns the origin
// address the remote side observed.
func CheckOrigin(ctx context.Context, client *http.Client, endpoint string) (string, error) {
	requestCtx, cancel := context.WithTimeout(ctx, originCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create origin request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("check proxy origin: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("check proxy origin: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Origin string `json:"origin"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOriginBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode origin response: %w", err)
	}
	if payload.Origin == "" {
		return "", errors.New("origin response missing origin field")
	}

	return payload.Origin, nil
}

const (
	originCheckTimeout = 5 * time.Second
	maxOriginBytes     = 64 << 10
)

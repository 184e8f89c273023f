package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultKeyPrefix     = "trip:"
	defaultSessionTTL    = 24 * time.Hour
	maxResponseSizeBytes = 2 << 20
)

var ErrSessionNotFound = errors.New("session not found")

type UpstashConfig struct {
	URL       string        `envconfig:"URL" split_words:"true"`
	Token     string        `envconfig:"TOKEN" split_words:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"trip:"`
}

// Enabled reports whether a REST endpoint is configured.
func (c UpstashConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.Token) != ""
}

// Option customizes an UpstashClient.
type Option func(*UpstashClient)

func WithKeyPrefix(prefix string) Option {
	return func(c *UpstashClient) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			c.keyPrefix = trimmed
		}
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(c *UpstashClient) {
		c.sessionTTL = ttl
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *UpstashClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// UpstashClient speaks the Upstash Redis REST protocol: one JSON array
// command per POST.
type UpstashClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	sessionTTL time.Duration
}

type restResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashClient(cfg UpstashConfig, opts ...Option) (*UpstashClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &UpstashClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultKeyPrefix,
		sessionTTL: defaultSessionTTL,
	}
	if p := strings.TrimSpace(cfg.KeyPrefix); p != "" {
		c.keyPrefix = p
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.sessionTTL < 0 {
		return nil, errors.New("session ttl must be >= 0")
	}
	return c, nil
}

func (c *UpstashClient) key(parts ...string) string {
	return c.keyPrefix + strings.Join(parts, ":")
}

func (c *UpstashClient) exec(ctx context.Context, command ...any) (json.RawMessage, error) {
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed restResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("redis %v: %s", command[0], parsed.Error)
	}
	return bytes.TrimSpace(parsed.Result), nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}

package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Pavel-Shcherbo/REKLIX/pkg/clients"

	"github.com/failsafe-go/failsafe-go"
)

// APIError is returned when the mail API answers with a non-2xx status.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mailer returned status: %d", e.StatusCode)
}

// Client talks to an HTTP transactional-mail API (JSON in, JSON out).
// Used instead of the SMTP sender when MAILER_URL is configured.
type Client struct {
	baseURL      string
	username     string
	password     string
	from         string
	client       *http.Client
	httpExecutor failsafe.Executor[*http.Response]
	shouldRetry  func(resp *http.Response, err error) bool
}

type Option func(*Client)

func NewClient(baseURL, username, password, from string, opts ...Option) *Client {
	defaultConfig := clients.DefaultHTTPExecutorConfig()
	c := &Client{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		from:         from,
		client:       &http.Client{Timeout: 10 * time.Second},
		httpExecutor: clients.NewHTTPExecutor(defaultConfig),
		shouldRetry:  defaultConfig.ShouldRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func WithHTTPExecutorConfig(cfg clients.HTTPExecutorConfig) Option {
	return func(c *Client) {
		c.httpExecutor = clients.NewHTTPExecutor(cfg)
		c.shouldRetry = cfg.ShouldRetry
	}
}

type messageRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// SendMail delivers one HTML message through the mail API.
func (c *Client) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	url := fmt.Sprintf("%s/api/messages", c.baseURL)

	jsonBody, err := json.Marshal(messageRequest{
		From:     c.from,
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
	})
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
		if err != nil {
			return nil, err
		}

		req.SetBasicAuth(c.username, c.password)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode}
	}

	return nil
}

func (c *Client) doRequest(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if c.httpExecutor == nil {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	}

	return clients.ExecuteHTTP(ctx, c.httpExecutor, func() (*http.Response, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if c.shouldRetry != nil && c.shouldRetry(resp, err) {
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
		}
		return resp, err
	})
}

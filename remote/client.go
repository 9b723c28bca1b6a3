// Package remote talks to the authoritative case store, either a case API over HTTP or
// the cases collection in MongoDB.
package remote

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

	"github.com/golang-jwt/jwt/v5"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// ErrRemoteUnavailable means the remote store could not serve the request: no credential,
// a transport failure or a non-2xx status.
var ErrRemoteUnavailable = errors.New("remote case store unavailable")

// DefaultTimeout bounds a single remote call
const DefaultTimeout = 8 * time.Second

const serviceTokenTTL = 5 * time.Minute

// Options configures a Client. Token wins over JWTSecret when both are set.
type Options struct {
	Token     string
	JWTSecret string
	Timeout   time.Duration
}

// Client is the HTTP case API client
type Client struct {
	baseURL    string
	token      string
	jwtSecret  []byte
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a case API client rooted at baseURL
func NewClient(baseURL string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      opts.Token,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	if opts.JWTSecret != "" {
		c.jwtSecret = []byte(opts.JWTSecret)
	}
	return c
}

// bearer returns the credential for the next request, minting a short lived service token
// when only a signing secret is configured
func (c *Client) bearer() (string, error) {
	if c.token != "" {
		return c.token, nil
	}
	if len(c.jwtSecret) == 0 {
		return "", fmt.Errorf("%w: no credential configured", ErrRemoteUnavailable)
	}
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "goldguard-case-api",
		"scope": "cases",
		"iat":   now.Unix(),
		"exp":   now.Add(serviceTokenTTL).Unix(),
	})
	signed, err := token.SignedString(c.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("signing service token: %w", err)
	}
	return signed, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: no base url configured", ErrRemoteUnavailable)
	}
	token, err := c.bearer()
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRemoteUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response body: %v", ErrRemoteUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned %d: %s",
			ErrRemoteUnavailable, method, path, resp.StatusCode, truncate(string(respBody), 200))
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// FetchCases lists every case the remote store holds
func (c *Client) FetchCases(ctx context.Context) ([]models.Case, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/cases", nil, &raw); err != nil {
		return nil, err
	}
	records, err := decodeCaseList(raw)
	if err != nil {
		return nil, err
	}
	cases := make([]models.Case, 0, len(records))
	for _, r := range records {
		if r.ID() == "" {
			continue
		}
		cases = append(cases, r.toCase())
	}
	return cases, nil
}

// SubmitCase posts the case in report submission form and returns the id the backend issued
func (c *Client) SubmitCase(ctx context.Context, cs models.Case) (string, error) {
	var resp submitResponse
	if err := c.do(ctx, http.MethodPost, "/reports/submit", submissionFor(cs), &resp); err != nil {
		return "", err
	}
	if resp.Success != nil && !*resp.Success {
		return "", fmt.Errorf("%w: submission refused: %s", ErrRemoteUnavailable, resp.Message)
	}
	if id := resp.id(); id != "" {
		return id, nil
	}
	return cs.ID, nil
}

// UpdateCase replaces the remote copy of a case
func (c *Client) UpdateCase(ctx context.Context, cs models.Case) error {
	return c.do(ctx, http.MethodPut, "/cases/"+url.PathEscape(cs.ID), fromCase(cs), nil)
}

// DeleteCase removes a case from the remote store
func (c *Client) DeleteCase(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cases/"+url.PathEscape(id), nil, nil)
}

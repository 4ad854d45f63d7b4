// Package client talks to a gallery server over its JSON API. Its stores
// satisfy the same contracts as the relational and local stores so the
// client state containers can use either interchangeably.
package client

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

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/snapshots"
	"github.com/JaimeStill/gallery/internal/users"
	"github.com/JaimeStill/gallery/pkg/storage"
)

// ErrNotServer is returned when a counter response did not come from the
// relational store.
var ErrNotServer = errors.New("counter not served by relational storage")

// APIError is a non-2xx response. Message carries the server's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is an HTTP client bound to one API base URL, e.g.
// http://localhost:8080/api.
type Client struct {
	baseURL    string
	httpClient *http.Client

	Prompts   *Prompts
	Workflows *Workflows
	Favorites *Favorites
}

func New(baseURL string, timeout time.Duration) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	c.Prompts = &Prompts{c: c}
	c.Workflows = &Workflows{c: c}
	c.Favorites = &Favorites{c: c}
	return c
}

// Login verifies credentials and returns the account.
func (c *Client) Login(ctx context.Context, creds users.Credentials) (*users.User, error) {
	var out struct {
		User *users.User `json:"user"`
	}
	if err := c.call(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, notFoundAs(err, users.ErrInvalidCredentials)
	}
	return out.User, nil
}

// Register creates a regular account.
func (c *Client) Register(ctx context.Context, creds users.Credentials) (*users.User, error) {
	var out struct {
		User *users.User `json:"user"`
	}
	if err := c.call(ctx, http.MethodPost, "/users", creds, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// CreateSnapshot asks the server to export the catalog to blob storage.
func (c *Client) CreateSnapshot(ctx context.Context) (*snapshots.Info, error) {
	var out struct {
		Snapshot *snapshots.Info `json:"snapshot"`
	}
	if err := c.call(ctx, http.MethodPost, "/snapshots", nil, &out); err != nil {
		return nil, err
	}
	return out.Snapshot, nil
}

func (c *Client) ListSnapshots(ctx context.Context, maxResults int) ([]storage.BlobInfo, error) {
	path := "/snapshots"
	if maxResults > 0 {
		path += fmt.Sprintf("?max_results=%d", maxResults)
	}

	var out struct {
		Snapshots []storage.BlobInfo `json:"snapshots"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Snapshots, nil
}

// DownloadSnapshot streams a stored snapshot into w.
func (c *Client) DownloadSnapshot(ctx context.Context, key string, w io.Writer) error {
	resp, err := c.do(ctx, http.MethodGet, "/snapshots/"+key, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server not reachable: %w", err)
	}
	return resp, nil
}

// call sends body as JSON and decodes a successful response into out.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
		msg = envelope.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// notFoundAs replaces a 404 (or 401 for credentials) with target so callers
// can match the domain sentinel with errors.Is.
func notFoundAs(err, target error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound, http.StatusUnauthorized:
			return fmt.Errorf("%w (%s)", target, apiErr.Message)
		}
	}
	return err
}

func escapeID(id catalog.ID) string {
	return url.PathEscape(id.String())
}

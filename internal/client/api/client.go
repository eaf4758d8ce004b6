// Package api implements the HTTP client used by the interactive CLI to
// drive the disclosure workflow service.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/keyharmony/keyharmony/internal/models"
)

// Client talks to the workflow API, attaching the bearer token obtained
// at login to every subsequent call.
type Client struct {
	// BaseURL is the server base URL, e.g. http://localhost:8080.
	BaseURL string
	// HTTP is the underlying HTTP client.
	HTTP *http.Client

	token string
}

// New returns a Client for the given base URL.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{}}
}

// Session is the principal summary returned by login.
type Session struct {
	AccessToken string `json:"access_token"`
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
}

func (c *Client) do(method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login authenticates and stores the returned bearer token on the client.
func (c *Client) Login(username, passwd string) (Session, error) {
	var s Session
	err := c.do(http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": passwd,
	}, &s)
	if err != nil {
		return Session{}, err
	}
	c.token = s.AccessToken
	return s, nil
}

// Submit creates a new disclosure request.
func (c *Client) Submit(secretName, reason string) (models.SecretRequest, error) {
	var req models.SecretRequest
	err := c.do(http.MethodPost, "/api/requests", map[string]string{
		"secret_name": secretName,
		"reason":      reason,
	}, &req)
	return req, err
}

// Requests lists the caller's requests, or all requests when all is true
// (administrators only).
func (c *Client) Requests(all bool) ([]models.SecretRequest, error) {
	path := "/api/requests"
	if all {
		path += "?all=true"
	}
	var out []models.SecretRequest
	err := c.do(http.MethodGet, path, nil, &out)
	return out, err
}

// Review moves a pending request into review.
func (c *Client) Review(id int64) (models.SecretRequest, error) {
	var req models.SecretRequest
	err := c.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/review", id), struct{}{}, &req)
	return req, err
}

// Escalate moves an in-review request to awaiting_admin.
func (c *Client) Escalate(id int64) (models.SecretRequest, error) {
	var req models.SecretRequest
	err := c.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/escalate", id), struct{}{}, &req)
	return req, err
}

// Approve resolves a request, supplying the secret value to disclose.
func (c *Client) Approve(id int64, secretValue, comment string) (models.SecretRequest, error) {
	var req models.SecretRequest
	err := c.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/approve", id), map[string]string{
		"secret_value": secretValue,
		"comment":      comment,
	}, &req)
	return req, err
}

// Deny resolves a request without disclosure.
func (c *Client) Deny(id int64, comment string) (models.SecretRequest, error) {
	var req models.SecretRequest
	err := c.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/deny", id), map[string]string{
		"comment": comment,
	}, &req)
	return req, err
}

// Secret fetches the disclosed value for an approved request.
func (c *Client) Secret(id int64) (string, error) {
	var out struct {
		Secret string `json:"secret"`
	}
	err := c.do(http.MethodGet, fmt.Sprintf("/api/requests/%d/secret", id), nil, &out)
	return out.Secret, err
}

// Secrets lists the secrets visible to the caller.
func (c *Client) Secrets() ([]models.Secret, error) {
	var out []models.Secret
	err := c.do(http.MethodGet, "/api/secrets", nil, &out)
	return out, err
}

// Audit fetches the audit ledger (administrators only).
func (c *Client) Audit() ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	err := c.do(http.MethodGet, "/api/audit", nil, &out)
	return out, err
}

// Notifications fetches the caller's queued messages.
func (c *Client) Notifications() ([]string, error) {
	var out struct {
		Notifications []string `json:"notifications"`
	}
	err := c.do(http.MethodGet, "/api/notifications", nil, &out)
	return out.Notifications, err
}

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GuestHeader carries the caller's guest identity
const GuestHeader = "X-Guest-ID"

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	guestID    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, guestID string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		guestID: guestID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetGuestID updates the client's guest identity
func (c *Client) SetGuestID(id string) {
	c.guestID = id
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Suggestion is a candidate guest offered when a name is ambiguous
type Suggestion struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname,omitempty"`
	PhotoCount  int    `json:"photo_count"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error       APIError     `json:"error"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// RequestError is a parsed non-2xx response. Commands can inspect it to
// react to specific error codes, like ambiguous name suggestions.
type RequestError struct {
	StatusCode int
	Response   ErrorResponse
}

func (e *RequestError) Error() string {
	if e.Response.Error.Code != "" {
		return e.Response.Error.String()
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Do performs an HTTP request
func (c *Client) Do(method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, result)
}

// Upload performs a multipart file upload
func (c *Client) Upload(path, filePath string, result any) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, result)
}

func (c *Client) send(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")
	if c.guestID != "" {
		req.Header.Set(GuestHeader, c.guestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		reqErr := &RequestError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, &reqErr.Response); err != nil || reqErr.Response.Error.Code == "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return reqErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, body, result any) error {
	return c.Do(http.MethodPost, path, body, result)
}

// Delete performs a DELETE request
func (c *Client) Delete(path string) error {
	return c.Do(http.MethodDelete, path, nil, nil)
}

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps the standard HTTP client with the JSON request/response
// handling shared by the gateway, metadata and AI service clients.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new HTTP client
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithHTTPClient creates a client around a caller-supplied
// http.Client (custom transports, proxies, test servers).
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		return NewClient()
	}
	return &Client{httpClient: httpClient}
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	return c.do(ctx, http.MethodGet, url, headers, nil, out)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into out. A nil out discards the response body.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, url, headers, body, out)
}

// PutJSON performs a PUT request with a JSON body.
func (c *Client) PutJSON(ctx context.Context, url string, headers map[string]string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, url, headers, body, out)
}

// DeleteJSON performs a DELETE request.
func (c *Client) DeleteJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, url, headers, nil, out)
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return parseResponse(resp, out)
}

func parseResponse(resp *http.Response, out interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorData struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errorData) == nil {
			if errorData.Error != "" {
				return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorData.Error)
			}
			if errorData.Message != "" {
				return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorData.Message)
			}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// WithQuery appends non-empty query parameters to a URL.
func WithQuery(baseURL string, params map[string]string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	q := u.Query()
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

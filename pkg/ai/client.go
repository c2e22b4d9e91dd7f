// Package ai calls the question-generation service: given a source post
// URL it returns a market question, descriptive context and a suggested
// duration from the enumerated set.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/httpclient"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// Generated is the service's suggestion for a new market.
type Generated struct {
	Question     string         `json:"question" validate:"required"`
	Context      string         `json:"context"`
	PostSnapshot string         `json:"post_snapshot"`
	Duration     types.Duration `json:"duration"`
}

// Client is the AI service client.
type Client struct {
	host       string
	httpClient *httpclient.Client
	validate   *validator.Validate
}

// Option is a functional option for configuring the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpclient.NewClientWithHTTPClient(httpClient)
	}
}

// NewClient creates an AI service client for the given host.
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		host:       strings.TrimSuffix(host, "/"),
		httpClient: httpclient.NewClient(),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	PostURL string `json:"post_url"`
}

// Generate asks the service for a market question for the given post URL.
// An out-of-set suggested duration falls back to the default rather than
// failing, since the duration is advisory.
func (c *Client) Generate(ctx context.Context, postURL string) (*Generated, error) {
	var out Generated
	if err := c.httpClient.PostJSON(ctx, c.host+types.AIGenerate, nil, generateRequest{PostURL: postURL}, &out); err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("malformed generation response: %w", err)
	}
	if !out.Duration.Valid() {
		out.Duration = types.DefaultDuration
	}
	return &out, nil
}

package browserql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("browserql: BROWSERLESS_API_KEY not set")

// TransportError is a non-2xx response from the BrowserQL endpoint.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("browserql: request failed: %d - %s", e.Status, e.Body)
}

// ExecutionError carries the structured errors list a BrowserQL response
// may report on top of an HTTP 200.
type ExecutionError struct {
	Errors []GraphQLError
}

type GraphQLError struct {
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

func (e *ExecutionError) Error() string {
	if len(e.Errors) == 0 {
		return "browserql: execution failed"
	}
	return fmt.Sprintf("browserql: execution failed: %s", e.Errors[0].Message)
}

// Client executes BrowserQL mutation documents against a remote
// stealth-browser endpoint. Every call is a single attempt; callers own
// any tolerance policy.
type Client struct {
	http     *resty.Client
	endpoint string
	apiKey   string
	logger   *slog.Logger
}

type Options struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	timeout := opts.Timeout
	if timeout == 0 {
		// Navigation waits for network idle on the remote side, which
		// can take a while behind a bot challenge.
		timeout = 2 * time.Minute
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		http:     client,
		endpoint: opts.Endpoint,
		apiKey:   opts.APIKey,
		logger:   logger.With("component", "browserql"),
	}, nil
}

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type response struct {
	Data   map[string]any `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// Execute sends a mutation document and returns the decoded data object.
func (c *Client) Execute(ctx context.Context, document string, variables map[string]any, operationName string) (map[string]any, error) {
	body := request{Query: document, OperationName: operationName}
	if len(variables) > 0 {
		body.Variables = variables
	}

	c.logger.Debug("executing mutation", "operation", operationName)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.apiKey).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("browserql: send request: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &TransportError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	var result response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("browserql: decode response: %w", err)
	}

	if len(result.Errors) > 0 {
		return nil, &ExecutionError{Errors: result.Errors}
	}

	return result.Data, nil
}

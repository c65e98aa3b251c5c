package browserql

import (
	"context"
	"fmt"
)

// Executor is the mutation surface the orchestrators depend on. Tests
// substitute a fake; Client is the production implementation.
type Executor interface {
	Warmup(ctx context.Context, url string) error
	PageText(ctx context.Context, url string) (string, error)
}

// Warmup navigates the managed browser to a URL and waits for network
// idle, letting the target site's bot challenge resolve.
func (c *Client) Warmup(ctx context.Context, url string) error {
	mutation := fmt.Sprintf(`mutation WarmupSession {
  goto(url: %q, waitUntil: networkIdle) {
    status
    time
  }
}`, url)

	_, err := c.Execute(ctx, mutation, nil, "")
	return err
}

// PageText navigates to a URL and returns the rendered body text. An
// absent text field comes back as the empty string.
func (c *Client) PageText(ctx context.Context, url string) (string, error) {
	mutation := fmt.Sprintf(`mutation GetPageText {
  goto(url: %q, waitUntil: networkIdle) {
    status
  }
  pageText: text(selector: "body") {
    text
  }
}`, url)

	data, err := c.Execute(ctx, mutation, nil, "")
	if err != nil {
		return "", err
	}

	node, ok := data["pageText"].(map[string]any)
	if !ok {
		return "", nil
	}
	text, _ := node["text"].(string)
	return text, nil
}

package clients

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// StatusError reports a non-2xx answer from the write endpoint.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("write endpoint returned %d: %s", e.Status, e.Body)
}

// LineClient posts line-protocol batches to the time-series database write endpoint.
type LineClient struct {
	base *BaseClient
}

// NewLineClient returns client authenticating with the given user and API token.
func NewLineClient(url, user, token string, httpClient HTTPDoer) *LineClient {
	return &LineClient{base: NewBaseClient(url, httpClient).WithBasicAuth(user, token)}
}

// Write sends one newline-joined batch.
func (c *LineClient) Write(ctx context.Context, batch []byte) error {
	headers := map[string]string{
		"Content-Type": "text/plain; charset=utf-8",
	}
	status, body, err := c.base.Do(ctx, http.MethodPost, "", batch, headers)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &StatusError{Status: status, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

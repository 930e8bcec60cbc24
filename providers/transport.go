package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// relayResponse is the envelope returned by the pass-through relay: the
// upstream body is wrapped in a contents field and needs a second decode.
type relayResponse struct {
	Contents string `json:"contents"`
}

// GetBody issues a plain GET with the given headers and returns the body.
func GetBody(ctx context.Context, client *http.Client, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// GetWithRelay tries a direct GET first and, on any failure, a single
// alternate path through the relay mirror before giving up. Both attempts
// run under the caller's context, so they share one deadline budget. An
// empty relayBase disables the second path.
func GetWithRelay(ctx context.Context, client *http.Client, rawURL, relayBase string, header http.Header) ([]byte, error) {
	type strategy func(context.Context) ([]byte, error)

	direct := func(ctx context.Context) ([]byte, error) {
		return GetBody(ctx, client, rawURL, header)
	}
	relay := func(ctx context.Context) ([]byte, error) {
		body, err := GetBody(ctx, client, relayBase+url.QueryEscape(rawURL), nil)
		if err != nil {
			return nil, err
		}
		var wrapped relayResponse
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse relay envelope: %w", err)
		}
		if wrapped.Contents == "" {
			return nil, fmt.Errorf("relay returned empty contents")
		}
		return []byte(wrapped.Contents), nil
	}

	strategies := []strategy{direct}
	if relayBase != "" {
		strategies = append(strategies, relay)
	}

	var lastErr error
	for _, run := range strategies {
		body, err := run(ctx)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

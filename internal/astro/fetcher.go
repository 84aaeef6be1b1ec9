package astro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"coopcontrol/internal/config"

	"go.uber.org/zap"
)

// maxBodySize caps how much of a provider response is read
const maxBodySize = 1 << 20

// Fetcher calls the sunrise-sunset provider. It holds no mutable state and is
// safe for concurrent use.
type Fetcher struct {
	provider string
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
}

// NewFetcher creates a fetcher for the configured provider
func NewFetcher(cfg config.ProviderConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		provider: cfg.Name,
		baseURL:  cfg.BaseURL,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// Fetch requests sun data for date at (lat, lng). date is passed through
// unchanged; "today" is resolved by the provider.
func (f *Fetcher) Fetch(ctx context.Context, date string, lat, lng float64) (*RawResult, error) {
	values := url.Values{}
	values.Set("date", date)
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	values.Set("formatted", "0")
	u := fmt.Sprintf("%s?%s", f.baseURL, values.Encode())

	f.logger.Info("Requesting astronomical data",
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.String("date", date),
		zap.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Provider: f.provider, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: f.provider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Provider: f.provider, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Provider:   f.provider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", http.StatusText(resp.StatusCode)),
		}
	}

	f.logger.Debug("Provider raw response", zap.ByteString("body", body))

	return f.decode(body)
}

func (f *Fetcher) decode(body []byte) (*RawResult, error) {
	var envelope struct {
		Results json.RawMessage `json:"results"`
		Status  string          `json:"status"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, f.malformed("invalid JSON", body)
	}

	results := bytes.TrimSpace(envelope.Results)
	if len(results) == 0 || bytes.Equal(results, []byte("null")) {
		return nil, f.malformed("missing results", body)
	}
	if envelope.Status != "OK" {
		return nil, f.malformed(fmt.Sprintf("status %q", envelope.Status), body)
	}
	if results[0] != '{' {
		return nil, f.malformed("results is not an object", body)
	}

	var raw RawResult
	if err := json.Unmarshal(results, &raw); err != nil {
		return nil, f.malformed(fmt.Sprintf("unreadable results: %v", err), body)
	}
	return &raw, nil
}

func (f *Fetcher) malformed(reason string, body []byte) *MalformedResponseError {
	return &MalformedResponseError{
		Provider: f.provider,
		Reason:   reason,
		Payload:  string(body),
	}
}

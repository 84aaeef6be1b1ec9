// Package testutil provides testing utilities for the coop controller.
// It contains a mock sunrise-sunset provider and an environment that wires
// the real components against it.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// FailureJSON is what the provider returns for a bad request
const FailureJSON = `{"results":"","status":"INVALID_REQUEST"}`

// providerTime is the provider's formatted=0 timestamp layout
const providerTime = "2006-01-02T15:04:05-07:00"

// cannedResponse is one configured reply
type cannedResponse struct {
	status int
	body   string
}

// MockProvider simulates the sunrise-sunset.org JSON API
type MockProvider struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]cannedResponse
	fallback  cannedResponse
	requests  []url.Values
}

// NewMockProvider starts a mock provider. Until configured it answers every
// request with the 2015-05-21 sample day.
func NewMockProvider() *MockProvider {
	p := &MockProvider{
		responses: make(map[string]cannedResponse),
		fallback: cannedResponse{
			status: http.StatusOK,
			body: SunriseSunsetJSON(
				time.Date(2015, 5, 21, 5, 5, 35, 0, time.UTC),
				time.Date(2015, 5, 21, 19, 22, 59, 0, time.UTC),
			),
		},
	}
	p.server = httptest.NewServer(http.HandlerFunc(p.handle))
	return p
}

// URL returns the endpoint to use as provider.base_url
func (p *MockProvider) URL() string {
	return p.server.URL + "/json"
}

// Close shuts the server down
func (p *MockProvider) Close() {
	p.server.Close()
}

// SetResponse configures the reply for one date query value ("today" included)
func (p *MockProvider) SetResponse(date string, status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[date] = cannedResponse{status: status, body: body}
}

// SetDefaultResponse configures the reply for dates without their own
func (p *MockProvider) SetDefaultResponse(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallback = cannedResponse{status: status, body: body}
}

// Requests returns the query of every request received
func (p *MockProvider) Requests() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]url.Values, len(p.requests))
	copy(out, p.requests)
	return out
}

// RequestCount returns how many requests were received
func (p *MockProvider) RequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func (p *MockProvider) handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	p.mu.Lock()
	p.requests = append(p.requests, query)
	resp, ok := p.responses[query.Get("date")]
	if !ok {
		resp = p.fallback
	}
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	fmt.Fprint(w, resp.body)
}

// SunriseSunsetJSON builds a successful provider payload for one day
func SunriseSunsetJSON(sunrise, sunset time.Time) string {
	sunrise = sunrise.UTC()
	sunset = sunset.UTC()
	noon := sunrise.Add(sunset.Sub(sunrise) / 2)

	payload := map[string]interface{}{
		"results": map[string]interface{}{
			"sunrise":                     sunrise.Format(providerTime),
			"sunset":                      sunset.Format(providerTime),
			"solar_noon":                  noon.Format(providerTime),
			"day_length":                  int64(sunset.Sub(sunrise).Seconds()),
			"civil_twilight_begin":        sunrise.Add(-29 * time.Minute).Format(providerTime),
			"civil_twilight_end":          sunset.Add(29 * time.Minute).Format(providerTime),
			"nautical_twilight_begin":     sunrise.Add(-65 * time.Minute).Format(providerTime),
			"nautical_twilight_end":       sunset.Add(65 * time.Minute).Format(providerTime),
			"astronomical_twilight_begin": sunrise.Add(-105 * time.Minute).Format(providerTime),
			"astronomical_twilight_end":   sunset.Add(105 * time.Minute).Format(providerTime),
		},
		"status": "OK",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return string(data)
}

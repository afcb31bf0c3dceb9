// Package nse provides a client for the NSE public option-chain endpoints.
// NSE actively resists programmatic access, so the client maintains a primed
// browser-like session, rotates it on auth-style failures, and falls back to
// a short-TTL last-good cache when the provider blocks or errors out.
package nse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	maxAttempts         = 3
	defaultRetryBackoff = 500 * time.Millisecond

	// NSE tolerates roughly the request rate of a human clicking around.
	requestsPerSecond = 5
)

// apiHeaders are added on top of the browser template for data requests.
var apiHeaders = map[string]string{
	"Accept":           "application/json, text/plain, */*",
	"X-Requested-With": "XMLHttpRequest",
}

// Client fetches JSON payloads from NSE with bounded retries and a
// last-known-good fallback.
type Client struct {
	baseURL  string
	sessions *sessionManager
	cache    *lastGoodCache
	limiter  *rate.Limiter
	backoff  time.Duration
	log      zerolog.Logger
}

// NewClient creates an NSE client.
// cookieOverride is optional - when set it is sent as a fixed Cookie header
// in addition to whatever the session jar collects.
func NewClient(baseURL, cookieOverride string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		sessions: newSessionManager(baseURL, cookieOverride, log),
		cache:    newLastGoodCache(defaultCacheTTL),
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		backoff:  defaultRetryBackoff,
		log:      log.With().Str("client", "nse").Logger(),
	}
}

// OptionChain fetches the per-strike CE/PE snapshot for a symbol.
// expiry is optional; instrumentType is "Indices" or "Equities".
func (c *Client) OptionChain(ctx context.Context, symbol, expiry, instrumentType string) (json.RawMessage, error) {
	return c.Fetch(ctx, EndpointOptionChain, optionChainParams(symbol, expiry, instrumentType))
}

// IndexData fetches live values for all NSE indices.
func (c *Client) IndexData(ctx context.Context) (json.RawMessage, error) {
	return c.Fetch(ctx, EndpointIndexData, indexDataParams())
}

// ContractInfo fetches available expiry dates and strike prices for a symbol.
func (c *Client) ContractInfo(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.Fetch(ctx, EndpointContractInfo, contractInfoParams(symbol))
}

// Fetch issues a GET against an endpoint with bounded retries.
//
// Each attempt after the first rotates the session and forces a re-prime,
// because a 401/403 means the current cookies tripped bot detection. When all
// attempts fail, a payload cached within the freshness window is served
// instead; only after that does the call fail, with a single terminal
// *AcquisitionError.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint, params url.Values) (json.RawMessage, error) {
	key := cacheKey(c.baseURL+endpoint.Path, params)
	fetchID := uuid.NewString()[:8]
	log := c.log.With().Str("endpoint", endpoint.Name).Str("fetch_id", fetchID).Logger()

	lastErr := "unknown error"
	for attempt := 0; attempt < maxAttempts; attempt++ {
		forceNew := attempt > 0
		sess := c.sessions.acquire(forceNew)

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &AcquisitionError{Endpoint: endpoint.Name, Cause: err.Error()}
		}

		if err := c.sessions.prime(ctx, sess, forceNew); err != nil {
			lastErr = err.Error()
			log.Warn().Err(err).Int("attempt", attempt).Msg("Priming failed")
			time.Sleep(c.backoff)
			continue
		}

		payload, status, err := c.get(ctx, sess, endpoint, params)
		if err != nil {
			lastErr = err.Error()
			log.Warn().Err(err).Int("attempt", attempt).Msg("Request failed")
			time.Sleep(c.backoff)
			continue
		}

		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			// Bot detection. Retry immediately with a fresh session.
			lastErr = fmt.Sprintf("HTTP %d", status)
			log.Warn().Int("status", status).Int("attempt", attempt).Msg("Blocked, rotating session")
			continue
		}
		if status < 200 || status > 299 {
			lastErr = fmt.Sprintf("HTTP %d", status)
			log.Warn().Int("status", status).Int("attempt", attempt).Msg("Unexpected status")
			time.Sleep(c.backoff)
			continue
		}
		if emptyPayload(payload) {
			lastErr = "empty JSON payload"
			log.Warn().Int("attempt", attempt).Msg("Empty payload")
			continue
		}

		c.cache.put(key, payload)
		return payload, nil
	}

	if cached, ok := c.cache.getFresh(key); ok {
		log.Warn().Str("last_error", lastErr).Msg("All attempts failed, serving recent cached payload")
		return cached, nil
	}

	return nil, &AcquisitionError{Endpoint: endpoint.Name, Cause: lastErr}
}

func (c *Client) get(ctx context.Context, sess *session, endpoint Endpoint, params url.Values) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint.Path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	c.sessions.applyHeaders(req)
	for k, v := range apiHeaders {
		req.Header.Set(k, v)
	}

	resp, err := sess.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		// NSE serves an HTML block page with status 200 under bot
		// detection; that must count as a failed attempt.
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && !json.Valid(trimmed) {
			return nil, resp.StatusCode, fmt.Errorf("response is not JSON")
		}
	}

	return body, resp.StatusCode, nil
}

// emptyPayload reports whether a syntactically valid body carries no data.
func emptyPayload(payload json.RawMessage) bool {
	switch string(bytes.TrimSpace(payload)) {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}

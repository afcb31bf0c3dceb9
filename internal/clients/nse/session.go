package nse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultPrimeInterval = 600 * time.Second
	defaultHTTPTimeout   = 10 * time.Second
)

// browserHeaders mimics a regular browser visit. NSE rejects requests that
// don't look like they came from the website.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0",
	"Accept":          "*/*",
	"Accept-Language": "en-US,en;q=0.9",
}

// session is a reusable HTTP context: one cookie jar plus the browser header
// template. The jar collects the anti-bot cookies set by the landing pages.
type session struct {
	http *http.Client
}

// sessionManager owns the single process-wide session. All creation and
// priming happens under its lock, serializing acquisition across concurrent
// requests.
type sessionManager struct {
	mu             sync.Mutex
	baseURL        string
	cookieOverride string
	primeInterval  time.Duration
	timeout        time.Duration
	current        *session
	lastPrimed     time.Time
	log            zerolog.Logger
}

func newSessionManager(baseURL, cookieOverride string, log zerolog.Logger) *sessionManager {
	return &sessionManager{
		baseURL:        baseURL,
		cookieOverride: cookieOverride,
		primeInterval:  defaultPrimeInterval,
		timeout:        defaultHTTPTimeout,
		log:            log.With().Str("component", "nse-session").Logger(),
	}
}

// acquire returns the current session, creating a fresh one when forceNew is
// set or none exists yet. A fresh session starts with an empty cookie jar.
func (m *sessionManager) acquire(forceNew bool) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if forceNew || m.current == nil {
		jar, _ := cookiejar.New(nil)
		m.current = &session{
			http: &http.Client{Jar: jar, Timeout: m.timeout},
		}
		if forceNew {
			m.log.Debug().Msg("Rotated session")
		}
	}
	return m.current
}

// prime visits the NSE landing and option-chain pages so the session picks up
// the anti-bot cookies. Within the prime interval it is a no-op unless forced.
// Failures are reported to the caller, which treats them like any other
// transport failure on the attempt.
func (m *sessionManager) prime(ctx context.Context, s *session, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !force && time.Since(m.lastPrimed) < m.primeInterval {
		return nil
	}

	for _, page := range []string{"/", "/option-chain"} {
		if err := m.visit(ctx, s, page); err != nil {
			return fmt.Errorf("prime %s: %w", page, err)
		}
	}

	m.lastPrimed = time.Now()
	m.log.Debug().Msg("Session primed")
	return nil
}

func (m *sessionManager) visit(ctx context.Context, s *session, page string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+page, nil)
	if err != nil {
		return err
	}
	m.applyHeaders(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	// Body content is irrelevant, only the Set-Cookie headers matter.
	resp.Body.Close()
	return nil
}

// applyHeaders sets the browser header template plus the optional fixed
// cookie override from configuration.
func (m *sessionManager) applyHeaders(req *http.Request) {
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Referer", m.baseURL+"/option-chain")
	if m.cookieOverride != "" {
		req.Header.Set("Cookie", m.cookieOverride)
	}
}

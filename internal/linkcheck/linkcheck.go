// Package linkcheck verifies that the external links of bibliography
// entries still resolve.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DOIResolver is the base URL bare DOIs are resolved against.
const DOIResolver = "https://doi.org/"

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "bibsite-linkcheck/1.0"

// Status is the outcome of checking one link.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Link is one URL to check, tagged with where it came from.
type Link struct {
	Key   string `json:"key"`   // citation key of the entry
	Field string `json:"field"` // url, doi, pdf or code
	URL   string `json:"url"`
}

// Result captures the outcome of checking a single link.
type Result struct {
	Link
	Status     Status `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the link resolved.
func (r Result) OK() bool {
	return r.Status == StatusValid
}

// HTTPClient is the subset of *http.Client used by the checker.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Checker issues rate-limited HEAD requests, falling back to GET for
// servers that reject HEAD.
type Checker struct {
	httpClient HTTPClient
	limiter    *rate.Limiter
	timeout    time.Duration
	userAgent  string
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Checker) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Checker) {
		c.userAgent = ua
	}
}

// New creates a Checker allowing perSecond requests per second, each
// bounded by timeout.
func New(perSecond float64, timeout time.Duration, opts ...Option) *Checker {
	c := &Checker{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		timeout:    timeout,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LinkURL turns a field value into an absolute URL. Bare DOIs are sent to
// the DOI resolver; values that are not web links return "".
func LinkURL(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	if field == "doi" {
		value = strings.TrimPrefix(value, "doi:")
		return DOIResolver + strings.TrimSpace(value)
	}
	return ""
}

// CheckAll checks links in order and stops early if ctx is cancelled.
func (c *Checker) CheckAll(ctx context.Context, links []Link) ([]Result, error) {
	results := make([]Result, 0, len(links))
	for _, link := range links {
		if err := c.limiter.Wait(ctx); err != nil {
			return results, err
		}
		res := c.Check(ctx, link)
		log.Debug().Str("key", link.Key).Str("url", link.URL).Str("status", string(res.Status)).Msg("checked link")
		results = append(results, res)
	}
	return results, nil
}

// Check checks a single link without waiting on the rate limiter.
func (c *Checker) Check(ctx context.Context, link Link) Result {
	res := Result{Link: link}

	code, err := c.request(ctx, http.MethodHead, link.URL)
	if err == nil && (code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented) {
		code, err = c.request(ctx, http.MethodGet, link.URL)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		res.Status = StatusTimeout
		res.Error = err.Error()
	case err != nil:
		res.Status = StatusError
		res.Error = err.Error()
	case code >= 200 && code < 400:
		res.Status = StatusValid
		res.StatusCode = code
	default:
		res.Status = StatusInvalid
		res.StatusCode = code
	}
	return res
}

func (c *Checker) request(ctx context.Context, method, url string) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Package executor sends saved requests over HTTP.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionSvc "lumina/internal/domain/services/collection"

	"golang.org/x/time/rate"
)

// Config tunes the HTTP executor.
type Config struct {
	Timeout      time.Duration
	RateLimit    float64 // sends per second, <= 0 disables limiting
	MaxBodyBytes int64   // response bytes kept in memory, <= 0 keeps all
}

// HTTPExecutor implements collectionSvc.Executor on net/http.
type HTTPExecutor struct {
	client       *http.Client
	limiter      *rate.Limiter
	maxBodyBytes int64
	logger       *slog.Logger
}

// New creates an executor. A nil client gets a default one with cfg.Timeout.
func New(cfg Config, client *http.Client, logger *slog.Logger) *HTTPExecutor {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &HTTPExecutor{client: client, limiter: limiter, maxBodyBytes: cfg.MaxBodyBytes, logger: logger}
}

var _ collectionSvc.Executor = (*HTTPExecutor)(nil)

// Execute sends req and captures the response. Timeouts and network failures
// come back as *domain.TransportError. A request that cannot be built is a
// ValidationError.
func (e *HTTPExecutor) Execute(ctx context.Context, req *models.Request) (*models.ResponseSnapshot, error) {
	httpReq, err := buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &domain.TransportError{Op: "send " + req.Method, Err: err}
	}

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.logger.Debug("send failed", "request_id", req.ID, "url", httpReq.URL.Redacted(), "timeout", IsTimeout(err), "error", err)
		return nil, &domain.TransportError{Op: "send " + req.Method, Err: err}
	}
	defer resp.Body.Close()

	body, size, err := e.readBody(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &domain.TransportError{Op: "read response", Err: err}
	}

	return &models.ResponseSnapshot{
		StatusCode: resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    headerPairs(resp.Header),
		Body:       string(body),
		ElapsedMS:  elapsed.Milliseconds(),
		SizeBytes:  size,
	}, nil
}

// readBody keeps at most maxBodyBytes+1 bytes, so later truncation can tell the
// body was cut, and counts the rest without holding it.
func (e *HTTPExecutor) readBody(r io.Reader) ([]byte, int64, error) {
	if e.maxBodyBytes <= 0 {
		body, err := io.ReadAll(r)
		return body, int64(len(body)), err
	}
	body, err := io.ReadAll(io.LimitReader(r, e.maxBodyBytes+1))
	if err != nil {
		return nil, 0, err
	}
	rest, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, 0, err
	}
	return body, int64(len(body)) + rest, nil
}

func buildRequest(ctx context.Context, req *models.Request) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid url: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unsupported url scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &domain.ValidationError{Message: "url has no host"}
	}

	query := u.Query()
	for _, p := range req.Params {
		if p.Key == "" {
			continue
		}
		query.Add(p.Key, p.Value)
	}

	var body io.Reader
	if req.Body.Type == models.BodyTypeRaw && req.Body.Raw != "" {
		body = strings.NewReader(req.Body.Raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	for _, h := range req.Headers {
		if h.Key == "" {
			continue
		}
		httpReq.Header.Add(h.Key, h.Value)
	}

	switch a := models.AuthOrNone(req.Auth).(type) {
	case models.BasicAuth:
		httpReq.SetBasicAuth(a.Username, a.Password)
	case models.BearerAuth:
		httpReq.Header.Set("Authorization", "Bearer "+a.Token)
	case models.APIKeyAuth:
		if a.Name == "" {
			break
		}
		if a.Location == models.APIKeyInQuery {
			query.Set(a.Name, a.Value)
		} else {
			httpReq.Header.Set(a.Name, a.Value)
		}
	}
	httpReq.URL.RawQuery = query.Encode()

	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentTypeFor(req.Body.Raw))
	}

	return httpReq, nil
}

func contentTypeFor(raw string) string {
	if json.Valid([]byte(raw)) {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// headerPairs flattens response headers sorted by name
func headerPairs(h http.Header) models.KeyValues {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make(models.KeyValues, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, models.KeyValue{Key: name, Value: strings.Join(h[name], ", ")})
	}
	return pairs
}

// IsTimeout reports whether err came from a deadline rather than a refused connection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

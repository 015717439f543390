// Package tap runs ADQL against a TAP service's synchronous endpoint.
package tap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
	"github.com/kailas-cloud/gaiachat/internal/metrics"
)

const (
	// DefaultURL is the ESA Gaia archive TAP service.
	DefaultURL = "https://gea.esac.esa.int/tap-server/tap"

	maxErrorBody = 2048
)

// Client is a TAP sync client.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	logger  *zap.Logger
}

// Config holds the TAP client settings. Timeout 0 leaves cancellation to the caller's context.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New creates a TAP client.
func New(cfg *Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		http:    hc,
		tracer:  otel.Tracer("github.com/kailas-cloud/gaiachat/internal/transport/tap"),
		logger:  l,
	}
}

// response is the TAP JSON output format.
type response struct {
	Metadata []struct {
		Name     string `json:"name"`
		Datatype string `json:"datatype"`
	} `json:"metadata"`
	Data [][]any `json:"data"`
}

// Run executes query and decodes the rows. Every failure is a *domain.ArchiveError.
func (c *Client) Run(ctx context.Context, query string) (star.Table, error) {
	ctx, span := c.tracer.Start(ctx, "tap.Run")
	defer span.End()

	start := time.Now()
	t, err := c.run(ctx, query)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.ArchiveRequestsTotal.WithLabelValues(status).Inc()
	metrics.ArchiveRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		return star.Table{}, domain.NewArchiveError(query, err)
	}

	metrics.ArchiveRowsTotal.Add(float64(t.Len()))
	span.SetAttributes(attribute.Int("tap.rows", t.Len()))
	c.logger.Debug("TAP query completed",
		zap.Int("rows", t.Len()), zap.Duration("duration", time.Since(start)))
	return t, nil
}

func (c *Client) run(ctx context.Context, query string) (star.Table, error) {
	form := url.Values{
		"REQUEST": {"doQuery"},
		"LANG":    {"ADQL"},
		"FORMAT":  {"json"},
		"QUERY":   {query},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sync", strings.NewReader(form.Encode()))
	if err != nil {
		return star.Table{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return star.Table{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return star.Table{}, statusError(resp.StatusCode, body)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var r response
	if err := dec.Decode(&r); err != nil {
		return star.Table{}, fmt.Errorf("decode response: %w", err)
	}

	cols := make([]string, len(r.Metadata))
	for i, m := range r.Metadata {
		cols[i] = m.Name
	}
	t, err := star.FromRows(cols, r.Data)
	if err != nil {
		return star.Table{}, fmt.Errorf("decode rows: %w", err)
	}
	return t, nil
}

// HealthCheck probes the VOSI availability endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/availability", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("availability: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("availability: HTTP %d", resp.StatusCode)
	}
	return nil
}

// statusError extracts the most useful message from a TAP error body.
// TAP services answer errors with a VOTable INFO element or plain text.
func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if i := strings.Index(msg, `name="QUERY_STATUS" value="ERROR">`); i >= 0 {
		rest := msg[i+len(`name="QUERY_STATUS" value="ERROR">`):]
		if j := strings.Index(rest, "</INFO>"); j >= 0 {
			msg = strings.TrimSpace(rest[:j])
		}
	}
	if msg == "" {
		return fmt.Errorf("HTTP %d", status)
	}
	return fmt.Errorf("HTTP %d: %s", status, msg)
}

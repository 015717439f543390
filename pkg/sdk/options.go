package gaiachat

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	tapURL     string
	table      string
	timeout    time.Duration
	httpClient *http.Client

	defaultLimit int
	maxLimit     int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithTAPURL points the client at another TAP service.
// Defaults to the ESA Gaia archive.
func WithTAPURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tapURL = url
	})
}

// WithTable overrides the source table. Default: gaiadr3.gaia_source.
func WithTable(table string) Option {
	return optionFunc(func(c *clientConfig) {
		c.table = table
	})
}

// WithTimeout bounds each archive request. Zero (default) relies on the
// caller's context; archive queries can take minutes.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient supplies the HTTP client used for archive requests.
// It takes precedence over WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLimits sets the default and maximum TOP row counts.
// Defaults: 1000 and 10000.
func WithLimits(defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

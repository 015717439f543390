// Package redis keeps chat sessions in Redis (or any RESP-compatible server) via rueidis.
package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/gaiachat/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultClientName  = "gaiachat"
	defaultDialTimeout = 5 * time.Second

	readyBackoffStart = 50 * time.Millisecond
	readyBackoffMax   = time.Second
)

// Config holds connection parameters for the session server.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	ClientName  string
	DialTimeout time.Duration
}

func (c Config) option() (rueidis.ClientOption, error) {
	if len(c.Addrs) == 0 {
		return rueidis.ClientOption{}, fmt.Errorf("addrs is required")
	}
	if c.DB < 0 {
		return rueidis.ClientOption{}, fmt.Errorf("db must not be negative, got %d", c.DB)
	}
	name := c.ClientName
	if name == "" {
		name = defaultClientName
	}
	dial := c.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	// Sessions are read once per request and rewritten right after, so
	// client-side caching would only serve stale history.
	return rueidis.ClientOption{
		InitAddress:  c.Addrs,
		Username:     c.Username,
		Password:     c.Password,
		SelectDB:     c.DB,
		ClientName:   name,
		Dialer:       net.Dialer{Timeout: dial},
		DisableCache: true,
	}, nil
}

// Store is the Redis-backed session store.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the configured servers.
func NewStore(cfg Config) (*Store, error) {
	opt, err := cfg.option()
	if err != nil {
		return nil, err
	}
	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("connect %v: %w", cfg.Addrs, err)
	}
	return newStore(client), nil
}

func newStore(c rueidis.Client) *Store {
	return &Store{client: c}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with doubling pauses until the server answers.
// On timeout the last ping failure is reported alongside the deadline.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pause := readyBackoffStart
	for {
		lastErr := s.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("session store not ready after %s: %w (last: %v)", timeout, ctx.Err(), lastErr)
		case <-time.After(pause):
		}
		pause = min(2*pause, readyBackoffMax)
	}
}

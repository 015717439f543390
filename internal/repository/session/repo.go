// Package session persists chat sessions in a key-value store as snappy-compressed JSON.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/gaiachat/internal/db"
	"github.com/kailas-cloud/gaiachat/internal/domain"
	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "gaiachat:session:"

// store is the consumer interface for session persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo stores sessions with a sliding TTL.
type Repo struct {
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
}

// New creates a session repository.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), may be nil.
func New(s store, prefix string, ttl time.Duration, cacheTotal *prometheus.CounterVec) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix, ttl: ttl, cacheTotal: cacheTotal}
}

// Get loads a session. Missing or expired sessions return domain.ErrSessionNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domsession.Session, error) {
	data, err := r.store.Get(ctx, r.prefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			r.inc("miss")
			return domsession.Session{}, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
		}
		return domsession.Session{}, fmt.Errorf("get session: %w", err)
	}
	r.inc("hit")

	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return domsession.Session{}, fmt.Errorf("decompress session: %w", err)
	}
	var s domsession.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return domsession.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// Save writes the session and refreshes its TTL.
func (r *Repo) Save(ctx context.Context, s domsession.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, r.prefix+s.ID, snappy.Encode(nil, raw), r.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.prefix+id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *Repo) inc(result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(result).Inc()
	}
}

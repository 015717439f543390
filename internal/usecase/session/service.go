package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
)

// Service manages chat sessions. Concurrent writes to one session are last-writer-wins.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// New creates a session service.
func New(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Create starts an empty session.
func (s *Service) Create(ctx context.Context) (domsession.Session, error) {
	now := s.now().UTC()
	sess := domsession.Session{ID: s.newID(), CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Save(ctx, sess); err != nil {
		return domsession.Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Get loads a session by id.
func (s *Service) Get(ctx context.Context, id string) (domsession.Session, error) {
	if err := validateID(id); err != nil {
		return domsession.Session{}, err
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return domsession.Session{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Save stores the session and stamps UpdatedAt.
func (s *Service) Save(ctx context.Context, sess domsession.Session) error {
	sess.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Reset deletes a session and its history.
func (s *Service) Reset(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// RecordResult stores r as the session's last result.
func (s *Service) RecordResult(ctx context.Context, id string, r result.Result, plotType string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Last = domsession.SnapshotOf(r, plotType)
	return s.Save(ctx, sess)
}

// LastResult returns the session's most recent result.
func (s *Service) LastResult(ctx context.Context, id string) (*domsession.Snapshot, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Last == nil {
		return nil, fmt.Errorf("session %q has no result: %w", id, domain.ErrNotFound)
	}
	return sess.Last, nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalidf("session id is required")
	}
	return nil
}

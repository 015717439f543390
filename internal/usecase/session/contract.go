package session

import (
	"context"

	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
)

// Repository defines the storage contract for sessions.
type Repository interface {
	Get(ctx context.Context, id string) (domsession.Session, error)
	Save(ctx context.Context, s domsession.Session) error
	Delete(ctx context.Context, id string) error
}

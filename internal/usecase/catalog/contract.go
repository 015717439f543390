package catalog

import (
	"context"

	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// Archive executes ADQL against the Gaia archive.
// Failures should be returned as *domain.ArchiveError; other errors are wrapped.
type Archive interface {
	Run(ctx context.Context, query string) (star.Table, error)
}

// Transformer attaches Galactocentric velocities to a table.
type Transformer interface {
	AddVelocities(t star.Table) star.Table
}

package gaiachat

import "github.com/kailas-cloud/gaiachat/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput      = domain.ErrInvalidInput
	ErrUnknownPopulation = domain.ErrUnknownPopulation
	ErrArchiveQuery      = domain.ErrArchiveQuery
	ErrUnsupportedPlot   = domain.ErrUnsupportedPlot
)

// ArchiveError carries the ADQL that the archive rejected.
type ArchiveError = domain.ArchiveError

package contract

import (
	"context"
	"errors"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrProgressConflict is returned by UpdateProgress when the stored progress
// version no longer matches the expected one, meaning another gated action
// committed in between.
var ErrProgressConflict = errors.New("progress version conflict")

type CaseRepository interface {
	Create(ctx context.Context, c *entity.Case) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateProgress writes the progress JSON with a compare-and-set on the
	// version column. The bundle columns are never touched by this path.
	UpdateProgress(ctx context.Context, id uuid.UUID, progress *entity.InvestigationProgress, expectedVersion int) error
}

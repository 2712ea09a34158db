package contract

import (
	"context"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FindingRepository interface {
	Create(ctx context.Context, f *entity.Finding) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Finding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// MarkViewedByCaseId clears the IsNew flag on every finding of a case.
	// The only in-place mutation findings ever receive.
	MarkViewedByCaseId(ctx context.Context, caseId uuid.UUID) error
}

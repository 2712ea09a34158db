package implementation

import (
	"context"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/mapper"
	"ai-casefile-be/internal/model"
	"ai-casefile-be/internal/repository/contract"
	"ai-casefile-be/internal/repository/scope"
	"ai-casefile-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FindingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FindingMapper
}

func NewFindingRepository(db *gorm.DB) contract.FindingRepository {
	return &FindingRepositoryImpl{
		db:     db,
		mapper: mapper.NewFindingMapper(),
	}
}

func (r *FindingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FindingRepositoryImpl) Create(ctx context.Context, f *entity.Finding) error {
	m := r.mapper.ToModel(f)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	f.CreatedAt = m.CreatedAt
	return nil
}

func (r *FindingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Finding, error) {
	var models []*model.Finding
	// Newest first so fresh findings land on top of the notes view.
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FindingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Finding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FindingRepositoryImpl) MarkViewedByCaseId(ctx context.Context, caseId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Finding{}).
		Where("case_id = ? AND is_new = true", caseId).
		Update("is_new", false).Error
}

package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/mapper"
	"ai-casefile-be/internal/model"
	"ai-casefile-be/internal/repository/contract"
	"ai-casefile-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CaseMapper
}

func NewCaseRepository(db *gorm.DB) contract.CaseRepository {
	return &CaseRepositoryImpl{
		db:     db,
		mapper: mapper.NewCaseMapper(),
	}
}

func (r *CaseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CaseRepositoryImpl) Create(ctx context.Context, c *entity.Case) error {
	m, err := r.mapper.ToModel(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	c.CreatedAt = m.CreatedAt
	return nil
}

func (r *CaseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Case{}, id).Error
}

func (r *CaseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error) {
	var m model.Case
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *CaseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error) {
	var models []*model.Case
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *CaseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Case{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CaseRepositoryImpl) UpdateProgress(ctx context.Context, id uuid.UUID, progress *entity.InvestigationProgress, expectedVersion int) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	// Optimistic CAS: only one of two racing writers can match the version.
	res := r.db.WithContext(ctx).Model(&model.Case{}).
		Where("id = ? AND progress_version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"progress":         payload,
			"progress_version": expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrProgressConflict
	}
	return nil
}

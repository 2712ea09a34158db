package mapper

import (
	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/model"
)

type FindingMapper struct{}

func NewFindingMapper() *FindingMapper {
	return &FindingMapper{}
}

func (m *FindingMapper) ToEntity(f *model.Finding) *entity.Finding {
	if f == nil {
		return nil
	}
	return &entity.Finding{
		Id:            f.Id,
		CaseId:        f.CaseId,
		Source:        entity.FindingSource(f.Source),
		SourceDetails: f.SourceDetails,
		Text:          f.Text,
		Importance:    entity.FindingImportance(f.Importance),
		IsNew:         f.IsNew,
		CreatedAt:     f.CreatedAt,
	}
}

func (m *FindingMapper) ToModel(f *entity.Finding) *model.Finding {
	if f == nil {
		return nil
	}
	return &model.Finding{
		Id:            f.Id,
		CaseId:        f.CaseId,
		Source:        string(f.Source),
		SourceDetails: f.SourceDetails,
		Text:          f.Text,
		Importance:    string(f.Importance),
		IsNew:         f.IsNew,
		CreatedAt:     f.CreatedAt,
	}
}

func (m *FindingMapper) ToEntities(models []*model.Finding) []*entity.Finding {
	entities := make([]*entity.Finding, 0, len(models))
	for _, f := range models {
		entities = append(entities, m.ToEntity(f))
	}
	return entities
}

package mapper

import (
	"encoding/json"
	"time"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/model"

	"gorm.io/datatypes"
)

type CaseMapper struct{}

func NewCaseMapper() *CaseMapper {
	return &CaseMapper{}
}

func (m *CaseMapper) ToEntity(c *model.Case) (*entity.Case, error) {
	if c == nil {
		return nil, nil
	}

	var clues []entity.Clue
	if err := json.Unmarshal(c.Clues, &clues); err != nil {
		return nil, err
	}

	var suspects []entity.Suspect
	if err := json.Unmarshal(c.Suspects, &suspects); err != nil {
		return nil, err
	}

	var locations []entity.Location
	if err := json.Unmarshal(c.Locations, &locations); err != nil {
		return nil, err
	}

	var tags []string
	if len(c.Tags) > 0 {
		if err := json.Unmarshal(c.Tags, &tags); err != nil {
			return nil, err
		}
	}

	progress := entity.NewInvestigationProgress()
	if len(c.Progress) > 0 {
		if err := json.Unmarshal(c.Progress, &progress); err != nil {
			return nil, err
		}
	}
	if progress.VisitedLocations == nil {
		progress.VisitedLocations = make(map[string]entity.VisitRecord)
	}
	if progress.InterrogatedSuspects == nil {
		progress.InterrogatedSuspects = make(map[string]entity.InterrogationRecord)
	}
	if progress.DiscoveredClues == nil {
		progress.DiscoveredClues = []string{}
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Case{
		Id:               c.Id,
		OwnerId:          c.OwnerId,
		Title:            c.Title,
		Difficulty:       entity.Difficulty(c.Difficulty),
		Status:           entity.CaseStatus(c.Status),
		Story:            c.Story,
		EnhancedStory:    c.EnhancedStory,
		Intro:            c.Intro,
		Clues:            clues,
		Suspects:         suspects,
		Locations:        locations,
		MapImageURL:      c.MapImageURL,
		EstimatedMinutes: c.EstimatedMinutes,
		Tags:             tags,
		Progress:         progress,
		ProgressVersion:  c.ProgressVersion,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
	}, nil
}

func (m *CaseMapper) ToModel(c *entity.Case) (*model.Case, error) {
	if c == nil {
		return nil, nil
	}

	clues, err := json.Marshal(c.Clues)
	if err != nil {
		return nil, err
	}
	suspects, err := json.Marshal(c.Suspects)
	if err != nil {
		return nil, err
	}
	locations, err := json.Marshal(c.Locations)
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return nil, err
	}
	progress, err := json.Marshal(c.Progress)
	if err != nil {
		return nil, err
	}

	return &model.Case{
		Id:               c.Id,
		OwnerId:          c.OwnerId,
		Title:            c.Title,
		Difficulty:       string(c.Difficulty),
		Status:           string(c.Status),
		Story:            c.Story,
		EnhancedStory:    c.EnhancedStory,
		Intro:            c.Intro,
		Clues:            datatypes.JSON(clues),
		Suspects:         datatypes.JSON(suspects),
		Locations:        datatypes.JSON(locations),
		MapImageURL:      c.MapImageURL,
		EstimatedMinutes: c.EstimatedMinutes,
		Tags:             datatypes.JSON(tags),
		Progress:         datatypes.JSON(progress),
		ProgressVersion:  c.ProgressVersion,
		CreatedAt:        c.CreatedAt,
	}, nil
}

func (m *CaseMapper) ToEntities(models []*model.Case) ([]*entity.Case, error) {
	entities := make([]*entity.Case, 0, len(models))
	for _, c := range models {
		e, err := m.ToEntity(c)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-casefile-be/internal/dto"
	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/pkg/apperror"
	"ai-casefile-be/internal/pkg/gameclock"
	"ai-casefile-be/internal/repository/memory"
	"ai-casefile-be/internal/repository/specification"
	"ai-casefile-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ICaseService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCaseRequest) (*dto.CreateCaseResponse, error)
	GetOperation(ctx context.Context, operationId string) (*dto.OperationStatusResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowCaseResponse, error)
	List(ctx context.Context, userId uuid.UUID, status string) ([]*dto.CaseSummaryResponse, error)
}

type caseService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	registry         *memory.OperationRegistry
	caseCache        *memory.CaseCache
	clock            gameclock.Clock
}

func NewCaseService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	registry *memory.OperationRegistry,
	caseCache *memory.CaseCache,
	clock gameclock.Clock,
) ICaseService {
	return &caseService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		registry:         registry,
		caseCache:        caseCache,
		clock:            clock,
	}
}

// Create accepts the job and returns immediately: the heavy lifting happens
// on the consumer side, the caller polls GetOperation until terminal.
func (c *caseService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCaseRequest) (*dto.CreateCaseResponse, error) {
	operationId := c.registry.Register(entity.OperationKindCaseGeneration)

	msgPayload := dto.GenerateCaseMessage{
		OperationId: operationId,
		OwnerId:     userId,
		Difficulty:  req.Difficulty,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		c.registry.MarkFailed(operationId, "failed to encode generation request")
		return nil, err
	}

	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		// The job never made it onto the queue, so the operation would stay
		// queued forever. Fail it now.
		c.registry.MarkFailed(operationId, "failed to enqueue generation job")
		return nil, err
	}

	return &dto.CreateCaseResponse{
		OperationId: operationId,
	}, nil
}

func (c *caseService) GetOperation(ctx context.Context, operationId string) (*dto.OperationStatusResponse, error) {
	op, ok := c.registry.Get(operationId)
	if !ok {
		return nil, apperror.UnknownOperation(operationId)
	}

	res := dto.OperationStatusResponse{
		Id:              op.Id,
		Kind:            string(op.Kind),
		Status:          string(op.Status),
		ProgressPercent: op.ProgressPercent,
		Message:         op.StatusMessage,
		StartedAt:       op.StartedAt,
		CompletedAt:     op.CompletedAt,
		Error:           op.Error,
	}
	if op.Result != nil {
		res.Result = &dto.OperationResultPayload{
			CaseId:   op.Result.CaseId,
			Warnings: op.Result.Warnings,
		}
	}

	return &res, nil
}

func (c *caseService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowCaseResponse, error) {
	found, ok := c.caseCache.Get(id)
	if !ok {
		uow := c.uowFactory.NewUnitOfWork(ctx)
		var err error
		found, err = uow.CaseRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, err
		}
		if found != nil {
			c.caseCache.Save(found)
		}
	}
	if found == nil || found.OwnerId != userId {
		return nil, apperror.NotFound("case")
	}

	suspects := make([]dto.SuspectSummary, 0, len(found.Suspects))
	for _, s := range found.Suspects {
		suspects = append(suspects, dto.SuspectSummary{
			Id:          s.Id,
			Name:        s.Name,
			Description: s.Description,
		})
	}

	return &dto.ShowCaseResponse{
		Id:               found.Id,
		Title:            found.Title,
		Difficulty:       string(found.Difficulty),
		Status:           string(found.Status),
		Intro:            found.Intro,
		Story:            found.EnhancedStory,
		Locations:        found.Locations,
		Suspects:         suspects,
		MapImageURL:      found.MapImageURL,
		EstimatedMinutes: found.EstimatedMinutes,
		Tags:             found.Tags,
		Progress:         toProgressResponse(found.Progress, currentDay(found.CreatedAt, c.clock.Now())),
		CreatedAt:        found.CreatedAt,
	}, nil
}

func (c *caseService) List(ctx context.Context, userId uuid.UUID, status string) ([]*dto.CaseSummaryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OwnedBy{OwnerID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}

	cases, err := uow.CaseRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	response := make([]*dto.CaseSummaryResponse, 0, len(cases))
	for _, cs := range cases {
		response = append(response, &dto.CaseSummaryResponse{
			Id:               cs.Id,
			Title:            cs.Title,
			Difficulty:       string(cs.Difficulty),
			Status:           string(cs.Status),
			EstimatedMinutes: cs.EstimatedMinutes,
			Tags:             cs.Tags,
			CurrentDay:       currentDay(cs.CreatedAt, now),
			CreatedAt:        cs.CreatedAt,
		})
	}

	return response, nil
}

// currentDay is 1 on the case's first local calendar day and advances at
// every local midnight, never stored authoritatively.
func currentDay(createdAt, now time.Time) int {
	return gameclock.DaysSince(createdAt, now) + 1
}

func toProgressResponse(p entity.InvestigationProgress, day int) dto.ProgressResponse {
	return dto.ProgressResponse{
		VisitedLocations:     p.VisitedLocations,
		InterrogatedSuspects: p.InterrogatedSuspects,
		DiscoveredClues:      p.DiscoveredClues,
		CurrentDay:           day,
	}
}

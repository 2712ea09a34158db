package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-casefile-be/internal/constant"
	"ai-casefile-be/internal/dto"
	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/pkg/apperror"
	"ai-casefile-be/internal/pkg/logger"
	"ai-casefile-be/internal/pkg/mailer"
	"ai-casefile-be/internal/repository/memory"
	"ai-casefile-be/internal/repository/specification"
	"ai-casefile-be/internal/repository/unitofwork"
	"ai-casefile-be/pkg/events"
	"ai-casefile-be/pkg/imagen"
	"ai-casefile-be/pkg/llm"
	pktNats "ai-casefile-be/pkg/nats"
	"ai-casefile-be/pkg/uploader"

	"github.com/google/uuid"
)

var errNoLocations = errors.New("no locations produced")

type IPipelineService interface {
	// Run executes one full case generation job. It never returns an error:
	// every outcome ends as exactly one terminal transition on the operation.
	Run(ctx context.Context, msg *dto.GenerateCaseMessage)
}

type pipelineService struct {
	uowFactory     unitofwork.RepositoryFactory
	registry       *memory.OperationRegistry
	llmProvider    llm.LLMProvider
	imageProvider  imagen.ImageProvider
	uploadService  uploader.Uploader
	eventPublisher *pktNats.Publisher
	emailService   mailer.IEmailService
	logger         logger.ILogger
}

func NewPipelineService(
	uowFactory unitofwork.RepositoryFactory,
	registry *memory.OperationRegistry,
	llmProvider llm.LLMProvider,
	imageProvider imagen.ImageProvider,
	uploadService uploader.Uploader,
	eventPublisher *pktNats.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IPipelineService {
	return &pipelineService{
		uowFactory:     uowFactory,
		registry:       registry,
		llmProvider:    llmProvider,
		imageProvider:  imageProvider,
		uploadService:  uploadService,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		logger:         log,
	}
}

// clueExtraction mirrors the JSON shape the clue extraction prompt demands.
type clueExtraction struct {
	Clues    []entity.Clue    `json:"clues"`
	Suspects []entity.Suspect `json:"suspects"`
}

// mapPlan mirrors the JSON shape the map generation prompt demands.
type mapPlan struct {
	Title     string            `json:"title"`
	Locations []entity.Location `json:"locations"`
}

func (p *pipelineService) Run(ctx context.Context, msg *dto.GenerateCaseMessage) {
	opId := msg.OperationId
	caseId := uuid.New()

	p.logger.Info("pipeline", "case generation started", map[string]interface{}{
		"operation_id": opId,
		"case_id":      caseId.String(),
		"difficulty":   msg.Difficulty,
	})

	// Step 1: base narrative.
	p.registry.MarkProcessing(opId, 10, "writing the base narrative")
	story, err := p.llmProvider.Generate(ctx, fmt.Sprintf(constant.StoryPrompt, msg.Difficulty))
	if err != nil {
		p.fail(ctx, msg, apperror.UpstreamGeneration("story", err))
		return
	}

	// Step 2: clue-trigger rewrite. Must finish before clue extraction,
	// which reads the trigger sentences.
	p.registry.MarkProcessing(opId, 25, "weaving clue triggers into the narrative")
	enhanced, err := p.llmProvider.Generate(ctx, fmt.Sprintf(constant.EnhanceStoryPrompt, story))
	if err != nil {
		p.fail(ctx, msg, apperror.UpstreamGeneration("story enhancement", err))
		return
	}

	// Step 3: intro, clue set and map topology are independent of each
	// other, all three consume the enhanced story.
	p.registry.MarkProcessing(opId, 40, "extracting investigation structure")

	var (
		wg         sync.WaitGroup
		intro      string
		extraction clueExtraction
		plan       mapPlan
		introErr   error
		clueErr    error
		mapErr     error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		intro, introErr = p.llmProvider.Generate(ctx, fmt.Sprintf(constant.IntroPrompt, enhanced))
	}()
	go func() {
		defer wg.Done()
		raw, err := p.llmProvider.Generate(ctx, fmt.Sprintf(constant.ClueExtractionPrompt, enhanced))
		if err != nil {
			clueErr = err
			return
		}
		clueErr = json.Unmarshal([]byte(stripFences(raw)), &extraction)
	}()
	go func() {
		defer wg.Done()
		raw, err := p.llmProvider.Generate(ctx, fmt.Sprintf(constant.MapGenerationPrompt, enhanced))
		if err != nil {
			mapErr = err
			return
		}
		mapErr = json.Unmarshal([]byte(stripFences(raw)), &plan)
	}()
	wg.Wait()

	switch {
	case introErr != nil:
		p.fail(ctx, msg, apperror.UpstreamGeneration("intro", introErr))
		return
	case clueErr != nil:
		p.fail(ctx, msg, apperror.UpstreamGeneration("clue extraction", clueErr))
		return
	case mapErr != nil:
		p.fail(ctx, msg, apperror.UpstreamGeneration("map generation", mapErr))
		return
	case len(plan.Locations) == 0:
		p.fail(ctx, msg, apperror.UpstreamGeneration("map generation", errNoLocations))
		return
	}

	var (
		warnings  []string
		uploadIds []string
		assetMu   sync.Mutex
	)

	// Step 4: one scene image per location, concurrently. Each location is
	// isolated: a failure leaves that location without an image and records
	// a warning, nothing more.
	p.registry.MarkProcessing(opId, 60, "illustrating crime scenes")

	var imgWg sync.WaitGroup
	for i := range plan.Locations {
		imgWg.Add(1)
		go func(loc *entity.Location) {
			defer imgWg.Done()

			url, assetId, err := p.generateAndUpload(ctx,
				fmt.Sprintf(constant.LocationImagePrompt, loc.Name, loc.Description),
				fmt.Sprintf("%s.png", loc.Id),
				caseId.String(),
			)

			assetMu.Lock()
			defer assetMu.Unlock()
			if err != nil {
				p.logger.Warn("pipeline", "location image degraded", map[string]interface{}{
					"operation_id": opId,
					"location_id":  loc.Id,
					"error":        err.Error(),
				})
				warnings = append(warnings, fmt.Sprintf("no image for location %s: %v", loc.Id, err))
				return
			}
			loc.ImageURL = &url
			uploadIds = append(uploadIds, assetId)
		}(&plan.Locations[i])
	}
	imgWg.Wait()

	// Step 5: map overview image, same degradation policy.
	p.registry.MarkProcessing(opId, 80, "drawing the case map")

	var mapImageURL *string
	locationNames := make([]string, 0, len(plan.Locations))
	for _, loc := range plan.Locations {
		locationNames = append(locationNames, loc.Name)
	}
	url, assetId, err := p.generateAndUpload(ctx,
		fmt.Sprintf(constant.MapImagePrompt, strings.Join(locationNames, ", ")),
		"map.png",
		caseId.String(),
	)
	if err != nil {
		p.logger.Warn("pipeline", "map image degraded", map[string]interface{}{
			"operation_id": opId,
			"error":        err.Error(),
		})
		warnings = append(warnings, fmt.Sprintf("no map image: %v", err))
	} else {
		mapImageURL = &url
		uploadIds = append(uploadIds, assetId)
	}

	// Step 6: derived metadata. Tag generation is a nicety, it falls back
	// to defaults instead of warning.
	p.registry.MarkProcessing(opId, 90, "computing case metadata")

	tags := p.generateTags(ctx, enhanced)
	estimated := estimateMinutes(entity.Difficulty(msg.Difficulty), len(extraction.Clues), len(extraction.Suspects))

	// Step 7: the single durable write. The only failure the pipeline does
	// not tolerate after generation succeeded: no partial bundle is ever
	// persisted, so a failure here loses the content and the caller retries
	// the whole pipeline.
	p.registry.MarkProcessing(opId, 95, "persisting case")

	progress := entity.NewInvestigationProgress()
	progress.CurrentDay = 1

	newCase := &entity.Case{
		Id:               caseId,
		OwnerId:          msg.OwnerId,
		Title:            plan.Title,
		Difficulty:       entity.Difficulty(msg.Difficulty),
		Status:           entity.CaseStatusActive,
		Story:            story,
		EnhancedStory:    enhanced,
		Intro:            intro,
		Clues:            extraction.Clues,
		Suspects:         extraction.Suspects,
		Locations:        plan.Locations,
		MapImageURL:      mapImageURL,
		EstimatedMinutes: estimated,
		Tags:             tags,
		Progress:         progress,
		CreatedAt:        time.Now(),
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CaseRepository().Create(ctx, newCase); err != nil {
		p.cleanupAssets(ctx, uploadIds)
		p.fail(ctx, msg, apperror.Persistence("case bundle write", err))
		return
	}

	p.registry.MarkCompleted(opId, entity.OperationResult{
		CaseId:   caseId,
		Warnings: warnings,
	})

	p.logger.Info("pipeline", "case generation completed", map[string]interface{}{
		"operation_id": opId,
		"case_id":      caseId.String(),
		"warnings":     len(warnings),
	})

	if p.eventPublisher != nil {
		evt := events.NewCaseReadyEvent(msg.OwnerId, caseId, newCase.Title)
		if err := p.eventPublisher.Publish(ctx, evt); err != nil {
			p.logger.Warn("pipeline", "failed to publish CASE_READY event", map[string]interface{}{
				"operation_id": opId,
				"error":        err.Error(),
			})
		}
	}

	if email := p.ownerEmail(ctx, msg.OwnerId); email != "" {
		// Email delivery is auxiliary, fire and forget.
		go func() {
			_ = p.emailService.SendCaseReady(email, newCase.Title, caseId.String())
		}()
	}
}

// fail records the single terminal failure transition and notifies the owner.
func (p *pipelineService) fail(ctx context.Context, msg *dto.GenerateCaseMessage, err error) {
	p.logger.Error("pipeline", "case generation failed", map[string]interface{}{
		"operation_id": msg.OperationId,
		"error":        err.Error(),
	})
	p.registry.MarkFailed(msg.OperationId, err.Error())

	if p.eventPublisher != nil {
		evt := events.NewCaseFailedEvent(msg.OwnerId, msg.OperationId, err.Error())
		if pubErr := p.eventPublisher.Publish(ctx, evt); pubErr != nil {
			p.logger.Warn("pipeline", "failed to publish CASE_FAILED event", map[string]interface{}{
				"operation_id": msg.OperationId,
				"error":        pubErr.Error(),
			})
		}
	}

	if email := p.ownerEmail(ctx, msg.OwnerId); email != "" {
		reason := err.Error()
		go func() {
			_ = p.emailService.SendCaseFailed(email, reason)
		}()
	}
}

// ownerEmail resolves the case owner's address for notification mail.
func (p *pipelineService) ownerEmail(ctx context.Context, ownerId uuid.UUID) string {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: ownerId})
	if err != nil || user == nil {
		return ""
	}
	return user.Email
}

// generateAndUpload renders one image and stores it under the case folder.
func (p *pipelineService) generateAndUpload(ctx context.Context, prompt, name, folder string) (string, string, error) {
	data, err := p.imageProvider.Generate(ctx, prompt)
	if err != nil {
		return "", "", err
	}
	res, err := p.uploadService.Upload(ctx, data, name, folder)
	if err != nil {
		return "", "", err
	}
	return res.URL, res.ID, nil
}

// cleanupAssets best-effort removes images uploaded for a case whose bundle
// write failed, so failed runs do not leave orphans behind.
func (p *pipelineService) cleanupAssets(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := p.uploadService.Remove(ctx, id); err != nil {
			p.logger.Warn("pipeline", "orphan asset cleanup failed", map[string]interface{}{
				"asset_id": id,
				"error":    err.Error(),
			})
		}
	}
}

func (p *pipelineService) generateTags(ctx context.Context, story string) []string {
	raw, err := p.llmProvider.Generate(ctx, fmt.Sprintf(constant.TagsPrompt, story))
	if err != nil {
		return constant.DefaultCaseTags
	}
	var tags []string
	if err := json.Unmarshal([]byte(stripFences(raw)), &tags); err != nil || len(tags) == 0 {
		return constant.DefaultCaseTags
	}
	return tags
}

// estimateMinutes derives a rough play time from the case's size.
func estimateMinutes(difficulty entity.Difficulty, clueCount, suspectCount int) int {
	factor := 2
	switch difficulty {
	case entity.DifficultyMedium:
		factor = 3
	case entity.DifficultyHard:
		factor = 4
	}
	minutes := factor * clueCount * suspectCount
	if minutes < 15 {
		minutes = 15
	}
	return minutes
}

// stripFences removes a surrounding markdown code fence if the model wrapped
// its JSON answer in one despite the prompt.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

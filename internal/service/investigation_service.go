package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ai-casefile-be/internal/constant"
	"ai-casefile-be/internal/dto"
	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/pkg/apperror"
	"ai-casefile-be/internal/pkg/gameclock"
	"ai-casefile-be/internal/repository/memory"
	"ai-casefile-be/internal/repository/specification"
	"ai-casefile-be/internal/repository/unitofwork"
	"ai-casefile-be/pkg/events"
	"ai-casefile-be/pkg/llm"
	pktNats "ai-casefile-be/pkg/nats"

	"github.com/google/uuid"
)

type IInvestigationService interface {
	VisitLocation(ctx context.Context, userId, caseId uuid.UUID, req *dto.VisitLocationRequest) (*dto.VisitLocationResponse, error)
	Interrogate(ctx context.Context, userId, caseId uuid.UUID, req *dto.InterrogateRequest) (*dto.InterrogateResponse, error)
	DiscoverClue(ctx context.Context, userId, caseId uuid.UUID, clueId string) (*dto.DiscoverClueResponse, error)
	GetProgress(ctx context.Context, userId, caseId uuid.UUID) (*dto.ProgressResponse, error)
	ListFindings(ctx context.Context, userId, caseId uuid.UUID) (*dto.ListFindingsResponse, error)
}

type investigationService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	caseCache      *memory.CaseCache
	eventPublisher *pktNats.Publisher
	clock          gameclock.Clock

	// caseLocks serializes gated actions per case so the daily-gate check
	// and the progress write form one critical section. The version CAS on
	// the progress column still backstops writers outside this process.
	caseLocks sync.Map
}

func NewInvestigationService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	caseCache *memory.CaseCache,
	eventPublisher *pktNats.Publisher,
	clock gameclock.Clock,
) IInvestigationService {
	return &investigationService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		caseCache:      caseCache,
		eventPublisher: eventPublisher,
		clock:          clock,
	}
}

func (s *investigationService) lockCase(caseId uuid.UUID) *sync.Mutex {
	mu, _ := s.caseLocks.LoadOrStore(caseId, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// loadOwnedCase fetches the case fresh from storage. Gated actions never
// read through the cache: the gate must be checked against the last
// committed progress, not a stale snapshot.
func (s *investigationService) loadOwnedCase(ctx context.Context, uow unitofwork.UnitOfWork, userId, caseId uuid.UUID) (*entity.Case, error) {
	found, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: caseId})
	if err != nil {
		return nil, err
	}
	if found == nil || found.OwnerId != userId {
		return nil, apperror.NotFound("case")
	}
	return found, nil
}

func (s *investigationService) VisitLocation(ctx context.Context, userId, caseId uuid.UUID, req *dto.VisitLocationRequest) (*dto.VisitLocationResponse, error) {
	mu := s.lockCase(caseId)
	mu.Lock()
	defer mu.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := s.loadOwnedCase(ctx, uow, userId, caseId)
	if err != nil {
		return nil, err
	}

	location := findLocation(found.Locations, req.LocationId)
	if location == nil {
		return nil, apperror.NotFound("location")
	}

	now := s.clock.Now()
	today := gameclock.DateKey(now)
	if rec, ok := found.Progress.VisitedLocations[location.Id]; ok && rec.LastVisitDate == today {
		return nil, apperror.CooldownActive(fmt.Sprintf("location %s", location.Id))
	}

	narration, err := s.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.LocationVisitPrompt, location.Name, location.Description, found.EnhancedStory))
	if err != nil {
		// No mutation happened yet, the visit stays available.
		return nil, apperror.UpstreamGeneration("visit narration", err)
	}

	progress := found.Progress
	progress.VisitedLocations[location.Id] = entity.VisitRecord{
		VisitedAtUTC:  now.UTC(),
		LastVisitDate: today,
	}
	progress.CurrentDay = currentDay(found.CreatedAt, now)

	// A first visit to a clue-anchored location surfaces that clue.
	var finding *entity.Finding
	if clue := firstUndiscoveredClueAt(found, location.Id); clue != nil {
		progress.DiscoveredClues = append(progress.DiscoveredClues, clue.Id)
		finding = &entity.Finding{
			Id:            uuid.New(),
			CaseId:        found.Id,
			Source:        entity.FindingSourceLocationVisit,
			SourceDetails: location.Name,
			Text:          fmt.Sprintf("%s: %s", clue.Title, clue.Description),
			Importance:    entity.FindingImportance(clue.Importance),
			IsNew:         true,
			CreatedAt:     now,
		}
	}

	if err := s.commitAction(ctx, uow, found, &progress, finding); err != nil {
		return nil, err
	}

	res := dto.VisitLocationResponse{
		Narration: narration,
		Progress:  toProgressResponse(progress, progress.CurrentDay),
	}
	if finding != nil {
		res.Finding = toFindingResponse(finding)
		s.publishFindingAdded(ctx, userId, finding)
	}

	return &res, nil
}

func (s *investigationService) Interrogate(ctx context.Context, userId, caseId uuid.UUID, req *dto.InterrogateRequest) (*dto.InterrogateResponse, error) {
	mu := s.lockCase(caseId)
	mu.Lock()
	defer mu.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := s.loadOwnedCase(ctx, uow, userId, caseId)
	if err != nil {
		return nil, err
	}

	suspect := findSuspect(found.Suspects, req.SuspectId)
	if suspect == nil {
		return nil, apperror.NotFound("suspect")
	}

	now := s.clock.Now()
	today := gameclock.DateKey(now)
	if rec, ok := found.Progress.InterrogatedSuspects[suspect.Id]; ok && rec.LastInterrogationDate == today {
		return nil, apperror.CooldownActive(fmt.Sprintf("suspect %s", suspect.Id))
	}

	responses, err := s.runInterrogation(ctx, found, suspect, req.Questions)
	if err != nil {
		return nil, apperror.UpstreamGeneration("interrogation", err)
	}

	progress := found.Progress
	progress.InterrogatedSuspects[suspect.Id] = entity.InterrogationRecord{
		InterrogatedAtUTC:     now.UTC(),
		LastInterrogationDate: today,
		QuestionsAsked:        req.Questions,
		Responses:             responses,
	}
	progress.CurrentDay = currentDay(found.CreatedAt, now)

	finding := &entity.Finding{
		Id:            uuid.New(),
		CaseId:        found.Id,
		Source:        entity.FindingSourceInterrogation,
		SourceDetails: suspect.Name,
		Text:          strings.Join(responses, "\n"),
		Importance:    entity.FindingImportanceImportant,
		IsNew:         true,
		CreatedAt:     now,
	}

	if err := s.commitAction(ctx, uow, found, &progress, finding); err != nil {
		return nil, err
	}
	s.publishFindingAdded(ctx, userId, finding)

	return &dto.InterrogateResponse{
		SuspectName: suspect.Name,
		Questions:   req.Questions,
		Responses:   responses,
		Progress:    toProgressResponse(progress, progress.CurrentDay),
	}, nil
}

// runInterrogation asks the questions one by one, feeding earlier answers
// back as history so the suspect stays consistent within the session.
func (s *investigationService) runInterrogation(ctx context.Context, c *entity.Case, suspect *entity.Suspect, questions []string) ([]string, error) {
	history := []llm.Message{
		{
			Role:    "system",
			Content: fmt.Sprintf(constant.InterrogationSystemPrompt, suspect.Name, suspect.Description, suspect.Alibi, c.EnhancedStory),
		},
	}

	responses := make([]string, 0, len(questions))
	for _, question := range questions {
		history = append(history, llm.Message{Role: "user", Content: question})
		answer, err := s.llmProvider.Chat(ctx, history)
		if err != nil {
			return nil, err
		}
		history = append(history, llm.Message{Role: "assistant", Content: answer})
		responses = append(responses, answer)
	}

	return responses, nil
}

// DiscoverClue marks a clue as found. Discovery is not day-gated and is
// idempotent: rediscovering a known clue returns the current progress.
func (s *investigationService) DiscoverClue(ctx context.Context, userId, caseId uuid.UUID, clueId string) (*dto.DiscoverClueResponse, error) {
	mu := s.lockCase(caseId)
	mu.Lock()
	defer mu.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := s.loadOwnedCase(ctx, uow, userId, caseId)
	if err != nil {
		return nil, err
	}

	clue := findClue(found.Clues, clueId)
	if clue == nil {
		return nil, apperror.NotFound("clue")
	}

	now := s.clock.Now()
	progress := found.Progress
	progress.CurrentDay = currentDay(found.CreatedAt, now)

	if !progress.HasDiscoveredClue(clue.Id) {
		progress.DiscoveredClues = append(progress.DiscoveredClues, clue.Id)
		finding := &entity.Finding{
			Id:            uuid.New(),
			CaseId:        found.Id,
			Source:        entity.FindingSourceClueDiscovery,
			SourceDetails: clue.Title,
			Text:          clue.Description,
			Importance:    entity.FindingImportance(clue.Importance),
			IsNew:         true,
			CreatedAt:     now,
		}
		if err := s.commitAction(ctx, uow, found, &progress, finding); err != nil {
			return nil, err
		}
		s.publishFindingAdded(ctx, userId, finding)
	}

	return &dto.DiscoverClueResponse{
		Clue:     *clue,
		Progress: toProgressResponse(progress, progress.CurrentDay),
	}, nil
}

func (s *investigationService) GetProgress(ctx context.Context, userId, caseId uuid.UUID) (*dto.ProgressResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := s.loadOwnedCase(ctx, uow, userId, caseId)
	if err != nil {
		return nil, err
	}

	res := toProgressResponse(found.Progress, currentDay(found.CreatedAt, s.clock.Now()))
	return &res, nil
}

// ListFindings returns the case notes, newest first, and clears their IsNew
// flag: reading the notes is what consumes the "new" marker.
func (s *investigationService) ListFindings(ctx context.Context, userId, caseId uuid.UUID) (*dto.ListFindingsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.loadOwnedCase(ctx, uow, userId, caseId); err != nil {
		return nil, err
	}

	newCount, err := uow.FindingRepository().Count(ctx,
		specification.ByCaseID{CaseID: caseId},
		specification.NewOnly{},
	)
	if err != nil {
		return nil, err
	}

	findings, err := uow.FindingRepository().FindAll(ctx,
		specification.ByCaseID{CaseID: caseId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	if newCount > 0 {
		if err := uow.FindingRepository().MarkViewedByCaseId(ctx, caseId); err != nil {
			return nil, err
		}
	}

	response := dto.ListFindingsResponse{
		Findings: make([]dto.FindingResponse, 0, len(findings)),
		NewCount: newCount,
	}
	for _, f := range findings {
		response.Findings = append(response.Findings, *toFindingResponse(f))
	}

	return &response, nil
}

// commitAction writes the finding (if any) and the progress record in one
// transaction. The progress write is a compare-and-set on the version the
// case was loaded with; a conflict means something else committed since the
// load, which the per-case lock makes impossible in-process, so it is
// surfaced rather than retried.
func (s *investigationService) commitAction(ctx context.Context, uow unitofwork.UnitOfWork, c *entity.Case, progress *entity.InvestigationProgress, finding *entity.Finding) error {
	if err := uow.Begin(ctx); err != nil {
		return apperror.Persistence("failed to begin transaction", err)
	}
	defer uow.Rollback()

	if finding != nil {
		if err := uow.FindingRepository().Create(ctx, finding); err != nil {
			return apperror.Persistence("failed to append finding", err)
		}
	}

	if err := uow.CaseRepository().UpdateProgress(ctx, c.Id, progress, c.ProgressVersion); err != nil {
		return apperror.Persistence("failed to update progress", err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Persistence("failed to commit progress update", err)
	}

	s.caseCache.Invalidate(c.Id)
	return nil
}

func (s *investigationService) publishFindingAdded(ctx context.Context, userId uuid.UUID, finding *entity.Finding) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewFindingAddedEvent(userId, finding.CaseId, string(finding.Source), string(finding.Importance))
	// Notification delivery is auxiliary, a publish failure never fails the action.
	_ = s.eventPublisher.Publish(ctx, evt)
}

func findLocation(locations []entity.Location, id string) *entity.Location {
	for i := range locations {
		if locations[i].Id == id {
			return &locations[i]
		}
	}
	return nil
}

func findSuspect(suspects []entity.Suspect, id string) *entity.Suspect {
	for i := range suspects {
		if suspects[i].Id == id {
			return &suspects[i]
		}
	}
	return nil
}

func findClue(clues []entity.Clue, id string) *entity.Clue {
	for i := range clues {
		if clues[i].Id == id {
			return &clues[i]
		}
	}
	return nil
}

func firstUndiscoveredClueAt(c *entity.Case, locationId string) *entity.Clue {
	for i := range c.Clues {
		if c.Clues[i].LocationId == locationId && !c.Progress.HasDiscoveredClue(c.Clues[i].Id) {
			return &c.Clues[i]
		}
	}
	return nil
}

func toFindingResponse(f *entity.Finding) *dto.FindingResponse {
	return &dto.FindingResponse{
		Id:            f.Id,
		Source:        string(f.Source),
		SourceDetails: f.SourceDetails,
		Text:          f.Text,
		Importance:    string(f.Importance),
		IsNew:         f.IsNew,
		CreatedAt:     f.CreatedAt,
	}
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-casefile-be/internal/dto"
	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/pkg/apperror"
	"ai-casefile-be/internal/pkg/gameclock"
	"ai-casefile-be/internal/repository/memory"
	"ai-casefile-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type investigationFixture struct {
	factory *fakeUowFactory
	llm     *fakeLLM
	clock   *stubClock
	svc     IInvestigationService
	userId  uuid.UUID
	caseId  uuid.UUID
}

// newInvestigationFixture seeds one active case created at 09:00 on
// 2024-03-01 in the investigation zone, with the clock an hour later.
func newInvestigationFixture(t *testing.T) *investigationFixture {
	t.Helper()

	userId := uuid.New()
	caseId := uuid.New()
	createdAt := time.Date(2024, 3, 1, 9, 0, 0, 0, gameclock.InvestigationZone)

	seeded := &entity.Case{
		Id:            caseId,
		OwnerId:       userId,
		Title:         "The Harrow House Affair",
		Difficulty:    entity.DifficultyMedium,
		Status:        entity.CaseStatusActive,
		EnhancedStory: "A body was found in Harrow House, a torn letter beside it.",
		Clues: []entity.Clue{
			{Id: "clue-1", Title: "Torn letter", Description: "Half a threat, half an apology.", LocationId: "loc-1", Importance: entity.ClueImportanceCritical},
			{Id: "clue-2", Title: "Muddy boots", Description: "Fresh river mud on the back porch.", Importance: entity.ClueImportanceImportant},
		},
		Suspects: []entity.Suspect{
			{Id: "sus-1", Name: "Edgar Voss", Description: "The estranged business partner.", Alibi: "At the club all night.", Motive: "A buyout gone sour."},
		},
		Locations: []entity.Location{
			{Id: "loc-1", Name: "Harrow House", Description: "A crumbling estate on the hill."},
			{Id: "loc-2", Name: "Riverside Dock", Description: "Fog-bound mooring at the town's edge."},
		},
		Progress:  entity.NewInvestigationProgress(),
		CreatedAt: createdAt,
	}
	seeded.Progress.CurrentDay = 1

	factory := newFakeUowFactory()
	assert.NoError(t, factory.uow.caseRepo.Create(context.Background(), seeded))

	clock := &stubClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, gameclock.InvestigationZone)}
	llmFake := &fakeLLM{
		generate: func(prompt string) (string, error) {
			return "You step inside. The air smells of dust and old secrets.", nil
		},
		chat: func(history []llm.Message) (string, error) {
			return "I told you, I was at the club.", nil
		},
	}

	svc := NewInvestigationService(factory, llmFake, memory.NewCaseCache(), nil, clock)

	return &investigationFixture{
		factory: factory,
		llm:     llmFake,
		clock:   clock,
		svc:     svc,
		userId:  userId,
		caseId:  caseId,
	}
}

func (f *investigationFixture) storedCase(t *testing.T) *entity.Case {
	t.Helper()
	stored, err := f.factory.uow.caseRepo.FindOne(context.Background(), byID(f.caseId))
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	return stored
}

func TestVisitLocationRecordsVisitAndSurfacesAnchoredClue(t *testing.T) {
	f := newInvestigationFixture(t)

	res, err := f.svc.VisitLocation(context.Background(), f.userId, f.caseId, &dto.VisitLocationRequest{LocationId: "loc-1"})
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Narration)
	if assert.NotNil(t, res.Finding) {
		assert.Equal(t, string(entity.FindingSourceLocationVisit), res.Finding.Source)
		assert.Equal(t, "Harrow House", res.Finding.SourceDetails)
		assert.True(t, res.Finding.IsNew)
	}
	assert.Contains(t, res.Progress.DiscoveredClues, "clue-1")

	stored := f.storedCase(t)
	rec, ok := stored.Progress.VisitedLocations["loc-1"]
	assert.True(t, ok)
	assert.Equal(t, "2024-03-01", rec.LastVisitDate)
	assert.Equal(t, 1, stored.ProgressVersion)
}

func TestVisitLocationOncePerLocalDay(t *testing.T) {
	f := newInvestigationFixture(t)
	ctx := context.Background()
	req := &dto.VisitLocationRequest{LocationId: "loc-2"}

	_, err := f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
	assert.NoError(t, err)

	_, err = f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
	assert.Equal(t, apperror.KindCooldownActive, apperror.KindOf(err))

	// Five past midnight, next local day.
	f.clock.Set(time.Date(2024, 3, 2, 0, 5, 0, 0, gameclock.InvestigationZone))
	res, err := f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
	assert.NoError(t, err)
	assert.Equal(t, 2, res.Progress.CurrentDay)
	assert.Equal(t, "2024-03-02", res.Progress.VisitedLocations["loc-2"].LastVisitDate)
}

func TestVisitGateFollowsInvestigationZoneBoundary(t *testing.T) {
	f := newInvestigationFixture(t)
	ctx := context.Background()
	req := &dto.VisitLocationRequest{LocationId: "loc-2"}

	_, err := f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
	assert.NoError(t, err)

	// 18:29 UTC is 23:59 in the investigation zone, still the same day.
	f.clock.Set(time.Date(2024, 3, 1, 18, 29, 0, 0, time.UTC))
	_, err = f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
	assert.Equal(t, apperror.KindCooldownActive, apperror.KindOf(err))

	// Two minutes later the local day has rolled over.
	f.clock.Set(time.Date(2024, 3, 1, 18, 31, 0, 0, time.UTC))
	_, err = f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
	assert.NoError(t, err)
}

func TestVisitNarrationFailureKeepsActionAvailable(t *testing.T) {
	f := newInvestigationFixture(t)
	ctx := context.Background()
	req := &dto.VisitLocationRequest{LocationId: "loc-1"}

	f.llm.generate = func(prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}
	_, err := f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
	assert.Equal(t, apperror.KindUpstreamGeneration, apperror.KindOf(err))

	stored := f.storedCase(t)
	assert.Empty(t, stored.Progress.VisitedLocations)
	assert.Zero(t, stored.ProgressVersion)

	// The failed attempt did not consume the day, so a retry succeeds.
	f.llm.generate = func(prompt string) (string, error) {
		return "You step inside.", nil
	}
	_, err = f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
	assert.NoError(t, err)
}

func TestConcurrentVisitsRecordExactlyOnce(t *testing.T) {
	f := newInvestigationFixture(t)
	ctx := context.Background()
	req := &dto.VisitLocationRequest{LocationId: "loc-1"}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.VisitLocation(ctx, f.userId, f.caseId, req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, blocked int
	for err := range errs {
		if err == nil {
			succeeded++
		} else if apperror.KindOf(err) == apperror.KindCooldownActive {
			blocked++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, blocked)

	stored := f.storedCase(t)
	assert.Len(t, stored.Progress.VisitedLocations, 1)
	assert.Equal(t, []string{"clue-1"}, stored.Progress.DiscoveredClues)
	assert.Equal(t, 1, stored.ProgressVersion)
}

func TestInterrogateOncePerLocalDayKeepsFirstRecord(t *testing.T) {
	f := newInvestigationFixture(t)
	ctx := context.Background()

	first := &dto.InterrogateRequest{SuspectId: "sus-1", Questions: []string{"Where were you?", "Who can confirm that?"}}
	res, err := f.svc.Interrogate(ctx, f.userId, f.caseId, first)
	assert.NoError(t, err)
	assert.Equal(t, "Edgar Voss", res.SuspectName)
	assert.Len(t, res.Responses, 2)

	second := &dto.InterrogateRequest{SuspectId: "sus-1", Questions: []string{"Anything to add?"}}
	_, err = f.svc.Interrogate(ctx, f.userId, f.caseId, second)
	assert.Equal(t, apperror.KindCooldownActive, apperror.KindOf(err))

	stored := f.storedCase(t)
	rec := stored.Progress.InterrogatedSuspects["sus-1"]
	assert.Equal(t, first.Questions, rec.QuestionsAsked)
	assert.Equal(t, "2024-03-01", rec.LastInterrogationDate)
}

func TestDiscoverClueIsIdempotent(t *testing.T) {
	f := newInvestigationFixture(t)
	ctx := context.Background()

	res, err := f.svc.DiscoverClue(ctx, f.userId, f.caseId, "clue-2")
	assert.NoError(t, err)
	assert.Equal(t, "Muddy boots", res.Clue.Title)
	assert.Contains(t, res.Progress.DiscoveredClues, "clue-2")

	res, err = f.svc.DiscoverClue(ctx, f.userId, f.caseId, "clue-2")
	assert.NoError(t, err)
	assert.Equal(t, []string{"clue-2"}, res.Progress.DiscoveredClues)

	// Only the first discovery produced a finding and a progress write.
	count, _ := f.factory.uow.findingRepo.Count(ctx)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, f.storedCase(t).ProgressVersion)
}

func TestListFindingsClearsNewMarker(t *testing.T) {
	f := newInvestigationFixture(t)
	ctx := context.Background()

	_, err := f.svc.VisitLocation(ctx, f.userId, f.caseId, &dto.VisitLocationRequest{LocationId: "loc-1"})
	assert.NoError(t, err)
	_, err = f.svc.Interrogate(ctx, f.userId, f.caseId, &dto.InterrogateRequest{SuspectId: "sus-1", Questions: []string{"Where were you?"}})
	assert.NoError(t, err)

	res, err := f.svc.ListFindings(ctx, f.userId, f.caseId)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, res.NewCount)
	assert.Len(t, res.Findings, 2)

	res, err = f.svc.ListFindings(ctx, f.userId, f.caseId)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, res.NewCount)
	assert.Len(t, res.Findings, 2)
}

func TestInvestigationRejectsForeignAndUnknownTargets(t *testing.T) {
	f := newInvestigationFixture(t)
	ctx := context.Background()

	_, err := f.svc.VisitLocation(ctx, uuid.New(), f.caseId, &dto.VisitLocationRequest{LocationId: "loc-1"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.svc.VisitLocation(ctx, f.userId, f.caseId, &dto.VisitLocationRequest{LocationId: "loc-99"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.svc.Interrogate(ctx, f.userId, f.caseId, &dto.InterrogateRequest{SuspectId: "sus-99", Questions: []string{"?"}})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.svc.DiscoverClue(ctx, f.userId, f.caseId, "clue-99")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

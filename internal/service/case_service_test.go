package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-casefile-be/internal/dto"
	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/pkg/apperror"
	"ai-casefile-be/internal/pkg/gameclock"
	"ai-casefile-be/internal/pkg/logger"
	"ai-casefile-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type capturingPublisher struct {
	published [][]byte
	err       error
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

func TestCaseCreateRegistersOperationAndEnqueues(t *testing.T) {
	registry := memory.NewOperationRegistry(logger.NewNop())
	publisher := &capturingPublisher{}
	svc := NewCaseService(newFakeUowFactory(), publisher, registry, memory.NewCaseCache(), gameclock.System())

	userId := uuid.New()
	res, err := svc.Create(context.Background(), userId, &dto.CreateCaseRequest{Difficulty: "hard"})
	assert.NoError(t, err)
	assert.NotEmpty(t, res.OperationId)

	op, ok := registry.Get(res.OperationId)
	assert.True(t, ok)
	assert.False(t, op.Status.IsTerminal())

	if assert.Len(t, publisher.published, 1) {
		var msg dto.GenerateCaseMessage
		assert.NoError(t, json.Unmarshal(publisher.published[0], &msg))
		assert.Equal(t, res.OperationId, msg.OperationId)
		assert.Equal(t, userId, msg.OwnerId)
		assert.Equal(t, "hard", msg.Difficulty)
	}
}

func TestCaseCreateFailsOperationWhenEnqueueFails(t *testing.T) {
	registry := memory.NewOperationRegistry(logger.NewNop())
	publisher := &capturingPublisher{err: errors.New("queue closed")}
	svc := NewCaseService(newFakeUowFactory(), publisher, registry, memory.NewCaseCache(), gameclock.System())

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateCaseRequest{Difficulty: "easy"})
	assert.Error(t, err)

	// The operation must not be left queued forever.
	ids := registry.List()
	if assert.Len(t, ids, 1) {
		op, _ := registry.Get(ids[0])
		assert.Equal(t, entity.OperationStatusFailed, op.Status)
	}
}

func TestGetOperationUnknownId(t *testing.T) {
	registry := memory.NewOperationRegistry(logger.NewNop())
	svc := NewCaseService(newFakeUowFactory(), &capturingPublisher{}, registry, memory.NewCaseCache(), gameclock.System())

	_, err := svc.GetOperation(context.Background(), uuid.NewString())
	assert.Equal(t, apperror.KindUnknownOperation, apperror.KindOf(err))
}

func TestShowHidesSuspectSecretsAndChecksOwnership(t *testing.T) {
	factory := newFakeUowFactory()
	ownerId := uuid.New()
	createdAt := time.Date(2024, 3, 1, 9, 0, 0, 0, gameclock.InvestigationZone)
	seeded := &entity.Case{
		Id:            uuid.New(),
		OwnerId:       ownerId,
		Title:         "The Harrow House Affair",
		Difficulty:    entity.DifficultyMedium,
		Status:        entity.CaseStatusActive,
		EnhancedStory: "A body was found in Harrow House.",
		Suspects: []entity.Suspect{
			{Id: "sus-1", Name: "Edgar Voss", Description: "Business partner.", Alibi: "At the club.", Motive: "A buyout gone sour."},
		},
		Progress:  entity.NewInvestigationProgress(),
		CreatedAt: createdAt,
	}
	assert.NoError(t, factory.uow.caseRepo.Create(context.Background(), seeded))

	// Third local day after creation.
	clock := gameclock.Fixed(time.Date(2024, 3, 3, 11, 0, 0, 0, gameclock.InvestigationZone))
	svc := NewCaseService(factory, &capturingPublisher{}, memory.NewOperationRegistry(logger.NewNop()), memory.NewCaseCache(), clock)

	res, err := svc.Show(context.Background(), ownerId, seeded.Id)
	assert.NoError(t, err)
	assert.Equal(t, seeded.EnhancedStory, res.Story)
	assert.Equal(t, 3, res.Progress.CurrentDay)
	if assert.Len(t, res.Suspects, 1) {
		assert.Equal(t, "Edgar Voss", res.Suspects[0].Name)
	}

	_, err = svc.Show(context.Background(), uuid.New(), seeded.Id)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.Show(context.Background(), ownerId, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListFiltersByOwner(t *testing.T) {
	factory := newFakeUowFactory()
	ownerId := uuid.New()
	for i := 0; i < 2; i++ {
		assert.NoError(t, factory.uow.caseRepo.Create(context.Background(), &entity.Case{
			Id:        uuid.New(),
			OwnerId:   ownerId,
			Title:     "Case",
			Status:    entity.CaseStatusActive,
			Progress:  entity.NewInvestigationProgress(),
			CreatedAt: time.Now(),
		}))
	}
	assert.NoError(t, factory.uow.caseRepo.Create(context.Background(), &entity.Case{
		Id:        uuid.New(),
		OwnerId:   uuid.New(),
		Title:     "Someone else's case",
		Status:    entity.CaseStatusActive,
		Progress:  entity.NewInvestigationProgress(),
		CreatedAt: time.Now(),
	}))

	svc := NewCaseService(factory, &capturingPublisher{}, memory.NewOperationRegistry(logger.NewNop()), memory.NewCaseCache(), gameclock.System())
	res, err := svc.List(context.Background(), ownerId, "")
	assert.NoError(t, err)
	assert.Len(t, res, 2)
}

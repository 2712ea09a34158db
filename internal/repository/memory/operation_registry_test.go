package memory

import (
	"sync"
	"testing"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *OperationRegistry {
	return NewOperationRegistry(logger.NewNop())
}

func TestRegisterCreatesQueuedOperation(t *testing.T) {
	reg := newTestRegistry()

	id := reg.Register(entity.OperationKindCaseGeneration)
	require.NotEmpty(t, id)

	op, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, entity.OperationStatusQueued, op.Status)
	assert.Equal(t, entity.OperationKindCaseGeneration, op.Kind)
	assert.Equal(t, 0, op.ProgressPercent)
	assert.Nil(t, op.CompletedAt)
	assert.Nil(t, op.Result)

	// Each registration gets a distinct id.
	assert.NotEqual(t, id, reg.Register(entity.OperationKindCaseGeneration))
}

func TestGetUnknownOperation(t *testing.T) {
	reg := newTestRegistry()

	_, ok := reg.Get(uuid.NewString())
	assert.False(t, ok)
}

func TestLifecycleTransitions(t *testing.T) {
	reg := newTestRegistry()
	id := reg.Register(entity.OperationKindCaseGeneration)

	reg.MarkProcessing(id, 25, "generating story")
	op, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, entity.OperationStatusProcessing, op.Status)
	assert.Equal(t, 25, op.ProgressPercent)
	assert.Equal(t, "generating story", op.StatusMessage)

	caseId := uuid.New()
	reg.MarkCompleted(id, entity.OperationResult{CaseId: caseId, Warnings: []string{"no map image"}})

	op, ok = reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, entity.OperationStatusCompleted, op.Status)
	assert.Equal(t, 100, op.ProgressPercent)
	require.NotNil(t, op.CompletedAt)
	require.NotNil(t, op.Result)
	assert.Equal(t, caseId, op.Result.CaseId)
	assert.Equal(t, []string{"no map image"}, op.Result.Warnings)
}

func TestTerminalStateIsImmutable(t *testing.T) {
	reg := newTestRegistry()
	id := reg.Register(entity.OperationKindCaseGeneration)

	caseId := uuid.New()
	reg.MarkCompleted(id, entity.OperationResult{CaseId: caseId})
	first, ok := reg.Get(id)
	require.True(t, ok)

	// None of these may change an already-terminal operation.
	reg.MarkFailed(id, "late failure")
	reg.MarkProcessing(id, 10, "rewinding")
	reg.MarkCompleted(id, entity.OperationResult{CaseId: uuid.New()})

	second, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, entity.OperationStatusCompleted, second.Status)
	assert.Equal(t, caseId, second.Result.CaseId)
	assert.Empty(t, second.Error)
}

func TestMutatorsOnUnknownIdDoNotPanic(t *testing.T) {
	reg := newTestRegistry()

	assert.NotPanics(t, func() {
		reg.MarkProcessing("missing", 10, "x")
		reg.MarkCompleted("missing", entity.OperationResult{})
		reg.MarkFailed("missing", "x")
	})
}

func TestGetReturnsDefensiveCopy(t *testing.T) {
	reg := newTestRegistry()
	id := reg.Register(entity.OperationKindCaseGeneration)
	reg.MarkCompleted(id, entity.OperationResult{CaseId: uuid.New(), Warnings: []string{"a"}})

	op, _ := reg.Get(id)
	op.Result.Warnings[0] = "tampered"
	op.Result.CaseId = uuid.New()

	fresh, _ := reg.Get(id)
	assert.Equal(t, "a", fresh.Result.Warnings[0])
}

func TestConcurrentTerminalRace(t *testing.T) {
	reg := newTestRegistry()
	id := reg.Register(entity.OperationKindCaseGeneration)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.MarkCompleted(id, entity.OperationResult{CaseId: uuid.New()})
		}()
		go func() {
			defer wg.Done()
			reg.MarkFailed(id, "boom")
		}()
	}
	wg.Wait()

	op, ok := reg.Get(id)
	require.True(t, ok)
	assert.True(t, op.Status.IsTerminal())

	// Whichever write won, the record must be internally consistent.
	if op.Status == entity.OperationStatusCompleted {
		assert.NotNil(t, op.Result)
		assert.Empty(t, op.Error)
	} else {
		assert.Nil(t, op.Result)
		assert.Equal(t, "boom", op.Error)
	}
}

func TestConcurrentReadersDuringWrites(t *testing.T) {
	reg := newTestRegistry()
	id := reg.Register(entity.OperationKindCaseGeneration)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for pct := 0; pct <= 100; pct += 5 {
			reg.MarkProcessing(id, pct, "working")
		}
		reg.MarkCompleted(id, entity.OperationResult{CaseId: uuid.New()})
	}()

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				op, ok := reg.Get(id)
				if !ok {
					t.Error("operation vanished mid-run")
					return
				}
				if op.Status == entity.OperationStatusCompleted && op.Result == nil {
					t.Error("completed operation observed without result")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestListContainsRegisteredIds(t *testing.T) {
	reg := newTestRegistry()
	a := reg.Register(entity.OperationKindCaseGeneration)
	b := reg.Register(entity.OperationKindCaseGeneration)

	ids := reg.List()
	assert.Contains(t, ids, a)
	assert.Contains(t, ids, b)
	assert.Len(t, ids, 2)
}

package memory

import (
	"sync"
	"time"

	"ai-casefile-be/internal/entity"
	"ai-casefile-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// terminalRetention is how long a finished operation stays pollable before
// lazy eviction. Long enough for any sane polling interval.
const terminalRetention = 24 * time.Hour

// OperationRegistry is the process-wide table of asynchronous jobs. Clients
// poll it until the operation reaches a terminal state. Entries live only for
// process uptime: a restart loses in-flight history, which callers observe as
// not-found and treat as an accepted limitation.
//
// Writes to one id come from a single pipeline run, but the registry still
// serializes all mutations under one lock so a terminal transition is never
// lost and pollers never see a torn record (Get returns copies).
type OperationRegistry struct {
	mu     sync.RWMutex
	ops    map[string]*entity.Operation
	logger logger.ILogger
}

func NewOperationRegistry(log logger.ILogger) *OperationRegistry {
	return &OperationRegistry{
		ops:    make(map[string]*entity.Operation),
		logger: log,
	}
}

// Register creates a queued entry and returns its fresh id.
func (r *OperationRegistry) Register(kind entity.OperationKind) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpiredLocked()
	r.ops[id] = &entity.Operation{
		Id:            id,
		Kind:          kind,
		Status:        entity.OperationStatusQueued,
		StatusMessage: "queued",
		StartedAt:     time.Now().UTC(),
	}
	return id
}

// MarkProcessing moves the operation to processing and updates its progress.
// Safe to call repeatedly while the pipeline advances through its steps.
func (r *OperationRegistry) MarkProcessing(id string, progressPercent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok {
		r.logger.Warn("OperationRegistry", "MarkProcessing on unknown operation", map[string]interface{}{"operation_id": id})
		return
	}
	if op.Status.IsTerminal() {
		r.logger.Warn("OperationRegistry", "MarkProcessing on terminal operation ignored", map[string]interface{}{"operation_id": id, "status": op.Status})
		return
	}

	op.Status = entity.OperationStatusProcessing
	op.ProgressPercent = progressPercent
	op.StatusMessage = message
}

// MarkCompleted transitions the operation to completed with its result.
// Terminal states are never overwritten; violations are logged, not raised.
func (r *OperationRegistry) MarkCompleted(id string, result entity.OperationResult) {
	r.terminate(id, entity.OperationStatusCompleted, &result, "")
}

// MarkFailed transitions the operation to failed with the causing error.
func (r *OperationRegistry) MarkFailed(id string, errorDetail string) {
	r.terminate(id, entity.OperationStatusFailed, nil, errorDetail)
}

func (r *OperationRegistry) terminate(id string, status entity.OperationStatus, result *entity.OperationResult, errorDetail string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.ops[id]
	if !ok {
		r.logger.Warn("OperationRegistry", "terminal transition on unknown operation", map[string]interface{}{"operation_id": id, "status": status})
		return
	}
	if op.Status.IsTerminal() {
		r.logger.Warn("OperationRegistry", "terminal transition on already-terminal operation ignored", map[string]interface{}{"operation_id": id, "status": op.Status})
		return
	}

	now := time.Now().UTC()
	op.Status = status
	op.CompletedAt = &now
	op.Result = result
	op.Error = errorDetail
	if status == entity.OperationStatusCompleted {
		op.ProgressPercent = 100
		op.StatusMessage = "completed"
	} else {
		op.StatusMessage = "failed"
	}
}

// Get returns a snapshot of the operation, or false if the id is unknown.
func (r *OperationRegistry) Get(id string) (entity.Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[id]
	if !ok {
		return entity.Operation{}, false
	}
	return copyOperation(op), true
}

// List returns the ids of all known operations. Diagnostic use only.
func (r *OperationRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.ops))
	for id := range r.ops {
		ids = append(ids, id)
	}
	return ids
}

// evictExpiredLocked drops operations that have been terminal longer than the
// retention window. Called with the write lock held; piggybacks on Register
// so no janitor goroutine is needed.
func (r *OperationRegistry) evictExpiredLocked() {
	cutoff := time.Now().UTC().Add(-terminalRetention)
	for id, op := range r.ops {
		if op.Status.IsTerminal() && op.CompletedAt != nil && op.CompletedAt.Before(cutoff) {
			delete(r.ops, id)
		}
	}
}

func copyOperation(op *entity.Operation) entity.Operation {
	out := *op
	if op.CompletedAt != nil {
		t := *op.CompletedAt
		out.CompletedAt = &t
	}
	if op.Result != nil {
		res := *op.Result
		res.Warnings = append([]string(nil), op.Result.Warnings...)
		out.Result = &res
	}
	return out
}

package events

import (
	"time"

	"github.com/google/uuid"
)

// Event codes emitted by the case pipeline and the investigation flow.
const (
	TypeCaseReady    = "CASE_READY"
	TypeCaseFailed   = "CASE_FAILED"
	TypeFindingAdded = "FINDING_ADDED"
)

func NewCaseReadyEvent(ownerId, caseId uuid.UUID, title string) Event {
	return BaseEvent{
		Type: TypeCaseReady,
		Data: map[string]interface{}{
			"user_id": ownerId.String(),
			"case_id": caseId.String(),
			"title":   title,
		},
		OccurredAt: time.Now(),
	}
}

func NewCaseFailedEvent(ownerId uuid.UUID, operationId, reason string) Event {
	return BaseEvent{
		Type: TypeCaseFailed,
		Data: map[string]interface{}{
			"user_id":      ownerId.String(),
			"operation_id": operationId,
			"reason":       reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewFindingAddedEvent(ownerId, caseId uuid.UUID, source, importance string) Event {
	return BaseEvent{
		Type: TypeFindingAdded,
		Data: map[string]interface{}{
			"user_id":    ownerId.String(),
			"case_id":    caseId.String(),
			"source":     source,
			"importance": importance,
		},
		OccurredAt: time.Now(),
	}
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type OperationStatus string

const (
	OperationStatusQueued     OperationStatus = "queued"
	OperationStatusProcessing OperationStatus = "processing"
	OperationStatusCompleted  OperationStatus = "completed"
	OperationStatusFailed     OperationStatus = "failed"
)

// IsTerminal reports whether the status is completed or failed. Terminal
// operations are immutable.
func (s OperationStatus) IsTerminal() bool {
	return s == OperationStatusCompleted || s == OperationStatusFailed
}

type OperationKind string

const (
	OperationKindCaseGeneration OperationKind = "case_generation"
)

// OperationResult is attached to a completed operation. Warnings carry the
// non-fatal degradations (missing scene images, missing map image) that the
// pipeline tolerated.
type OperationResult struct {
	CaseId   uuid.UUID `json:"case_id"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Operation tracks one asynchronous job through the in-process registry.
// Lifecycle: queued -> processing -> completed|failed, nothing else. The
// registry holds these only for process uptime; history is lost on restart.
type Operation struct {
	Id              string
	Kind            OperationKind
	Status          OperationStatus
	ProgressPercent int
	StatusMessage   string
	StartedAt       time.Time
	CompletedAt     *time.Time
	Result          *OperationResult
	Error           string
}

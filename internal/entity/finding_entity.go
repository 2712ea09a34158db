package entity

import (
	"time"

	"github.com/google/uuid"
)

type FindingSource string

const (
	FindingSourceInterrogation FindingSource = "interrogation"
	FindingSourceLocationVisit FindingSource = "location_visit"
	FindingSourceClueDiscovery FindingSource = "clue_discovery"
)

type FindingImportance string

const (
	FindingImportanceMinor     FindingImportance = "minor"
	FindingImportanceImportant FindingImportance = "important"
	FindingImportanceCritical  FindingImportance = "critical"
)

// Finding is an append-only investigative fact surfaced to the player.
// Findings are never updated in place; IsNew is the single exception, flipped
// once when the player views their notes.
type Finding struct {
	Id            uuid.UUID
	CaseId        uuid.UUID
	Source        FindingSource
	SourceDetails string
	Text          string
	Importance    FindingImportance
	IsNew         bool
	CreatedAt     time.Time
}

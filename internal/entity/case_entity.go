package entity

import (
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

const (
	CaseStatusActive CaseStatus = "active"
	CaseStatusSolved CaseStatus = "solved"
	CaseStatusClosed CaseStatus = "closed"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Case is one generated mystery scenario: the immutable artifact bundle
// produced by the generation pipeline plus the evolving investigation
// progress. The bundle fields are never mutated after the pipeline commits
// them; regenerating means creating a whole new case.
type Case struct {
	Id         uuid.UUID
	OwnerId    uuid.UUID
	Title      string
	Difficulty Difficulty
	Status     CaseStatus

	// Artifact bundle
	Story         string
	EnhancedStory string
	Intro         string
	Clues         []Clue
	Suspects      []Suspect
	Locations     []Location
	MapImageURL   *string

	// Derived metadata
	EstimatedMinutes int
	Tags             []string

	Progress        InvestigationProgress
	ProgressVersion int

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Location is one visitable place on the case map. ImageURL is optional:
// scene image generation is best effort and a location without an image is a
// valid state, not an error.
type Location struct {
	Id          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type Suspect struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Alibi       string `json:"alibi"`
	Motive      string `json:"motive"`
}

type ClueImportance string

const (
	ClueImportanceMinor     ClueImportance = "minor"
	ClueImportanceImportant ClueImportance = "important"
	ClueImportanceCritical  ClueImportance = "critical"
)

type Clue struct {
	Id          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	LocationId  string         `json:"location_id,omitempty"`
	Importance  ClueImportance `json:"importance"`
}

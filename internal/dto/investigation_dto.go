package dto

import (
	"time"

	"ai-casefile-be/internal/entity"

	"github.com/google/uuid"
)

type VisitLocationRequest struct {
	LocationId string `json:"location_id" validate:"required"`
}

type VisitLocationResponse struct {
	Narration string           `json:"narration"`
	Finding   *FindingResponse `json:"finding,omitempty"`
	Progress  ProgressResponse `json:"progress"`
}

type InterrogateRequest struct {
	SuspectId string   `json:"suspect_id" validate:"required"`
	Questions []string `json:"questions" validate:"required,min=1,max=5,dive,required"`
}

type InterrogateResponse struct {
	SuspectName string           `json:"suspect_name"`
	Questions   []string         `json:"questions"`
	Responses   []string         `json:"responses"`
	Progress    ProgressResponse `json:"progress"`
}

type DiscoverClueResponse struct {
	Clue     entity.Clue      `json:"clue"`
	Progress ProgressResponse `json:"progress"`
}

type ProgressResponse struct {
	VisitedLocations     map[string]entity.VisitRecord         `json:"visited_locations"`
	InterrogatedSuspects map[string]entity.InterrogationRecord `json:"interrogated_suspects"`
	DiscoveredClues      []string                              `json:"discovered_clues"`
	CurrentDay           int                                   `json:"current_day"`
}

type FindingResponse struct {
	Id            uuid.UUID `json:"id"`
	Source        string    `json:"source"`
	SourceDetails string    `json:"source_details"`
	Text          string    `json:"text"`
	Importance    string    `json:"importance"`
	IsNew         bool      `json:"is_new"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListFindingsResponse struct {
	Findings []FindingResponse `json:"findings"`
	NewCount int64             `json:"new_count"`
}

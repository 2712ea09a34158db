package entity

import "time"

// InvestigationProgress is the per-case mutable progress record. It is
// serialized as one JSONB column on the case row and written through the
// versioned UpdateProgress path so concurrent gated actions cannot clobber
// each other.
type InvestigationProgress struct {
	VisitedLocations     map[string]VisitRecord         `json:"visited_locations"`
	InterrogatedSuspects map[string]InterrogationRecord `json:"interrogated_suspects"`
	DiscoveredClues      []string                       `json:"discovered_clues"`
	CurrentDay           int                            `json:"current_day"`
}

func NewInvestigationProgress() InvestigationProgress {
	return InvestigationProgress{
		VisitedLocations:     make(map[string]VisitRecord),
		InterrogatedSuspects: make(map[string]InterrogationRecord),
		DiscoveredClues:      []string{},
	}
}

// VisitRecord remembers the last visit to a location. LastVisitDate is a
// calendar date in the investigation zone ("2006-01-02"); the daily gate is
// recomputed from it on every check rather than stored as a state flag.
type VisitRecord struct {
	VisitedAtUTC  time.Time `json:"visited_at_utc"`
	LastVisitDate string    `json:"last_visit_date"`
}

type InterrogationRecord struct {
	InterrogatedAtUTC     time.Time `json:"interrogated_at_utc"`
	LastInterrogationDate string    `json:"last_interrogation_date"`
	QuestionsAsked        []string  `json:"questions_asked"`
	Responses             []string  `json:"responses"`
}

// HasDiscoveredClue reports whether clueId is already in the discovered set.
func (p *InvestigationProgress) HasDiscoveredClue(clueId string) bool {
	for _, id := range p.DiscoveredClues {
		if id == clueId {
			return true
		}
	}
	return false
}

package dto

import (
	"time"

	"ai-casefile-be/internal/entity"

	"github.com/google/uuid"
)

type CreateCaseRequest struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

type CreateCaseResponse struct {
	OperationId string `json:"operation_id"`
}

// GenerateCaseMessage is the payload queued for the pipeline consumer.
type GenerateCaseMessage struct {
	OperationId string    `json:"operation_id"`
	OwnerId     uuid.UUID `json:"owner_id"`
	Difficulty  string    `json:"difficulty"`
}

type OperationStatusResponse struct {
	Id              string                  `json:"id"`
	Kind            string                  `json:"kind"`
	Status          string                  `json:"status"`
	ProgressPercent int                     `json:"progress_percent"`
	Message         string                  `json:"message"`
	StartedAt       time.Time               `json:"started_at"`
	CompletedAt     *time.Time              `json:"completed_at,omitempty"`
	Result          *OperationResultPayload `json:"result,omitempty"`
	Error           string                  `json:"error,omitempty"`
}

type OperationResultPayload struct {
	CaseId   uuid.UUID `json:"case_id"`
	Warnings []string  `json:"warnings,omitempty"`
}

type CaseSummaryResponse struct {
	Id               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Difficulty       string    `json:"difficulty"`
	Status           string    `json:"status"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	Tags             []string  `json:"tags"`
	CurrentDay       int       `json:"current_day"`
	CreatedAt        time.Time `json:"created_at"`
}

type ShowCaseResponse struct {
	Id               uuid.UUID         `json:"id"`
	Title            string            `json:"title"`
	Difficulty       string            `json:"difficulty"`
	Status           string            `json:"status"`
	Intro            string            `json:"intro"`
	Story            string            `json:"story"`
	Locations        []entity.Location `json:"locations"`
	Suspects         []SuspectSummary  `json:"suspects"`
	MapImageURL      *string           `json:"map_image_url,omitempty"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	Tags             []string          `json:"tags"`
	Progress         ProgressResponse  `json:"progress"`
	CreatedAt        time.Time         `json:"created_at"`
}

// SuspectSummary hides alibi/motive details that the player must earn
// through interrogation.
type SuspectSummary struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/careerstack/internal/types"
)

// DefaultListLimit bounds list queries without an explicit limit.
const DefaultListLimit = 50

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// Run is one invocation of the scrape pipeline over one or more sources
type Run struct {
	ID          uuid.UUID  `json:"id"`
	SourceCount int        `json:"source_count"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SavedJob is a job that was saved to the workspace
type SavedJob struct {
	ID          uuid.UUID  `json:"id"`
	RunID       *uuid.UUID `json:"run_id,omitempty"`
	URL         string     `json:"url"`
	Platform    string     `json:"platform"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Salary      string     `json:"salary"`
	Email       *string    `json:"email,omitempty"`
	Score       *int       `json:"score,omitempty"`
	PageURL     string     `json:"page_url"`
	ContentHash string     `json:"content_hash"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SavedJobInput is the data recorded for a save
type SavedJobInput struct {
	RunID       *uuid.UUID
	URL         string
	Platform    string
	Company     string
	Position    string
	Salary      string
	Email       *string
	Score       *int
	PageURL     string
	Description string
}

// SavedJobFilters holds optional filters for listing saved jobs
type SavedJobFilters struct {
	Company  string
	Platform string
	MinScore int
	RunID    uuid.UUID
	Limit    int
}

// NewSavedJobInput builds the history record for a request saved as pageURL.
func NewSavedJobInput(req *types.SaveRequest, pageURL string, runID uuid.UUID) *SavedJobInput {
	input := &SavedJobInput{
		URL:         req.Link,
		Platform:    req.Platform,
		Company:     req.Company,
		Position:    req.Position,
		Salary:      req.Salary,
		Score:       req.Score,
		PageURL:     pageURL,
		Description: req.Description,
	}
	if req.Email != "" {
		email := req.Email
		input.Email = &email
	}
	if runID != uuid.Nil {
		id := runID
		input.RunID = &id
	}
	return input
}

// Validate checks the fields the table requires
func (in *SavedJobInput) Validate() error {
	if in == nil {
		return fmt.Errorf("saved job input is nil")
	}
	if in.URL == "" {
		return fmt.Errorf("saved job url is required")
	}
	if in.PageURL == "" {
		return fmt.Errorf("saved job page url is required")
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return fmt.Errorf("saved job score %d out of range 0-100", *in.Score)
	}
	return nil
}

// HashJobContent returns the SHA-256 of a job description, used to spot edited postings
func HashJobContent(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

package types

import "time"

// JobStatus represents the current status of an import job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// ImportJob represents one request to pull a remote track into the music
// folder under its convention-normalized filename.
type ImportJob struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Name        string     `json:"name"`
	Filename    string     `json:"filename"` // normalized target inside the music folder
	Status      JobStatus  `json:"status"`
	Received    int64      `json:"received"` // bytes written so far
	Total       int64      `json:"total"`    // content length, -1 when unknown
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

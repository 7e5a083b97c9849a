package models

import (
	"time"
)

// JobStatus represents the status of an import job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobType represents the type of job
type JobType string

const (
	JobTypeImport JobType = "import"
)

// Job represents one run of the legacy importer over a single export file
type Job struct {
	ID               string     `json:"job_id" db:"id"`
	Type             JobType    `json:"type" db:"type"`
	Category         string     `json:"category" db:"category"`
	Status           JobStatus  `json:"status" db:"status"`
	IdempotencyKey   string     `json:"idempotency_key,omitempty" db:"idempotency_key"`
	TotalRecords     int        `json:"total_records" db:"total_records"`
	ProcessedCount   int        `json:"processed" db:"processed_count"`
	SuccessfulCount  int        `json:"successful" db:"successful_count"`
	FailedCount      int        `json:"failed" db:"failed_count"`
	CommentsImported int        `json:"comments_imported" db:"comments_imported"`
	CommentsFailed   int        `json:"comments_failed" db:"comments_failed"`
	FieldsRecovered  int        `json:"fields_recovered" db:"fields_recovered"`
	DurationMs       int64      `json:"duration_ms,omitempty" db:"duration_ms"`
	RowsPerSec       float64    `json:"rows_per_sec,omitempty" db:"rows_per_sec"`
	FilePath         string     `json:"-" db:"file_path"`
	ErrorMessage     string     `json:"error_message,omitempty" db:"error_message"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// JobError is a problem recorded against one post of an import run.
// Line is the 1-based ordinal of the post in the export file.
type JobError struct {
	Line    int         `json:"line"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// JobResponse is the API response for job status
type JobResponse struct {
	Job
	Errors      []JobError `json:"errors,omitempty"`
	ErrorCount  int        `json:"error_count,omitempty"`
	ErrorReport string     `json:"error_report_url,omitempty"`
}

// ImportRequest represents an import job request
type ImportRequest struct {
	Category       string `json:"category" form:"category"`
	IdempotencyKey string `json:"-"`
}

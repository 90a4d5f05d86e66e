package models

import "time"

type WorkflowStatus string

const (
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// WorkflowRun is one execution of a multi-step mutation recorded in the command log.
type WorkflowRun struct {
	ID         string         `json:"id"`
	Workflow   string         `json:"workflow"`
	Subject    string         `json:"subject"`
	Status     WorkflowStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	Steps      []WorkflowStep `json:"steps"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

type WorkflowStep struct {
	Name     string    `json:"name"`
	Mutating bool      `json:"mutating"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

type TeardownStatus string

const (
	TeardownRunning  TeardownStatus = "running"
	TeardownFinished TeardownStatus = "finished"
)

type TeardownJob struct {
	ID        string         `json:"id"`
	Status    TeardownStatus `json:"status"`
	Result    *BulkResult    `json:"result,omitempty"`
	ReportURL string         `json:"report_url,omitempty"`
}

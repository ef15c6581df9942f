package domain

import "time"

// TriggerType says what starts an export job.
type TriggerType string

const (
	TriggerManual    TriggerType = "manual"
	TriggerSchedule  TriggerType = "schedule"   // TriggerConfig is a cron expression
	TriggerFileWatch TriggerType = "file_watch" // TriggerConfig is a file path
)

// Valid reports whether t is a known trigger.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerManual, TriggerSchedule, TriggerFileWatch:
		return true
	}
	return false
}

// Run statuses recorded on jobs and run logs.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// ExportJob exports a template over a source's records to a directory.
type ExportJob struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	TemplateID    string         `json:"templateId"`
	SourceType    string         `json:"sourceType"`
	SourceConfig  map[string]any `json:"sourceConfig"`
	OutputDir     string         `json:"outputDir"`
	Limit         int            `json:"limit"`
	TriggerType   TriggerType    `json:"triggerType"`
	TriggerConfig string         `json:"triggerConfig"`
	Enabled       bool           `json:"enabled"`
	LastRunAt     time.Time      `json:"lastRunAt"`
	LastStatus    string         `json:"lastStatus"`
	LastError     string         `json:"lastError"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// ExportRunLog is the history entry of one job run.
type ExportRunLog struct {
	ID         string    `json:"id"`
	JobID      string    `json:"jobId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Status     string    `json:"status"`
	Rows       int       `json:"rows"`
	Bytes      int64     `json:"bytes"`
	Path       string    `json:"path"`
	Error      string    `json:"error,omitempty"`
}

type ExportJobStore interface {
	CreateJob(j *ExportJob) error
	GetJob(id string) (*ExportJob, error)
	ListJobs() ([]ExportJob, error)
	ListTriggeredJobs() ([]ExportJob, error)
	UpdateJob(j *ExportJob) error
	UpdateJobStatus(id, status, errMsg string) error
	DeleteJob(id string) error

	CreateRunLog(l *ExportRunLog) error
	ListRunLogs(jobID string, limit int) ([]ExportRunLog, error)
}

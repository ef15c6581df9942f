package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"orderexport/internal/domain"
)

// ExportJobStore implements domain.ExportJobStore using SQLite.
type ExportJobStore struct {
	db *DB
}

func NewExportJobStore(db *DB) *ExportJobStore {
	return &ExportJobStore{db: db}
}

var _ domain.ExportJobStore = (*ExportJobStore)(nil)

const jobColumns = `id, name, template_id, source_type, source_config, output_dir, row_limit,
	trigger_type, trigger_config, enabled, last_run_at, last_status, last_error, created_at, updated_at`

// ── ExportJob CRUD ─────────────────────────────────────────

func (s *ExportJobStore) CreateJob(j *domain.ExportJob) error {
	now := time.Now().UTC()
	j.ID = uuid.New().String()
	j.CreatedAt = now
	j.UpdatedAt = now

	srcCfg, err := json.Marshal(j.SourceConfig)
	if err != nil {
		return fmt.Errorf("encode source config: %w", err)
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO export_jobs (id, name, template_id, source_type, source_config, output_dir, row_limit,
		 trigger_type, trigger_config, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Name, j.TemplateID, j.SourceType, string(srcCfg), j.OutputDir, j.Limit,
		string(j.TriggerType), j.TriggerConfig, j.Enabled,
		j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

func (s *ExportJobStore) GetJob(id string) (*domain.ExportJob, error) {
	j, err := scanJob(s.db.conn.QueryRow(`SELECT `+jobColumns+` FROM export_jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("export job", id)
	}
	return j, err
}

func (s *ExportJobStore) ListJobs() ([]domain.ExportJob, error) {
	return s.queryJobs(`SELECT ` + jobColumns + ` FROM export_jobs ORDER BY created_at ASC`)
}

// ListTriggeredJobs returns enabled jobs with a schedule or file_watch trigger.
func (s *ExportJobStore) ListTriggeredJobs() ([]domain.ExportJob, error) {
	return s.queryJobs(
		`SELECT `+jobColumns+` FROM export_jobs
		 WHERE enabled = 1 AND trigger_type IN (?, ?)
		 ORDER BY created_at ASC`,
		string(domain.TriggerSchedule), string(domain.TriggerFileWatch),
	)
}

func (s *ExportJobStore) queryJobs(query string, args ...any) ([]domain.ExportJob, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.ExportJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (s *ExportJobStore) UpdateJob(j *domain.ExportJob) error {
	j.UpdatedAt = time.Now().UTC()
	srcCfg, err := json.Marshal(j.SourceConfig)
	if err != nil {
		return fmt.Errorf("encode source config: %w", err)
	}
	res, err := s.db.conn.Exec(
		`UPDATE export_jobs SET name=?, template_id=?, source_type=?, source_config=?, output_dir=?,
		 row_limit=?, trigger_type=?, trigger_config=?, enabled=?, updated_at=? WHERE id=?`,
		j.Name, j.TemplateID, j.SourceType, string(srcCfg), j.OutputDir,
		j.Limit, string(j.TriggerType), j.TriggerConfig, j.Enabled, j.UpdatedAt, j.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("export job", j.ID)
	}
	return nil
}

func (s *ExportJobStore) UpdateJobStatus(id, status, errMsg string) error {
	now := time.Now().UTC()
	_, err := s.db.conn.Exec(
		`UPDATE export_jobs SET last_run_at=?, last_status=?, last_error=?, updated_at=? WHERE id=?`,
		now, status, errMsg, now, id,
	)
	return err
}

func (s *ExportJobStore) DeleteJob(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM export_run_logs WHERE job_id = ?`, id); err != nil {
		return err
	}
	res, err := s.db.conn.Exec(`DELETE FROM export_jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("export job", id)
	}
	return nil
}

func scanJob(r rowScanner) (*domain.ExportJob, error) {
	j := &domain.ExportJob{}
	var srcCfg, trigger string
	var lastRun sql.NullTime
	if err := r.Scan(
		&j.ID, &j.Name, &j.TemplateID, &j.SourceType, &srcCfg, &j.OutputDir, &j.Limit,
		&trigger, &j.TriggerConfig, &j.Enabled,
		&lastRun, &j.LastStatus, &j.LastError,
		&j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	j.TriggerType = domain.TriggerType(trigger)
	if lastRun.Valid {
		j.LastRunAt = lastRun.Time
	}
	if err := json.Unmarshal([]byte(srcCfg), &j.SourceConfig); err != nil {
		return nil, fmt.Errorf("decode source config of job %s: %w", j.ID, err)
	}
	return j, nil
}

// ── Run Logs ───────────────────────────────────────────────

func (s *ExportJobStore) CreateRunLog(l *domain.ExportRunLog) error {
	l.ID = uuid.New().String()
	_, err := s.db.conn.Exec(
		`INSERT INTO export_run_logs (id, job_id, started_at, finished_at, status, rows_written, bytes_written, path, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.JobID, l.StartedAt.UTC(), l.FinishedAt.UTC(), l.Status, l.Rows, l.Bytes, l.Path, l.Error,
	)
	return err
}

func (s *ExportJobStore) ListRunLogs(jobID string, limit int) ([]domain.ExportRunLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.conn.Query(
		`SELECT id, job_id, started_at, finished_at, status, rows_written, bytes_written, path, error
		 FROM export_run_logs WHERE job_id = ? ORDER BY started_at DESC LIMIT ?`,
		jobID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.ExportRunLog
	for rows.Next() {
		var l domain.ExportRunLog
		if err := rows.Scan(&l.ID, &l.JobID, &l.StartedAt, &l.FinishedAt, &l.Status, &l.Rows, &l.Bytes, &l.Path, &l.Error); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skuahq/skua/internal/validation"
)

// Run is one recorded verdict.
type Run struct {
	ID          string                  `json:"id"`
	Project     string                  `json:"project"`
	Command     string                  `json:"command"` // validate, run
	Environment string                  `json:"environment"`
	Security    string                  `json:"security"`
	Agent       string                  `json:"agent"`
	Valid       bool                    `json:"valid"`
	Errors      int                     `json:"errors"`
	Warnings    int                     `json:"warnings"`
	RecordedAt  time.Time               `json:"recordedAt"`
	Diagnostics []validation.Diagnostic `json:"diagnostics"`
}

// NewRun builds a Run from a verdict with a fresh ID.
func NewRun(command string, p Refs, v validation.Verdict) *Run {
	return &Run{
		ID:          uuid.NewString(),
		Project:     v.Project,
		Command:     command,
		Environment: p.Environment,
		Security:    p.Security,
		Agent:       p.Agent,
		Valid:       v.Valid,
		Errors:      len(v.Errors()),
		Warnings:    len(v.Warnings()),
		RecordedAt:  time.Now().UTC(),
		Diagnostics: v.Diagnostics,
	}
}

// Refs are the resource names a project pointed at when it was validated.
type Refs struct {
	Environment string
	Security    string
	Agent       string
}

func (s *Store) Record(r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin record: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, project, command, environment, security, agent, valid, errors, warnings, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Project, r.Command, r.Environment, r.Security, r.Agent, r.Valid, r.Errors, r.Warnings, r.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, d := range r.Diagnostics {
		var hint *string
		if d.Hint != "" {
			hint = &d.Hint
		}
		_, err := tx.Exec(`INSERT INTO run_diagnostics (run_id, seq, severity, stage, message, hint)
			VALUES (?, ?, ?, ?, ?, ?)`, r.ID, i, d.Severity, d.Stage, d.Message, hint)
		if err != nil {
			return fmt.Errorf("insert diagnostic: %w", err)
		}
	}
	return tx.Commit()
}

// List returns the most recent runs for project, newest first. limit <= 0
// means no limit.
func (s *Store) List(project string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT id, project, command, environment, security, agent, valid, errors, warnings, recorded_at
		FROM runs WHERE project = ? ORDER BY recorded_at DESC, rowid DESC LIMIT ?`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Project, &r.Command, &r.Environment, &r.Security, &r.Agent,
			&r.Valid, &r.Errors, &r.Warnings, &r.RecordedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, r := range runs {
		if r.Diagnostics, err = s.diagnostics(r.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns a run by ID, or nil if none exists.
func (s *Store) Get(id string) (*Run, error) {
	r := &Run{}
	err := s.db.QueryRow(`SELECT id, project, command, environment, security, agent, valid, errors, warnings, recorded_at
		FROM runs WHERE id = ?`, id).Scan(&r.ID, &r.Project, &r.Command, &r.Environment, &r.Security, &r.Agent,
		&r.Valid, &r.Errors, &r.Warnings, &r.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if r.Diagnostics, err = s.diagnostics(id); err != nil {
		return nil, err
	}
	return r, nil
}

// Prune deletes all but the newest keep runs of project.
func (s *Store) Prune(project string, keep int) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM runs WHERE project = ? AND id NOT IN (
		SELECT id FROM runs WHERE project = ? ORDER BY recorded_at DESC, rowid DESC LIMIT ?)`,
		project, project, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) diagnostics(runID string) ([]validation.Diagnostic, error) {
	rows, err := s.db.Query(`SELECT severity, stage, message, hint
		FROM run_diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list diagnostics: %w", err)
	}
	defer rows.Close()
	var out []validation.Diagnostic
	for rows.Next() {
		var d validation.Diagnostic
		var hint sql.NullString
		if err := rows.Scan(&d.Severity, &d.Stage, &d.Message, &hint); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.Hint = hint.String
		out = append(out, d)
	}
	return out, rows.Err()
}

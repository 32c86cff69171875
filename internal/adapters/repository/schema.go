package repository

import (
	"context"
	"fmt"
)

// Table names.
const (
	TableProfiles    = "alumni_profiles"
	TableTransitions = "career_transitions"
	TableMatrix      = "career_transition_matrix"
	TableModels      = "model_registry"
	TableAudit       = "prediction_audit"
)

// schema uses types both PostgreSQL and SQLite accept. Skill lists and
// nested results are stored as JSON text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS alumni_profiles (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL DEFAULT '',
		current_position TEXT NOT NULL,
		skills           TEXT NOT NULL DEFAULT '[]',
		years_experience INTEGER,
		industry         TEXT,
		batch_year       INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alumni_profiles_experience ON alumni_profiles (years_experience)`,
	`CREATE TABLE IF NOT EXISTS career_transitions (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		from_role       TEXT NOT NULL,
		to_role         TEXT NOT NULL,
		skills_acquired TEXT NOT NULL DEFAULT '[]',
		duration_months INTEGER,
		success_rating  INTEGER,
		transition_date TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_career_transitions_date ON career_transitions (transition_date)`,
	`CREATE TABLE IF NOT EXISTS career_transition_matrix (
		from_role           TEXT NOT NULL,
		to_role             TEXT NOT NULL,
		transition_count    INTEGER NOT NULL,
		probability         DOUBLE PRECISION NOT NULL,
		avg_duration_months INTEGER NOT NULL,
		required_skills     TEXT NOT NULL DEFAULT '[]',
		success_rate        DOUBLE PRECISION NOT NULL,
		matrix_version      TEXT NOT NULL,
		row_order           INTEGER NOT NULL,
		PRIMARY KEY (from_role, to_role)
	)`,
	`CREATE TABLE IF NOT EXISTS model_registry (
		version         TEXT PRIMARY KEY,
		created_at      TIMESTAMP NOT NULL,
		train_samples   INTEGER NOT NULL,
		test_samples    INTEGER NOT NULL,
		strategy        TEXT NOT NULL,
		hyperparameters TEXT NOT NULL,
		metrics         TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS prediction_audit (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL DEFAULT '',
		current_position TEXT NOT NULL,
		strategy         TEXT NOT NULL,
		model_version    TEXT NOT NULL DEFAULT '',
		confidence_score DOUBLE PRECISION NOT NULL,
		result           TEXT NOT NULL,
		generated_at     TIMESTAMP NOT NULL
	)`,
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}

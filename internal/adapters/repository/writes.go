package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
)

const insertMatrix = `INSERT INTO career_transition_matrix (
		from_role, to_role, transition_count, probability, avg_duration_months,
		required_skills, success_rate, matrix_version, row_order
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ReplaceMatrix swaps the whole matrix table for entries in one
// transaction. Readers see either the old matrix or the new one.
func (s *Store) ReplaceMatrix(ctx context.Context, version string, entries []model.TransitionMatrixEntry) error {
	encoded := make([]string, len(entries))
	for i, e := range entries {
		raw, err := encodeSkills(e.RequiredSkills)
		if err != nil {
			return fmt.Errorf("encode required skills: %w", err)
		}
		encoded[i] = raw
	}
	return s.inTx(ctx, "replace_matrix", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM career_transition_matrix`); err != nil {
			return err
		}
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertMatrix))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx,
				e.FromRole, e.ToRole, e.TransitionCount, e.Probability, e.AvgDurationMonths,
				encoded[i], e.SuccessRate, version, i,
			); err != nil {
				return fmt.Errorf("insert %s -> %s: %w", e.FromRole, e.ToRole, err)
			}
		}
		return nil
	})
}

// RecordModel appends a model registry row.
func (s *Store) RecordModel(ctx context.Context, rec model.ModelRecord) error {
	params, err := json.Marshal(rec.Hyperparameters)
	if err != nil {
		return fmt.Errorf("encode hyperparameters: %w", err)
	}
	scores, err := json.Marshal(rec.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	q := s.db.Rebind(`INSERT INTO model_registry (
			version, created_at, train_samples, test_samples, strategy, hyperparameters, metrics
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	return s.exec(ctx, "record_model", q,
		rec.Version, rec.CreatedAt.UTC(), rec.TrainSamples, rec.TestSamples, rec.Strategy, string(params), string(scores),
	)
}

// SavePrediction appends an audit row for a served prediction.
func (s *Store) SavePrediction(ctx context.Context, res model.PredictionResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode prediction: %w", err)
	}
	id := res.ID
	if id == "" {
		id = uuid.NewString()
	}
	q := s.db.Rebind(`INSERT INTO prediction_audit (
			id, user_id, current_position, strategy, model_version, confidence_score, result, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	return s.exec(ctx, "save_prediction", q,
		id, res.UserID, res.CurrentRole, string(res.Strategy), res.ModelVersion, res.ConfidenceScore, string(raw), res.GeneratedAt.UTC(),
	)
}

// InsertTransition stores one observed role change and returns its id.
func (s *Store) InsertTransition(ctx context.Context, f model.TransitionFact) (string, error) {
	if strings.TrimSpace(f.FromRole) == "" || strings.TrimSpace(f.ToRole) == "" {
		return "", ErrMissingTransitions
	}
	skills, err := encodeSkills(model.NormalizeSkills(f.SkillsAcquired))
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}
	when := f.TransitionDate
	if when.IsZero() {
		when = time.Now()
	}
	id := uuid.NewString()
	q := s.db.Rebind(`INSERT INTO career_transitions (
			id, user_id, from_role, to_role, skills_acquired, duration_months, success_rating, transition_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	err = s.exec(ctx, "insert_transition", q,
		id, f.UserID, strings.TrimSpace(f.FromRole), strings.TrimSpace(f.ToRole), skills,
		f.DurationMonths, f.SuccessRating, when.UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpsertProfile inserts or replaces a profile. An empty id is assigned.
func (s *Store) UpsertProfile(ctx context.Context, p model.ProfileSnapshot) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	skills, err := encodeSkills(model.NormalizeSkills(p.Skills))
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}
	var industry *string
	if v := strings.TrimSpace(p.Industry); v != "" {
		industry = &v
	}
	q := s.db.Rebind(`INSERT INTO alumni_profiles (
			id, name, current_position, skills, years_experience, industry, batch_year
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			current_position = excluded.current_position,
			skills = excluded.skills,
			years_experience = excluded.years_experience,
			industry = excluded.industry,
			batch_year = excluded.batch_year`)
	err = s.exec(ctx, "upsert_profile", q,
		p.ID, p.Name, strings.TrimSpace(p.CurrentRole), skills, p.YearsExperience, industry, p.BatchYear,
	)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (s *Store) exec(ctx context.Context, op, q string, args ...any) error {
	err := s.withRetry(ctx, op, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, q, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

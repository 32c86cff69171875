package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
)

type factRow struct {
	UserID         string    `db:"user_id"`
	FromRole       string    `db:"from_role"`
	ToRole         string    `db:"to_role"`
	SkillsAcquired string    `db:"skills_acquired"`
	DurationMonths *int      `db:"duration_months"`
	SuccessRating  *int      `db:"success_rating"`
	TransitionDate time.Time `db:"transition_date"`
}

type trainingRow struct {
	FromRole        string  `db:"from_role"`
	ToRole          string  `db:"to_role"`
	Skills          string  `db:"skills"`
	YearsExperience *int    `db:"years_experience"`
	Industry        *string `db:"industry"`
	DurationMonths  *int    `db:"duration_months"`
	SuccessRating   *int    `db:"success_rating"`
}

type profileRow struct {
	ID              string  `db:"id"`
	Name            string  `db:"name"`
	CurrentPosition string  `db:"current_position"`
	Skills          string  `db:"skills"`
	YearsExperience *int    `db:"years_experience"`
	Industry        *string `db:"industry"`
	BatchYear       int     `db:"batch_year"`
}

type matrixRow struct {
	FromRole          string  `db:"from_role"`
	ToRole            string  `db:"to_role"`
	TransitionCount   int     `db:"transition_count"`
	Probability       float64 `db:"probability"`
	AvgDurationMonths int     `db:"avg_duration_months"`
	RequiredSkills    string  `db:"required_skills"`
	SuccessRate       float64 `db:"success_rate"`
	MatrixVersion     string  `db:"matrix_version"`
}

// Counts summarizes table sizes for stats.
type Counts struct {
	Profiles      int    `json:"profiles" db:"profiles"`
	Transitions   int    `json:"transitions" db:"transitions"`
	MatrixEntries int    `json:"matrix_entries" db:"matrix_entries"`
	Predictions   int    `json:"predictions" db:"predictions"`
	MatrixVersion string `json:"matrix_version,omitempty" db:"matrix_version"`
}

// TransitionFacts returns transitions dated at or after since, oldest first.
func (s *Store) TransitionFacts(ctx context.Context, since time.Time) ([]model.TransitionFact, error) {
	var rows []factRow
	q := s.db.Rebind(`SELECT user_id, from_role, to_role, skills_acquired, duration_months, success_rating, transition_date
		FROM career_transitions
		WHERE transition_date >= ?
		ORDER BY transition_date, id`)
	err := s.read(ctx, "transition_facts", func(ctx context.Context) error {
		rows = rows[:0]
		return s.db.SelectContext(ctx, &rows, q, since.UTC())
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.TransitionFact, 0, len(rows))
	for _, r := range rows {
		skills, err := decodeSkills(r.SkillsAcquired)
		if err != nil {
			return nil, fmt.Errorf("transition facts: %w", err)
		}
		out = append(out, model.TransitionFact{
			UserID:         r.UserID,
			FromRole:       r.FromRole,
			ToRole:         r.ToRole,
			SkillsAcquired: skills,
			DurationMonths: r.DurationMonths,
			SuccessRating:  r.SuccessRating,
			TransitionDate: r.TransitionDate,
		})
	}
	return out, nil
}

// TrainingRows joins transitions since the cutoff with the mover's profile.
// Movers without a profile yield null experience and industry.
func (s *Store) TrainingRows(ctx context.Context, since time.Time) ([]model.TrainingRow, error) {
	var rows []trainingRow
	q := s.db.Rebind(`SELECT t.from_role, t.to_role, COALESCE(p.skills, '[]') AS skills,
			p.years_experience, p.industry, t.duration_months, t.success_rating
		FROM career_transitions t
		LEFT JOIN alumni_profiles p ON p.id = t.user_id
		WHERE t.transition_date >= ?
		ORDER BY t.transition_date, t.id`)
	err := s.read(ctx, "training_rows", func(ctx context.Context) error {
		rows = rows[:0]
		return s.db.SelectContext(ctx, &rows, q, since.UTC())
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.TrainingRow, 0, len(rows))
	for _, r := range rows {
		skills, err := decodeSkills(r.Skills)
		if err != nil {
			return nil, fmt.Errorf("training rows: %w", err)
		}
		out = append(out, model.TrainingRow{
			FromRole:        r.FromRole,
			ToRole:          r.ToRole,
			CurrentSkills:   skills,
			YearsExperience: r.YearsExperience,
			Industry:        r.Industry,
			DurationMonths:  r.DurationMonths,
			SuccessRating:   r.SuccessRating,
		})
	}
	return out, nil
}

// MatrixFor returns the persisted matrix rows for one from_role in the order
// the aggregator wrote them. Role matching is case-insensitive.
func (s *Store) MatrixFor(ctx context.Context, role string) ([]model.TransitionMatrixEntry, error) {
	var rows []matrixRow
	q := s.db.Rebind(`SELECT from_role, to_role, transition_count, probability, avg_duration_months,
			required_skills, success_rate, matrix_version
		FROM career_transition_matrix
		WHERE LOWER(from_role) = ?
		ORDER BY row_order`)
	key := model.RoleKey(role)
	err := s.read(ctx, "matrix_for", func(ctx context.Context) error {
		rows = rows[:0]
		return s.db.SelectContext(ctx, &rows, q, key)
	})
	if err != nil {
		return nil, err
	}
	return toEntries(rows)
}

// Matrix returns every persisted matrix row.
func (s *Store) Matrix(ctx context.Context) ([]model.TransitionMatrixEntry, error) {
	var rows []matrixRow
	q := `SELECT from_role, to_role, transition_count, probability, avg_duration_months,
			required_skills, success_rate, matrix_version
		FROM career_transition_matrix
		ORDER BY row_order`
	err := s.read(ctx, "matrix", func(ctx context.Context) error {
		rows = rows[:0]
		return s.db.SelectContext(ctx, &rows, q)
	})
	if err != nil {
		return nil, err
	}
	return toEntries(rows)
}

// ProfilesInExperienceBand returns profiles whose experience lies in
// [minYears, maxYears]. Profiles with unknown experience are excluded.
func (s *Store) ProfilesInExperienceBand(ctx context.Context, minYears, maxYears int) ([]model.ProfileSnapshot, error) {
	if minYears > maxYears {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidBand, minYears, maxYears)
	}
	var rows []profileRow
	q := s.db.Rebind(`SELECT id, name, current_position, skills, years_experience, industry, batch_year
		FROM alumni_profiles
		WHERE years_experience BETWEEN ? AND ?
		ORDER BY id`)
	err := s.read(ctx, "profiles_in_band", func(ctx context.Context) error {
		rows = rows[:0]
		return s.db.SelectContext(ctx, &rows, q, minYears, maxYears)
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.ProfileSnapshot, 0, len(rows))
	for _, r := range rows {
		p, err := r.snapshot()
		if err != nil {
			return nil, fmt.Errorf("profiles in band: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Profile returns one profile by id.
func (s *Store) Profile(ctx context.Context, id string) (model.ProfileSnapshot, error) {
	var r profileRow
	q := s.db.Rebind(`SELECT id, name, current_position, skills, years_experience, industry, batch_year
		FROM alumni_profiles WHERE id = ?`)
	err := s.read(ctx, "profile", func(ctx context.Context) error {
		err := s.db.GetContext(ctx, &r, q, id)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: profile %s", ErrNotFound, id)
		}
		return err
	})
	if err != nil {
		return model.ProfileSnapshot{}, err
	}
	return r.snapshot()
}

// Counts returns table sizes and the current matrix version.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	q := `SELECT
			(SELECT COUNT(*) FROM alumni_profiles) AS profiles,
			(SELECT COUNT(*) FROM career_transitions) AS transitions,
			(SELECT COUNT(*) FROM career_transition_matrix) AS matrix_entries,
			(SELECT COUNT(*) FROM prediction_audit) AS predictions,
			COALESCE((SELECT MAX(matrix_version) FROM career_transition_matrix), '') AS matrix_version`
	err := s.read(ctx, "counts", func(ctx context.Context) error {
		return s.db.GetContext(ctx, &c, q)
	})
	return c, err
}

func (r profileRow) snapshot() (model.ProfileSnapshot, error) {
	skills, err := decodeSkills(r.Skills)
	if err != nil {
		return model.ProfileSnapshot{}, err
	}
	p := model.ProfileSnapshot{
		ID:          r.ID,
		Name:        r.Name,
		CurrentRole: r.CurrentPosition,
		Skills:      skills,
		BatchYear:   r.BatchYear,
	}
	if r.YearsExperience != nil {
		p.YearsExperience = *r.YearsExperience
	}
	if r.Industry != nil {
		p.Industry = *r.Industry
	}
	return p, nil
}

func toEntries(rows []matrixRow) ([]model.TransitionMatrixEntry, error) {
	out := make([]model.TransitionMatrixEntry, 0, len(rows))
	for _, r := range rows {
		skills, err := decodeSkills(r.RequiredSkills)
		if err != nil {
			return nil, fmt.Errorf("matrix rows: %w", err)
		}
		out = append(out, model.TransitionMatrixEntry{
			FromRole:          r.FromRole,
			ToRole:            r.ToRole,
			TransitionCount:   r.TransitionCount,
			Probability:       r.Probability,
			AvgDurationMonths: r.AvgDurationMonths,
			RequiredSkills:    skills,
			SuccessRate:       r.SuccessRate,
			MatrixVersion:     r.MatrixVersion,
		})
	}
	return out, nil
}

func decodeSkills(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var skills []string
	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return nil, fmt.Errorf("decode skills %q: %w", raw, err)
	}
	if skills == nil {
		skills = []string{}
	}
	return skills, nil
}

func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

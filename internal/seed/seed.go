// Package seed generates synthetic alumni career histories and writes them
// to a data source. Output is deterministic for a given seed.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
)

// Generation bounds.
const (
	DefaultAlumni  = 200
	DefaultWorkers = 4

	minHops          = 1
	maxHops          = 3
	minTenureMonths  = 12
	tenureSpanMonths = 25
	maxLeadMonths    = 6
	minRating        = 2
	extraSkills      = 2
	firstBatchYear   = 2005
)

// ErrInvalidConfig is returned for non-positive sizes.
var ErrInvalidConfig = errors.New("seed: invalid config")

// Writer stores profiles and transitions.
type Writer interface {
	UpsertProfile(ctx context.Context, p model.ProfileSnapshot) (string, error)
	InsertTransition(ctx context.Context, f model.TransitionFact) (string, error)
}

// Config controls generation.
type Config struct {
	Alumni  int
	Seed    int64
	Workers int
	// Now anchors transition dates; zero means time.Now.
	Now time.Time
}

// History is one alumnus and the moves that led to their current role.
type History struct {
	Profile     model.ProfileSnapshot
	Transitions []model.TransitionFact
}

// Stats summarizes a Write.
type Stats struct {
	Profiles    int           `json:"profiles"`
	Transitions int           `json:"transitions"`
	Duration    time.Duration `json:"duration"`
}

// Generate builds cfg.Alumni histories. Each alumnus draws from its own
// stream, so the result does not depend on worker count.
func Generate(cfg Config) ([]History, error) {
	if cfg.Alumni <= 0 {
		return nil, fmt.Errorf("%w: alumni must be positive", ErrInvalidConfig)
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	out := make([]History, cfg.Alumni)
	for i := range out {
		rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(i)))
		out[i] = generateOne(rng, cfg.Seed, i, now.UTC())
	}
	return out, nil
}

// Write stores histories with up to workers concurrent writers. Profiles
// are written before their transitions.
func Write(ctx context.Context, w Writer, histories []History, workers int) (Stats, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	start := time.Now()
	var profiles, transitions atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range histories {
		h := histories[i]
		g.Go(func() error {
			if _, err := w.UpsertProfile(gctx, h.Profile); err != nil {
				return fmt.Errorf("profile %s: %w", h.Profile.ID, err)
			}
			profiles.Add(1)
			for _, f := range h.Transitions {
				if _, err := w.InsertTransition(gctx, f); err != nil {
					return fmt.Errorf("transition %s -> %s: %w", f.FromRole, f.ToRole, err)
				}
				transitions.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	stats := Stats{
		Profiles:    int(profiles.Load()),
		Transitions: int(transitions.Load()),
		Duration:    time.Since(start),
	}
	logger.Get().Info(ctx, "seeded alumni histories",
		logger.Int("profiles", stats.Profiles),
		logger.Int("transitions", stats.Transitions),
		logger.Duration("duration", stats.Duration),
	)
	return stats, err
}

// Run generates and writes in one step.
func Run(ctx context.Context, w Writer, cfg Config) (Stats, error) {
	histories, err := Generate(cfg)
	if err != nil {
		return Stats{}, err
	}
	return Write(ctx, w, histories, cfg.Workers)
}

func generateOne(rng *rand.Rand, seed int64, index int, now time.Time) History {
	role := entryRoles[rng.IntN(len(entryRoles))]
	skills := append([]string(nil), baseSkills[role]...)

	type move struct {
		from, to string
		learned  []string
		months   int
		rating   int
	}
	hops := minHops + rng.IntN(maxHops-minHops+1)
	moves := make([]move, 0, hops)
	for range hops {
		next, ok := pickNext(rng, role)
		if !ok {
			break
		}
		learned := append([]string(nil), next.skills...)
		for range rng.IntN(extraSkills + 1) {
			learned = append(learned, skillPool[rng.IntN(len(skillPool))])
		}
		moves = append(moves, move{
			from:    role,
			to:      next.role,
			learned: learned,
			months:  minTenureMonths + rng.IntN(tenureSpanMonths),
			rating:  minRating + rng.IntN(model.MaxSuccessRating-minRating+1),
		})
		skills = append(skills, learned...)
		role = next.role
	}

	userID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.FormatInt(seed, 10)+"/"+strconv.Itoa(index))).String()

	// Walk backwards from the most recent move so dates stay ordered.
	facts := make([]model.TransitionFact, len(moves))
	when := now.AddDate(0, -rng.IntN(maxLeadMonths+1), -rng.IntN(28))
	totalMonths := 0
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		months, rating := m.months, m.rating
		facts[i] = model.TransitionFact{
			UserID:         userID,
			FromRole:       m.from,
			ToRole:         m.to,
			SkillsAcquired: model.NormalizeSkills(m.learned),
			DurationMonths: &months,
			SuccessRating:  &rating,
			TransitionDate: when,
		}
		when = when.AddDate(0, -months, 0)
		totalMonths += months
	}

	years := totalMonths/12 + rng.IntN(3)
	return History{
		Profile: model.ProfileSnapshot{
			ID:              userID,
			Name:            fmt.Sprintf("Alumnus %03d", index+1),
			CurrentRole:     role,
			Skills:          model.NormalizeSkills(skills),
			YearsExperience: years,
			Industry:        industries[rng.IntN(len(industries))],
			BatchYear:       max(firstBatchYear, now.Year()-years-1),
		},
		Transitions: facts,
	}
}

func pickNext(rng *rand.Rand, role string) (step, bool) {
	steps := ladder[role]
	if len(steps) == 0 {
		return step{}, false
	}
	total := 0
	for _, s := range steps {
		total += s.weight
	}
	n := rng.IntN(total)
	for _, s := range steps {
		if n < s.weight {
			return s, true
		}
		n -= s.weight
	}
	return steps[len(steps)-1], true
}

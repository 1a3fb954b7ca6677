package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Princeaman007/agence/internal/domain/model"
)

var ErrAnswerSetNotFound = errors.New("answer set not found")

type AnswerSetRepo struct {
	pool *pgxpool.Pool
}

func NewAnswerSetRepo(pool *pgxpool.Pool) *AnswerSetRepo {
	return &AnswerSetRepo{pool: pool}
}

const answerSetColumns = `user_id,
	openness, conscientiousness, extraversion, agreeableness, neuroticism,
	family, career, adventure, stability, spirituality, creativity,
	social, activity, routine, spending,
	wants_children, wants_marriage, career_ambition, travel_desire,
	db_smoking, db_pets, db_different_religion, db_long_distance, db_children_from_previous,
	is_completed, completed_at, created_at, updated_at`

func scanAnswerSet(row pgx.Row) (model.AnswerSet, error) {
	var s model.AnswerSet
	err := row.Scan(
		&s.UserID,
		&s.Personality.Openness,
		&s.Personality.Conscientiousness,
		&s.Personality.Extraversion,
		&s.Personality.Agreeableness,
		&s.Personality.Neuroticism,
		&s.Values.Family,
		&s.Values.Career,
		&s.Values.Adventure,
		&s.Values.Stability,
		&s.Values.Spirituality,
		&s.Values.Creativity,
		&s.Lifestyle.Social,
		&s.Lifestyle.Activity,
		&s.Lifestyle.Routine,
		&s.Lifestyle.Spending,
		&s.LifeGoals.WantsChildren,
		&s.LifeGoals.WantsMarriage,
		&s.LifeGoals.CareerAmbition,
		&s.LifeGoals.TravelDesire,
		&s.Dealbreakers.Smoking,
		&s.Dealbreakers.Pets,
		&s.Dealbreakers.DifferentReligion,
		&s.Dealbreakers.LongDistance,
		&s.Dealbreakers.ChildrenFromPrevious,
		&s.IsCompleted,
		&s.CompletedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// Upsert fully replaces the user's answer set; a resubmission overwrites
// every answer, including ones the new submission leaves blank.
func (r *AnswerSetRepo) Upsert(ctx context.Context, set model.AnswerSet) (model.AnswerSet, error) {
	if set.UserID <= 0 {
		return model.AnswerSet{}, fmt.Errorf("invalid answer set payload")
	}
	if r.pool == nil {
		return model.AnswerSet{}, fmt.Errorf("postgres pool is nil")
	}

	saved, err := scanAnswerSet(r.pool.QueryRow(ctx, `
INSERT INTO answer_sets (
	user_id,
	openness, conscientiousness, extraversion, agreeableness, neuroticism,
	family, career, adventure, stability, spirituality, creativity,
	social, activity, routine, spending,
	wants_children, wants_marriage, career_ambition, travel_desire,
	db_smoking, db_pets, db_different_religion, db_long_distance, db_children_from_previous,
	is_completed, completed_at, created_at, updated_at
) VALUES (
	$1,
	$2, $3, $4, $5, $6,
	$7, $8, $9, $10, $11, $12,
	$13, $14, $15, $16,
	$17, $18, $19, $20,
	$21, $22, $23, $24, $25,
	$26, $27, NOW(), NOW()
)
ON CONFLICT (user_id) DO UPDATE SET
	openness = EXCLUDED.openness,
	conscientiousness = EXCLUDED.conscientiousness,
	extraversion = EXCLUDED.extraversion,
	agreeableness = EXCLUDED.agreeableness,
	neuroticism = EXCLUDED.neuroticism,
	family = EXCLUDED.family,
	career = EXCLUDED.career,
	adventure = EXCLUDED.adventure,
	stability = EXCLUDED.stability,
	spirituality = EXCLUDED.spirituality,
	creativity = EXCLUDED.creativity,
	social = EXCLUDED.social,
	activity = EXCLUDED.activity,
	routine = EXCLUDED.routine,
	spending = EXCLUDED.spending,
	wants_children = EXCLUDED.wants_children,
	wants_marriage = EXCLUDED.wants_marriage,
	career_ambition = EXCLUDED.career_ambition,
	travel_desire = EXCLUDED.travel_desire,
	db_smoking = EXCLUDED.db_smoking,
	db_pets = EXCLUDED.db_pets,
	db_different_religion = EXCLUDED.db_different_religion,
	db_long_distance = EXCLUDED.db_long_distance,
	db_children_from_previous = EXCLUDED.db_children_from_previous,
	is_completed = EXCLUDED.is_completed,
	completed_at = EXCLUDED.completed_at,
	updated_at = NOW()
RETURNING `+answerSetColumns+`
`,
		set.UserID,
		set.Personality.Openness, set.Personality.Conscientiousness, set.Personality.Extraversion,
		set.Personality.Agreeableness, set.Personality.Neuroticism,
		set.Values.Family, set.Values.Career, set.Values.Adventure,
		set.Values.Stability, set.Values.Spirituality, set.Values.Creativity,
		set.Lifestyle.Social, set.Lifestyle.Activity, set.Lifestyle.Routine, set.Lifestyle.Spending,
		set.LifeGoals.WantsChildren, set.LifeGoals.WantsMarriage,
		set.LifeGoals.CareerAmbition, set.LifeGoals.TravelDesire,
		set.Dealbreakers.Smoking, set.Dealbreakers.Pets, set.Dealbreakers.DifferentReligion,
		set.Dealbreakers.LongDistance, set.Dealbreakers.ChildrenFromPrevious,
		set.IsCompleted, set.CompletedAt,
	))
	if err != nil {
		return model.AnswerSet{}, fmt.Errorf("upsert answer set: %w", err)
	}

	return saved, nil
}

func (r *AnswerSetRepo) Get(ctx context.Context, userID int64) (model.AnswerSet, error) {
	if userID <= 0 {
		return model.AnswerSet{}, ErrAnswerSetNotFound
	}
	if r.pool == nil {
		return model.AnswerSet{}, fmt.Errorf("postgres pool is nil")
	}

	set, err := scanAnswerSet(r.pool.QueryRow(ctx, `
SELECT `+answerSetColumns+`
FROM answer_sets
WHERE user_id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.AnswerSet{}, ErrAnswerSetNotFound
		}
		return model.AnswerSet{}, fmt.Errorf("get answer set: %w", err)
	}

	return set, nil
}

// ListCompletedExcept returns every completed answer set except the given
// user's own, for the matching scan.
func (r *AnswerSetRepo) ListCompletedExcept(ctx context.Context, userID int64) ([]model.AnswerSet, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+answerSetColumns+`
FROM answer_sets
WHERE is_completed AND user_id <> $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed answer sets: %w", err)
	}
	defer rows.Close()

	var sets []model.AnswerSet
	for rows.Next() {
		set, err := scanAnswerSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer set: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answer sets: %w", err)
	}

	return sets, nil
}

package compat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Princeaman007/agence/internal/domain/enums"
	"github.com/Princeaman007/agence/internal/domain/model"
	"github.com/Princeaman007/agence/internal/domain/rules"
	pgrepo "github.com/Princeaman007/agence/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("invalid questionnaire payload")
	ErrNotFound         = errors.New("answer set not found")
	ErrTargetNotFound   = errors.New("target user not found")
	ErrTestIncomplete   = errors.New("questionnaire not completed")
	ErrTargetIncomplete = errors.New("target questionnaire not completed")
	ErrPremiumRequired  = errors.New("premium account required")
	ErrDependenciesNil  = errors.New("compat service dependencies are nil")
)

type AnswerStore interface {
	Upsert(ctx context.Context, set model.AnswerSet) (model.AnswerSet, error)
	Get(ctx context.Context, userID int64) (model.AnswerSet, error)
	ListCompletedExcept(ctx context.Context, userID int64) ([]model.AnswerSet, error)
}

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

type Config struct {
	DefaultMinScore int
	DefaultPageSize int
	MaxPageSize     int
}

type Service struct {
	answers AnswerStore
	users   UserStore
	cfg     Config
	now     func() time.Time
}

type Match struct {
	UserID         int64 `json:"user_id"`
	Score          int   `json:"score"`
	HasDealbreaker bool  `json:"has_dealbreaker"`
}

type MatchesResult struct {
	Matches   []Match `json:"matches"`
	Total     int     `json:"total"`
	Displayed int     `json:"displayed"`
}

type DetailsResult struct {
	Overall    rules.CompatibilityResult          `json:"overall"`
	Breakdown  map[string]rules.CategoryBreakdown `json:"breakdown"`
	Strengths  []string                           `json:"strengths"`
	Challenges []string                           `json:"challenges"`
}

func NewService(answers AnswerStore, users UserStore, cfg Config) *Service {
	if cfg.DefaultMinScore <= 0 {
		cfg.DefaultMinScore = 50
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}

	return &Service{
		answers: answers,
		users:   users,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Submit validates and fully replaces the caller's questionnaire; the saved
// set is marked completed.
func (s *Service) Submit(ctx context.Context, userID int64, input model.AnswerSet) (model.AnswerSet, error) {
	if s.answers == nil {
		return model.AnswerSet{}, ErrDependenciesNil
	}
	if userID <= 0 {
		return model.AnswerSet{}, ErrValidation
	}
	if err := validate(input); err != nil {
		return model.AnswerSet{}, err
	}

	completedAt := s.now().UTC()
	input.UserID = userID
	input.IsCompleted = true
	input.CompletedAt = &completedAt

	saved, err := s.answers.Upsert(ctx, input)
	if err != nil {
		return model.AnswerSet{}, fmt.Errorf("save answer set: %w", err)
	}

	return saved, nil
}

func (s *Service) Mine(ctx context.Context, userID int64) (model.AnswerSet, error) {
	if s.answers == nil {
		return model.AnswerSet{}, ErrDependenciesNil
	}

	set, err := s.answers.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAnswerSetNotFound) {
			return model.AnswerSet{}, ErrNotFound
		}
		return model.AnswerSet{}, fmt.Errorf("get answer set: %w", err)
	}

	return set, nil
}

// ScoreAgainst computes the caller's compatibility with one target user.
func (s *Service) ScoreAgainst(ctx context.Context, userID, targetID int64) (rules.CompatibilityResult, error) {
	mine, theirs, err := s.loadPair(ctx, userID, targetID)
	if err != nil {
		return rules.CompatibilityResult{}, err
	}

	return rules.Score(mine, theirs), nil
}

// Matches scans every other completed questionnaire, keeps scores at or
// above minScore, and returns the top page sorted by score.
func (s *Service) Matches(ctx context.Context, userID int64, minScore, limit int) (MatchesResult, error) {
	if s.answers == nil {
		return MatchesResult{}, ErrDependenciesNil
	}
	if minScore <= 0 {
		minScore = s.cfg.DefaultMinScore
	}
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	mine, err := s.completedSet(ctx, userID, ErrTestIncomplete)
	if err != nil {
		return MatchesResult{}, err
	}

	others, err := s.answers.ListCompletedExcept(ctx, userID)
	if err != nil {
		return MatchesResult{}, fmt.Errorf("list candidate answer sets: %w", err)
	}

	matches := []Match{}
	for _, other := range others {
		result := rules.Score(mine, other)
		if result.Score < minScore {
			continue
		}
		matches = append(matches, Match{
			UserID:         other.UserID,
			Score:          result.Score,
			HasDealbreaker: result.HasDealbreaker,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	total := len(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return MatchesResult{
		Matches:   matches,
		Total:     total,
		Displayed: len(matches),
	}, nil
}

// Details returns the per-category breakdown with strengths and challenges.
// Reserved for premium and VIP accounts.
func (s *Service) Details(ctx context.Context, userID, targetID int64) (DetailsResult, error) {
	if s.users == nil {
		return DetailsResult{}, ErrDependenciesNil
	}

	caller, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return DetailsResult{}, ErrNotFound
		}
		return DetailsResult{}, fmt.Errorf("find caller: %w", err)
	}
	if !caller.AccountType.Paid() {
		return DetailsResult{}, ErrPremiumRequired
	}

	mine, theirs, err := s.loadPair(ctx, userID, targetID)
	if err != nil {
		return DetailsResult{}, err
	}

	return DetailsResult{
		Overall: rules.Score(mine, theirs),
		Breakdown: map[string]rules.CategoryBreakdown{
			"personality": rules.CategoryScore(mine, theirs, rules.CategoryPersonality),
			"values":      rules.CategoryScore(mine, theirs, rules.CategoryValues),
			"lifestyle":   rules.CategoryScore(mine, theirs, rules.CategoryLifestyle),
			"life_goals":  rules.CategoryScore(mine, theirs, rules.CategoryLifeGoals),
		},
		Strengths:  rules.Strengths(mine, theirs),
		Challenges: rules.Challenges(mine, theirs),
	}, nil
}

func (s *Service) loadPair(ctx context.Context, userID, targetID int64) (model.AnswerSet, model.AnswerSet, error) {
	if s.answers == nil || s.users == nil {
		return model.AnswerSet{}, model.AnswerSet{}, ErrDependenciesNil
	}
	if targetID <= 0 || targetID == userID {
		return model.AnswerSet{}, model.AnswerSet{}, ErrValidation
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.AnswerSet{}, model.AnswerSet{}, ErrTargetNotFound
		}
		return model.AnswerSet{}, model.AnswerSet{}, fmt.Errorf("find target user: %w", err)
	}

	mine, err := s.completedSet(ctx, userID, ErrTestIncomplete)
	if err != nil {
		return model.AnswerSet{}, model.AnswerSet{}, err
	}
	theirs, err := s.completedSet(ctx, targetID, ErrTargetIncomplete)
	if err != nil {
		return model.AnswerSet{}, model.AnswerSet{}, err
	}

	return mine, theirs, nil
}

func (s *Service) completedSet(ctx context.Context, userID int64, incomplete error) (model.AnswerSet, error) {
	set, err := s.answers.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAnswerSetNotFound) {
			return model.AnswerSet{}, incomplete
		}
		return model.AnswerSet{}, fmt.Errorf("get answer set: %w", err)
	}
	if !set.IsCompleted {
		return model.AnswerSet{}, incomplete
	}
	return set, nil
}

func validate(input model.AnswerSet) error {
	for _, v := range []*int{
		input.Personality.Openness, input.Personality.Conscientiousness, input.Personality.Extraversion,
		input.Personality.Agreeableness, input.Personality.Neuroticism,
		input.Values.Family, input.Values.Career, input.Values.Adventure,
		input.Values.Stability, input.Values.Spirituality, input.Values.Creativity,
	} {
		if v != nil && (*v < 1 || *v > 10) {
			return ErrValidation
		}
	}

	if v := input.Lifestyle.Social; v != "" && !enums.ValidSocialAnswer(v) {
		return ErrValidation
	}
	if v := input.Lifestyle.Activity; v != "" && !enums.ValidActivityAnswer(v) {
		return ErrValidation
	}
	if v := input.Lifestyle.Routine; v != "" && !enums.ValidRoutineAnswer(v) {
		return ErrValidation
	}
	if v := input.Lifestyle.Spending; v != "" && !enums.ValidSpendingAnswer(v) {
		return ErrValidation
	}

	if v := input.LifeGoals.WantsChildren; v != "" && !enums.ValidChildrenAnswer(v) {
		return ErrValidation
	}
	if v := input.LifeGoals.WantsMarriage; v != "" && !enums.ValidMarriageAnswer(v) {
		return ErrValidation
	}
	if v := input.LifeGoals.CareerAmbition; v != "" && !enums.ValidCareerAnswer(v) {
		return ErrValidation
	}
	if v := input.LifeGoals.TravelDesire; v != "" && !enums.ValidTravelAnswer(v) {
		return ErrValidation
	}

	return nil
}

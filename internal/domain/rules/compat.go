package rules

import (
	"fmt"
	"math"

	"github.com/Princeaman007/agence/internal/domain/enums"
	"github.com/Princeaman007/agence/internal/domain/model"
)

type CompatibilityResult struct {
	Score          int  `json:"score"`
	HasDealbreaker bool `json:"has_dealbreaker"`
}

type Category string

const (
	CategoryPersonality Category = "personality"
	CategoryValues      Category = "values"
	CategoryLifestyle   Category = "lifestyle"
	CategoryLifeGoals   Category = "life_goals"
)

// Score computes the overall compatibility of two answer sets on a 0..100
// scale. Personality traits contribute (10-diff)*0.6 of 6 each, values
// (10-diff)*0.67 of 6.7 each, life goals fixed weights with partial credit
// for "maybe"/"balanced" answers. A question only counts when both sides
// answered it. Any dealbreaker flag on either side multiplies the raw score
// by 0.3 before normalization.
func Score(a, b model.AnswerSet) CompatibilityResult {
	var score, max float64

	for _, f := range personalityFields(a.Personality, b.Personality) {
		if f.a == nil || f.b == nil {
			continue
		}
		diff := math.Abs(float64(*f.a - *f.b))
		score += (10 - diff) * 0.6
		max += 6
	}

	for _, f := range valuesFields(a.Values, b.Values) {
		if f.a == nil || f.b == nil {
			continue
		}
		diff := math.Abs(float64(*f.a - *f.b))
		score += (10 - diff) * 0.67
		max += 6.7
	}

	if a.LifeGoals.WantsChildren != "" && b.LifeGoals.WantsChildren != "" {
		switch {
		case a.LifeGoals.WantsChildren == b.LifeGoals.WantsChildren:
			score += 10
		case a.LifeGoals.WantsChildren == enums.GoalMaybe || b.LifeGoals.WantsChildren == enums.GoalMaybe:
			score += 5
		}
		max += 10
	}

	if a.LifeGoals.WantsMarriage != "" && b.LifeGoals.WantsMarriage != "" {
		switch {
		case a.LifeGoals.WantsMarriage == b.LifeGoals.WantsMarriage:
			score += 7
		case a.LifeGoals.WantsMarriage == enums.GoalMaybe || b.LifeGoals.WantsMarriage == enums.GoalMaybe:
			score += 3
		}
		max += 7
	}

	goalPairs := [][2]string{
		{a.LifeGoals.CareerAmbition, b.LifeGoals.CareerAmbition},
		{a.LifeGoals.TravelDesire, b.LifeGoals.TravelDesire},
	}
	for _, p := range goalPairs {
		if p[0] == "" || p[1] == "" {
			continue
		}
		switch {
		case p[0] == p[1]:
			score += 6.5
		case p[0] == enums.CareerBalanced || p[1] == enums.CareerBalanced:
			score += 3
		}
		max += 6.5
	}

	hasDealbreaker := a.Dealbreakers.Any() || b.Dealbreakers.Any()
	if hasDealbreaker {
		score *= 0.3
	}

	normalized := 0
	if max > 0 {
		normalized = int(math.Round(score / max * 100))
	}
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 100 {
		normalized = 100
	}

	return CompatibilityResult{Score: normalized, HasDealbreaker: hasDealbreaker}
}

// CategoryBreakdown is a per-category score with field-level detail. Numeric
// categories fill Numeric, enum categories fill Choices.
type CategoryBreakdown struct {
	Score   int                      `json:"score"`
	Numeric map[string]NumericDetail `json:"numeric,omitempty"`
	Choices map[string]ChoiceDetail  `json:"choices,omitempty"`
}

type NumericDetail struct {
	Yours         int `json:"yours"`
	Theirs        int `json:"theirs"`
	Compatibility int `json:"compatibility"`
}

type ChoiceDetail struct {
	Yours  string `json:"yours"`
	Theirs string `json:"theirs"`
	Match  bool   `json:"match"`
}

// CategoryScore scores a single questionnaire category in isolation. Numeric
// fields rate (10-diff)*10 out of 100, enum fields exact-match out of 100;
// the category score is the normalized average over answered fields.
func CategoryScore(a, b model.AnswerSet, category Category) CategoryBreakdown {
	switch category {
	case CategoryPersonality:
		return numericBreakdown(personalityFields(a.Personality, b.Personality))
	case CategoryValues:
		return numericBreakdown(valuesFields(a.Values, b.Values))
	case CategoryLifestyle:
		return choiceBreakdown(lifestyleFields(a.Lifestyle, b.Lifestyle))
	case CategoryLifeGoals:
		return choiceBreakdown(lifeGoalsFields(a.LifeGoals, b.LifeGoals))
	}
	return CategoryBreakdown{}
}

// Strengths lists shared high points: values both sides rate at least 8,
// and identical children/marriage answers.
func Strengths(a, b model.AnswerSet) []string {
	strengths := []string{}

	valueNames := map[string]string{
		"family":       "family",
		"career":       "career",
		"adventure":    "adventure",
		"stability":    "stability",
		"spirituality": "spirituality",
		"creativity":   "creativity",
	}
	for _, f := range valuesFields(a.Values, b.Values) {
		if f.a != nil && f.b != nil && *f.a >= 8 && *f.b >= 8 {
			strengths = append(strengths, fmt.Sprintf("You both place great importance on %s", valueNames[f.name]))
		}
	}

	if a.LifeGoals.WantsChildren != "" && a.LifeGoals.WantsChildren == b.LifeGoals.WantsChildren {
		strengths = append(strengths, "You share the same vision about children")
	}
	if a.LifeGoals.WantsMarriage != "" && a.LifeGoals.WantsMarriage == b.LifeGoals.WantsMarriage {
		strengths = append(strengths, "You have the same expectations about marriage")
	}

	return strengths
}

// Challenges lists friction points: any dealbreaker flag on either side, and
// personality gaps of 7 or more.
func Challenges(a, b model.AnswerSet) []string {
	challenges := []string{}

	dealbreakers := []struct {
		flagged bool
		label   string
	}{
		{a.Dealbreakers.Smoking || b.Dealbreakers.Smoking, "smoking"},
		{a.Dealbreakers.Pets || b.Dealbreakers.Pets, "pets"},
		{a.Dealbreakers.DifferentReligion || b.Dealbreakers.DifferentReligion, "religious differences"},
		{a.Dealbreakers.LongDistance || b.Dealbreakers.LongDistance, "long distance"},
		{a.Dealbreakers.ChildrenFromPrevious || b.Dealbreakers.ChildrenFromPrevious, "children from a previous relationship"},
	}
	for _, d := range dealbreakers {
		if d.flagged {
			challenges = append(challenges, fmt.Sprintf("Disagreement over %s", d.label))
		}
	}

	traitNames := map[string]string{
		"openness":          "openness",
		"conscientiousness": "conscientiousness",
		"extraversion":      "extraversion",
		"agreeableness":     "agreeableness",
		"neuroticism":       "neuroticism",
	}
	for _, f := range personalityFields(a.Personality, b.Personality) {
		if f.a == nil || f.b == nil {
			continue
		}
		diff := *f.a - *f.b
		if diff < 0 {
			diff = -diff
		}
		if diff >= 7 {
			challenges = append(challenges, fmt.Sprintf("Significant difference in %s", traitNames[f.name]))
		}
	}

	return challenges
}

type numericField struct {
	name string
	a, b *int
}

type choiceField struct {
	name string
	a, b string
}

func personalityFields(x, y model.Personality) []numericField {
	return []numericField{
		{"openness", x.Openness, y.Openness},
		{"conscientiousness", x.Conscientiousness, y.Conscientiousness},
		{"extraversion", x.Extraversion, y.Extraversion},
		{"agreeableness", x.Agreeableness, y.Agreeableness},
		{"neuroticism", x.Neuroticism, y.Neuroticism},
	}
}

func valuesFields(x, y model.Values) []numericField {
	return []numericField{
		{"family", x.Family, y.Family},
		{"career", x.Career, y.Career},
		{"adventure", x.Adventure, y.Adventure},
		{"stability", x.Stability, y.Stability},
		{"spirituality", x.Spirituality, y.Spirituality},
		{"creativity", x.Creativity, y.Creativity},
	}
}

func lifestyleFields(x, y model.Lifestyle) []choiceField {
	return []choiceField{
		{"social", x.Social, y.Social},
		{"activity", x.Activity, y.Activity},
		{"routine", x.Routine, y.Routine},
		{"spending", x.Spending, y.Spending},
	}
}

func lifeGoalsFields(x, y model.LifeGoals) []choiceField {
	return []choiceField{
		{"wants_children", x.WantsChildren, y.WantsChildren},
		{"wants_marriage", x.WantsMarriage, y.WantsMarriage},
		{"career_ambition", x.CareerAmbition, y.CareerAmbition},
		{"travel_desire", x.TravelDesire, y.TravelDesire},
	}
}

func numericBreakdown(fields []numericField) CategoryBreakdown {
	var score, max float64
	details := make(map[string]NumericDetail)

	for _, f := range fields {
		if f.a == nil || f.b == nil {
			continue
		}
		diff := math.Abs(float64(*f.a - *f.b))
		itemScore := (10 - diff) * 10
		details[f.name] = NumericDetail{
			Yours:         *f.a,
			Theirs:        *f.b,
			Compatibility: int(math.Round(itemScore)),
		}
		score += itemScore
		max += 100
	}

	out := CategoryBreakdown{Numeric: details}
	if max > 0 {
		out.Score = int(math.Round(score / max * 100))
	}
	return out
}

func choiceBreakdown(fields []choiceField) CategoryBreakdown {
	var score, max float64
	details := make(map[string]ChoiceDetail)

	for _, f := range fields {
		if f.a == "" || f.b == "" {
			continue
		}
		match := f.a == f.b
		details[f.name] = ChoiceDetail{Yours: f.a, Theirs: f.b, Match: match}
		if match {
			score += 100
		}
		max += 100
	}

	out := CategoryBreakdown{Choices: details}
	if max > 0 {
		out.Score = int(math.Round(score / max * 100))
	}
	return out
}

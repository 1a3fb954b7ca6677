package model

import "time"

// AnswerSet holds one user's questionnaire answers. Numeric answers are
// pointers so an unanswered question is distinguishable from a 0; enum
// answers use "" for absent.
type AnswerSet struct {
	UserID       int64        `json:"user_id"`
	Personality  Personality  `json:"personality"`
	Values       Values       `json:"values"`
	Lifestyle    Lifestyle    `json:"lifestyle"`
	LifeGoals    LifeGoals    `json:"life_goals"`
	Dealbreakers Dealbreakers `json:"dealbreakers"`
	IsCompleted  bool         `json:"is_completed"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Personality scores follow the Big Five traits, each on a 1..10 scale.
type Personality struct {
	Openness          *int `json:"openness,omitempty"`
	Conscientiousness *int `json:"conscientiousness,omitempty"`
	Extraversion      *int `json:"extraversion,omitempty"`
	Agreeableness     *int `json:"agreeableness,omitempty"`
	Neuroticism       *int `json:"neuroticism,omitempty"`
}

// Values are personal importance ratings, each on a 1..10 scale.
type Values struct {
	Family       *int `json:"family,omitempty"`
	Career       *int `json:"career,omitempty"`
	Adventure    *int `json:"adventure,omitempty"`
	Stability    *int `json:"stability,omitempty"`
	Spirituality *int `json:"spirituality,omitempty"`
	Creativity   *int `json:"creativity,omitempty"`
}

type Lifestyle struct {
	Social   string `json:"social,omitempty"`
	Activity string `json:"activity,omitempty"`
	Routine  string `json:"routine,omitempty"`
	Spending string `json:"spending,omitempty"`
}

type LifeGoals struct {
	WantsChildren  string `json:"wants_children,omitempty"`
	WantsMarriage  string `json:"wants_marriage,omitempty"`
	CareerAmbition string `json:"career_ambition,omitempty"`
	TravelDesire   string `json:"travel_desire,omitempty"`
}

type Dealbreakers struct {
	Smoking              bool `json:"smoking"`
	Pets                 bool `json:"pets"`
	DifferentReligion    bool `json:"different_religion"`
	LongDistance         bool `json:"long_distance"`
	ChildrenFromPrevious bool `json:"children_from_previous"`
}

func (d Dealbreakers) Any() bool {
	return d.Smoking || d.Pets || d.DifferentReligion || d.LongDistance || d.ChildrenFromPrevious
}

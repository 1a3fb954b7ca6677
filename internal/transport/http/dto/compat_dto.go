package dto

import (
	"github.com/Princeaman007/agence/internal/domain/model"
	"github.com/Princeaman007/agence/internal/services/compat"
)

type SubmitTestRequest struct {
	Personality  model.Personality  `json:"personality"`
	Values       model.Values       `json:"values"`
	Lifestyle    model.Lifestyle    `json:"lifestyle"`
	LifeGoals    model.LifeGoals    `json:"life_goals"`
	Dealbreakers model.Dealbreakers `json:"dealbreakers"`
}

type SubmitTestResponse struct {
	OK        bool            `json:"ok"`
	AnswerSet model.AnswerSet `json:"answer_set"`
}

type CalculateResponse struct {
	UserID         int64 `json:"user_id"`
	Score          int   `json:"score"`
	HasDealbreaker bool  `json:"has_dealbreaker"`
}

type MatchesResponse struct {
	Matches   []compat.Match `json:"matches"`
	Total     int            `json:"total"`
	Displayed int            `json:"displayed"`
}

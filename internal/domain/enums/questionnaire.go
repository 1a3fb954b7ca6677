package enums

// Answer tokens for the life-goal questions. Children and marriage share
// the yes/no/maybe scale; children adds already_parent.
const (
	GoalYes           = "yes"
	GoalNo            = "no"
	GoalMaybe         = "maybe"
	GoalAlreadyParent = "already_parent"
)

// Answer tokens for career ambition.
const (
	CareerVeryAmbitious     = "very_ambitious"
	CareerBalanced          = "balanced"
	CareerPersonalLifeFirst = "personal_life_first"
)

// Answer tokens for travel desire.
const (
	TravelPassionate = "passionate"
	TravelOccasional = "occasional"
	TravelHomebody   = "homebody"
)

// Answer tokens for the lifestyle questions.
const (
	SocialIntrovert = "introvert"
	SocialAmbivert  = "ambivert"
	SocialExtrovert = "extrovert"

	ActivitySedentary  = "sedentary"
	ActivityModerate   = "moderate"
	ActivityVeryActive = "very_active"

	RoutineFlexible       = "flexible"
	RoutineStructured     = "structured"
	RoutineVeryStructured = "very_structured"

	SpendingFrugal   = "frugal"
	SpendingBalanced = "balanced"
	SpendingGenerous = "generous"
)

func ValidChildrenAnswer(v string) bool {
	switch v {
	case GoalYes, GoalNo, GoalMaybe, GoalAlreadyParent:
		return true
	}
	return false
}

func ValidMarriageAnswer(v string) bool {
	switch v {
	case GoalYes, GoalNo, GoalMaybe:
		return true
	}
	return false
}

func ValidCareerAnswer(v string) bool {
	switch v {
	case CareerVeryAmbitious, CareerBalanced, CareerPersonalLifeFirst:
		return true
	}
	return false
}

func ValidTravelAnswer(v string) bool {
	switch v {
	case TravelPassionate, TravelOccasional, TravelHomebody:
		return true
	}
	return false
}

func ValidSocialAnswer(v string) bool {
	switch v {
	case SocialIntrovert, SocialAmbivert, SocialExtrovert:
		return true
	}
	return false
}

func ValidActivityAnswer(v string) bool {
	switch v {
	case ActivitySedentary, ActivityModerate, ActivityVeryActive:
		return true
	}
	return false
}

func ValidRoutineAnswer(v string) bool {
	switch v {
	case RoutineFlexible, RoutineStructured, RoutineVeryStructured:
		return true
	}
	return false
}

func ValidSpendingAnswer(v string) bool {
	switch v {
	case SpendingFrugal, SpendingBalanced, SpendingGenerous:
		return true
	}
	return false
}

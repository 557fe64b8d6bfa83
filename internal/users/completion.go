package users

// Profile completion scoring: registration is worth 30 points, a positive
// monthly income and a positive spending limit 35 points each.
const (
	completionBase   = 30
	completionIncome = 35
	completionLimit  = 35
)

// ProfileCompletion scores how complete a financial profile is, in [0,100].
// Pure function of the profile snapshot.
func ProfileCompletion(p Profile) int {
	score := completionBase
	if p.MonthlyIncome.IsPositive() {
		score += completionIncome
	}
	if p.SpendingLimit.IsPositive() {
		score += completionLimit
	}
	if score > 100 {
		score = 100
	}
	return score
}

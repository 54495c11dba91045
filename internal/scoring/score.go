// Package scoring turns a set of answers into a score, a verdict and the list of
// triggered action plans. Everything here is pure: no I/O, no clocks, no state
// beyond the Collector a caller explicitly holds.
package scoring

import (
	"adaudit/internal/model"
	"math"
)

// Score reduces answers against questions.
//
// Only answered questions count: each contributes the chosen option's score to
// the total and the question's best option score to the maximum. Unanswered
// questions (and answers with an out-of-range option) are left out of both, so
// an unanswered question never counts as a worst answer. Risks follow question
// order.
func Score(questions []model.Question, answers map[string]int) model.Result {
	res := model.Result{
		TotalQuestions: len(questions),
		Risks:          make([]model.Risk, 0),
	}
	for _, q := range questions {
		idx, ok := answers[q.ID]
		if !ok || idx < 0 || idx >= len(q.Options) {
			continue
		}
		chosen := q.Options[idx]
		res.AnsweredQuestions++
		res.TotalScore += chosen.Score
		res.MaxPossibleScore += q.MaxScore()
		if chosen.ActionPlan != nil {
			res.Risks = append(res.Risks, model.NewEnrichedRisk(q, chosen))
		}
	}
	res.Percentage = Percentage(res.TotalScore, res.MaxPossibleScore)
	return res
}

// Percentage is round(total/max*100) clamped to [0, 100]; zero when max is not positive
func Percentage(total, max int) int {
	if max <= 0 {
		return 0
	}
	p := int(math.Round(float64(total) / float64(max) * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

package scoring

import "adaudit/internal/model"

// Tier thresholds on the normalized percentage
const (
	WarningFrom = 60
	SuccessFrom = 85
)

var (
	verdictCritical = model.Verdict{Tier: model.TierCritical, Title: "Critical", Message: "Operation at risk"}
	verdictWarning  = model.Verdict{Tier: model.TierWarning, Title: "Warning", Message: "Optimization needed"}
	verdictSuccess  = model.Verdict{Tier: model.TierSuccess, Title: "Success", Message: "Ready to scale"}
)

// Classify maps a percentage onto the three verdict tiers
func Classify(percentage int) model.Verdict {
	switch {
	case percentage < WarningFrom:
		return verdictCritical
	case percentage < SuccessFrom:
		return verdictWarning
	}
	return verdictSuccess
}

// View attaches a freshly computed verdict to an audit
func View(a *model.Audit) model.AuditView {
	return model.AuditView{Audit: a, Verdict: Classify(a.Percentage)}
}

// Summarize aggregates an owner's audits. audits must be newest first.
func Summarize(audits []*model.Audit) model.AuditSummary {
	s := model.AuditSummary{Count: len(audits)}
	if len(audits) == 0 {
		return s
	}
	sum := 0
	for _, a := range audits {
		sum += a.Percentage
	}
	s.AveragePercentage = Percentage(sum, len(audits)*100)
	latest := Classify(audits[0].Percentage).Tier
	s.Latest = &latest
	return s
}

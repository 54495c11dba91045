package model

import "time"

// RiskKind discriminates the shape of a stored risk record
type RiskKind string

const (
	// RiskEnriched records carry the originating question and the chosen label
	RiskEnriched RiskKind = "enriched"
	// RiskPlan records carry only the bare action plan (records written before enrichment)
	RiskPlan RiskKind = "plan"
)

// Risk is a triggered action plan
type Risk struct {
	Kind           RiskKind   `json:"kind" bson:"kind"`
	QuestionID     string     `json:"questionId,omitempty" bson:"questionId,omitempty"`
	QuestionPrompt string     `json:"questionPrompt,omitempty" bson:"questionPrompt,omitempty"`
	Category       Category   `json:"category,omitempty" bson:"category,omitempty"`
	ChosenLabel    string     `json:"chosenLabel,omitempty" bson:"chosenLabel,omitempty"`
	Plan           ActionPlan `json:"plan" bson:"plan"`
}

// NewEnrichedRisk builds a risk record for the option chosen on q
func NewEnrichedRisk(q Question, chosen Option) Risk {
	return Risk{
		Kind:           RiskEnriched,
		QuestionID:     q.ID,
		QuestionPrompt: q.Prompt,
		Category:       q.Category,
		ChosenLabel:    chosen.Label,
		Plan:           *chosen.ActionPlan,
	}
}

// Result is the outcome of scoring an answer set against a question list
type Result struct {
	TotalScore        int    `json:"totalScore" bson:"totalScore"`
	MaxPossibleScore  int    `json:"maxPossibleScore" bson:"maxPossibleScore"`
	Percentage        int    `json:"percentage" bson:"percentage"` // 0-100
	TotalQuestions    int    `json:"totalQuestions" bson:"totalQuestions"`
	AnsweredQuestions int    `json:"answeredQuestions" bson:"answeredQuestions"`
	Risks             []Risk `json:"risks" bson:"risks"`
}

// Audit is the persisted snapshot of one submitted session. Immutable; delete-only.
type Audit struct {
	ID             string         `json:"id" bson:"-"`
	OwnerID        string         `json:"ownerId" bson:"ownerId"`
	BusinessModel  BusinessModel  `json:"businessModel" bson:"businessModel"`
	Channel        Channel        `json:"channel" bson:"channel"`
	CatalogVersion string         `json:"catalogVersion" bson:"catalogVersion"`
	Answers        map[string]int `json:"answers" bson:"answers"`
	Result         `bson:",inline"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// VerdictTier is the qualitative severity of a score
type VerdictTier string

const (
	TierCritical VerdictTier = "critical"
	TierWarning  VerdictTier = "warning"
	TierSuccess  VerdictTier = "success"
)

// Verdict is derived from a percentage on read, never stored
type Verdict struct {
	Tier    VerdictTier `json:"tier"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// AuditView is an audit as shown to its owner
type AuditView struct {
	*Audit
	Verdict Verdict `json:"verdict"`
}

// AuditSummary aggregates an owner's audit history for the dashboard
type AuditSummary struct {
	Count             int          `json:"count"`
	AveragePercentage int          `json:"averagePercentage"`
	Latest            *VerdictTier `json:"latest,omitempty"`
}

// NormalizeRisks fills in Kind on records stored before the field existed
func (a *Audit) NormalizeRisks() {
	for i := range a.Risks {
		if a.Risks[i].Kind != "" {
			continue
		}
		if a.Risks[i].QuestionPrompt != "" {
			a.Risks[i].Kind = RiskEnriched
		} else {
			a.Risks[i].Kind = RiskPlan
		}
	}
}

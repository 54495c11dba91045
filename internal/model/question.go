package model

import "strings"

// Category tags a question with the ad channel it audits
type Category string

const (
	CategoryMeta    Category = "meta"
	CategoryGoogle  Category = "google"
	CategoryGeneral Category = "general" // Kept under every channel filter
)

// Channel is the channel selection made at the start of an audit
type Channel string

const (
	ChannelMeta   Channel = "meta"
	ChannelGoogle Channel = "google"
	ChannelBoth   Channel = "both"
)

// Valid reports whether c is a known channel
func (c Channel) Valid() bool {
	switch c {
	case ChannelMeta, ChannelGoogle, ChannelBoth:
		return true
	}
	return false
}

// Includes reports whether questions of the given category belong to this channel
func (c Channel) Includes(cat Category) bool {
	switch {
	case cat == CategoryGeneral, c == ChannelBoth:
		return true
	case c == ChannelMeta:
		return cat == CategoryMeta
	case c == ChannelGoogle:
		return cat == CategoryGoogle
	}
	return false
}

// BusinessModel selects the catalog segment a session draws its questions from
type BusinessModel string

const (
	BusinessProducts BusinessModel = "products" // Buyer owns the item (e-commerce, infoproducts)
	BusinessServices BusinessModel = "services" // Buyer pays for time or expertise
	BusinessAccess   BusinessModel = "access"   // Events, subscriptions, communities
	BusinessAudience BusinessModel = "audience" // Sponsorship, ads, affiliates
)

// Severity of an action plan
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// ActionPlanDelimiter separates the common excuse from the technical verdict in a plan body
const ActionPlanDelimiter = "###"

// ActionPlan is the remediation record attached to a deficient option
type ActionPlan struct {
	Title    string   `json:"title" yaml:"title" bson:"title"`
	Body     string   `json:"body" yaml:"body" bson:"body"`
	Severity Severity `json:"severity" yaml:"severity" bson:"severity"`
}

// Excuse returns the "common excuse" half of the body, empty when the body has no delimiter
func (p ActionPlan) Excuse() string {
	excuse, _, ok := strings.Cut(p.Body, ActionPlanDelimiter)
	if !ok {
		return ""
	}
	return strings.TrimSpace(excuse)
}

// Verdict returns the "technical verdict" half of the body
func (p ActionPlan) Verdict() string {
	_, verdict, ok := strings.Cut(p.Body, ActionPlanDelimiter)
	if !ok {
		return strings.TrimSpace(p.Body)
	}
	return strings.TrimSpace(verdict)
}

// Option is one selectable answer of a question
type Option struct {
	Label      string      `json:"label" yaml:"label"`
	Score      int         `json:"score" yaml:"score"`                               // 0-100 quality contribution
	ActionPlan *ActionPlan `json:"actionPlan,omitempty" yaml:"actionPlan,omitempty"` // Only on deficient options
}

// Question is a catalog entry; ID must stay stable once published
type Question struct {
	ID       string   `json:"id" yaml:"id"`
	Category Category `json:"category" yaml:"category"`
	Prompt   string   `json:"prompt" yaml:"prompt"`
	Hint     string   `json:"hint,omitempty" yaml:"hint,omitempty"`
	Options  []Option `json:"options" yaml:"options"`
}

// MaxScore returns the highest score among the question's options
func (q Question) MaxScore() int {
	best := 0
	for _, o := range q.Options {
		if o.Score > best {
			best = o.Score
		}
	}
	return best
}

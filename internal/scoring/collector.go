package scoring

import (
	"adaudit/internal/model"
	"errors"
	"fmt"
)

var (
	ErrUnknownQuestion      = errors.New("question is not part of this audit")
	ErrInvalidOption        = errors.New("option index out of range")
	ErrIncompleteSubmission = errors.New("audit has unanswered questions")
)

// Collector holds the selected option per question id for one session.
// It is bound to the filtered question list the session was started with and
// rejects answers to questions outside of it.
type Collector struct {
	questions []model.Question
	index     map[string]int
	answers   map[string]int
}

// NewCollector creates a collector over questions, seeded with previously stored answers.
// Stored answers that no longer match the question list are dropped.
func NewCollector(questions []model.Question, answers map[string]int) *Collector {
	c := &Collector{
		questions: questions,
		index:     make(map[string]int, len(questions)),
		answers:   make(map[string]int, len(answers)),
	}
	for i, q := range questions {
		c.index[q.ID] = i
	}
	for id, opt := range answers {
		_ = c.SetAnswer(id, opt)
	}
	return c
}

// SetAnswer replaces any prior answer for questionID
func (c *Collector) SetAnswer(questionID string, option int) error {
	i, ok := c.index[questionID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	if option < 0 || option >= len(c.questions[i].Options) {
		return fmt.Errorf("%w: question %q has %d options, got %d", ErrInvalidOption, questionID, len(c.questions[i].Options), option)
	}
	c.answers[questionID] = option
	return nil
}

// Answer returns the selected option; ok is false when the question is unanswered
func (c *Collector) Answer(questionID string) (option int, ok bool) {
	option, ok = c.answers[questionID]
	return option, ok
}

// IsComplete reports whether every question has an answer
func (c *Collector) IsComplete() bool {
	return IsComplete(c.questions, c.answers)
}

// Status places the collector in the Empty -> Partial -> Complete progression
func (c *Collector) Status() model.SessionStatus {
	switch {
	case len(c.answers) == 0:
		return model.SessionEmpty
	case c.IsComplete():
		return model.SessionComplete
	}
	return model.SessionPartial
}

// Questions returns the question list the collector is bound to
func (c *Collector) Questions() []model.Question {
	return c.questions
}

// Answers returns a copy of the current answers
func (c *Collector) Answers() map[string]int {
	out := make(map[string]int, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}

// Len returns the number of answered questions
func (c *Collector) Len() int {
	return len(c.answers)
}

// IsComplete reports whether answers covers every question in questions
func IsComplete(questions []model.Question, answers map[string]int) bool {
	for _, q := range questions {
		if _, ok := answers[q.ID]; !ok {
			return false
		}
	}
	return true
}

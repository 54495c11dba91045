package service

import (
	"adaudit/internal/cache"
	"adaudit/internal/catalog"
	"adaudit/internal/model"
	"adaudit/internal/repository"
	"adaudit/internal/scoring"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrPersistence wraps failures of the audit store on submission. The session
// is kept so the owner can retry.
var ErrPersistence = errors.New("could not save audit")

// SessionService drives an owner's in-progress audit from start to submission
type SessionService struct {
	catalog     *catalog.Catalog
	sessions    cache.SessionStore
	audits      repository.AuditRepo
	broadcaster Broadcaster
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	cat *catalog.Catalog,
	sessions cache.SessionStore,
	audits repository.AuditRepo,
	log logrus.FieldLogger,
) *SessionService {
	return &SessionService{
		catalog:  cat,
		sessions: sessions,
		audits:   audits,
		log:      log.WithField("source", "SessionService"),
		now:      time.Now,
	}
}

// SetBroadcaster sets the broadcaster for dashboard events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start opens a new session for the owner, discarding any session still in progress
func (s *SessionService) Start(ctx context.Context, ownerID string, bm model.BusinessModel, ch model.Channel) (*model.SessionView, error) {
	questions, err := s.catalog.Questions(bm, ch)
	if err != nil {
		return nil, err
	}

	if prev, err := s.sessions.Current(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("look up current session: %w", err)
	} else if prev != "" {
		if err := s.sessions.Delete(ctx, &model.Session{ID: prev, OwnerID: ownerID}); err != nil {
			return nil, fmt.Errorf("discard session %s: %w", prev, err)
		}
		s.log.WithFields(logrus.Fields{"owner": ownerID, "session": prev}).Info("previous session discarded")
	}

	now := s.now()
	session := &model.Session{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		BusinessModel: bm,
		Channel:       ch,
		Answers:       map[string]int{},
		StartedAt:     now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"owner":         ownerID,
		"session":       session.ID,
		"businessModel": bm,
		"channel":       ch,
		"questions":     len(questions),
	}).Info("session started")

	return buildView(session, scoring.NewCollector(questions, nil)), nil
}

// Get returns the current view of a session
func (s *SessionService) Get(ctx context.Context, ownerID, id string) (*model.SessionView, error) {
	session, collector, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return buildView(session, collector), nil
}

// Answer records the selected option for a question and moves the cursor past it
func (s *SessionService) Answer(ctx context.Context, ownerID, id, questionID string, option int) (*model.SessionView, error) {
	session, collector, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := collector.SetAnswer(questionID, option); err != nil {
		return nil, err
	}

	questions := collector.Questions()
	for i, q := range questions {
		if q.ID == questionID {
			session.Cursor = min(i+1, len(questions)-1)
			break
		}
	}
	session.Answers = collector.Answers()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return buildView(session, collector), nil
}

// Back moves the cursor to the previous question
func (s *SessionService) Back(ctx context.Context, ownerID, id string) (*model.SessionView, error) {
	session, collector, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if session.Cursor > 0 {
		session.Cursor--
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return buildView(session, collector), nil
}

// Preview scores the session's current answers without saving anything
func (s *SessionService) Preview(ctx context.Context, ownerID, id string) (*model.ScorePreview, error) {
	_, collector, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	res := scoring.Score(collector.Questions(), collector.Answers())
	return &model.ScorePreview{Result: res, Verdict: scoring.Classify(res.Percentage)}, nil
}

// Submit scores a complete session, persists the audit and closes the session
func (s *SessionService) Submit(ctx context.Context, ownerID, id string) (*model.AuditView, error) {
	session, collector, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !collector.IsComplete() {
		return nil, fmt.Errorf("%w: %d of %d answered", scoring.ErrIncompleteSubmission, collector.Len(), len(collector.Questions()))
	}

	audit := &model.Audit{
		OwnerID:        ownerID,
		BusinessModel:  session.BusinessModel,
		Channel:        session.Channel,
		CatalogVersion: s.catalog.Version,
		Answers:        collector.Answers(),
		Result:         scoring.Score(collector.Questions(), collector.Answers()),
		CreatedAt:      s.now().UTC(),
	}
	if _, err := s.audits.Create(ctx, audit); err != nil {
		s.log.WithFields(logrus.Fields{"owner": ownerID, "session": id}).WithError(err).Error("audit not saved")
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := s.sessions.Delete(ctx, session); err != nil {
		// The audit is stored; a leftover session only lingers until its TTL
		s.log.WithFields(logrus.Fields{"owner": ownerID, "session": id}).WithError(err).Warn("session not cleared after submit")
	}

	view := scoring.View(audit)
	s.log.WithFields(logrus.Fields{
		"owner":      ownerID,
		"audit":      audit.ID,
		"percentage": audit.Percentage,
		"risks":      len(audit.Risks),
		"tier":       view.Verdict.Tier,
	}).Info("audit submitted")

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToOwner(ownerID, EventAuditCreated, view)
	}
	return &view, nil
}

// Abandon discards a session without saving anything
func (s *SessionService) Abandon(ctx context.Context, ownerID, id string) error {
	session, _, err := s.load(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, session)
}

// load fetches a session owned by ownerID together with a collector over its questions
func (s *SessionService) load(ctx context.Context, ownerID, id string) (*model.Session, *scoring.Collector, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.OwnerID != ownerID {
		return nil, nil, cache.ErrSessionNotFound
	}
	questions, err := s.catalog.Questions(session.BusinessModel, session.Channel)
	if err != nil {
		return nil, nil, err
	}
	return session, scoring.NewCollector(questions, session.Answers), nil
}

func buildView(session *model.Session, c *scoring.Collector) *model.SessionView {
	questions := c.Questions()
	view := &model.SessionView{
		ID:            session.ID,
		BusinessModel: session.BusinessModel,
		Channel:       session.Channel,
		Status:        c.Status(),
		Total:         len(questions),
		Answered:      c.Len(),
		Answers:       c.Answers(),
	}
	if len(questions) == 0 {
		return view
	}

	cursor := min(max(session.Cursor, 0), len(questions)-1)
	q := questions[cursor]
	view.Current = cursor
	view.Question = &q
	view.Progress = int(math.Round(float64(cursor+1) / float64(len(questions)) * 100))
	if opt, ok := c.Answer(q.ID); ok {
		view.Selected = &opt
	}
	return view
}

package service

import (
	"adaudit/internal/cache"
	"adaudit/internal/catalog"
	"adaudit/internal/model"
	"adaudit/internal/repository"
	"adaudit/internal/scoring"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	ownerID string
	msgType string
	payload interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []event
}

func (b *recordingBroadcaster) BroadcastToOwner(ownerID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{ownerID, msgType, payload})
}

type failingRepo struct {
	repository.AuditRepo
}

func (failingRepo) Create(ctx context.Context, audit *model.Audit) (string, error) {
	return "", errors.New("connection refused")
}

type fixture struct {
	cat      *catalog.Catalog
	sessions *SessionService
	audits   *AuditService
	events   *recordingBroadcaster
	repo     repository.AuditRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	repo := repository.NewMemoryAuditRepo()
	events := &recordingBroadcaster{}

	sessions := NewSessionService(cat, cache.NewMemorySessionCache(time.Hour), repo, log)
	sessions.SetBroadcaster(events)
	audits := NewAuditService(repo, log)
	audits.SetBroadcaster(events)

	return &fixture{cat: cat, sessions: sessions, audits: audits, events: events, repo: repo}
}

// answerAll picks the same option index for every question of the session
func (f *fixture) answerAll(t *testing.T, owner string, view *model.SessionView, option int) *model.SessionView {
	t.Helper()
	questions, err := f.cat.Questions(view.BusinessModel, view.Channel)
	require.NoError(t, err)
	for _, q := range questions {
		view, err = f.sessions.Answer(context.Background(), owner, view.ID, q.ID, option)
		require.NoError(t, err)
	}
	return view
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := OwnerID("alice")

	view, err := f.sessions.Start(ctx, owner, model.BusinessProducts, model.ChannelMeta)
	require.NoError(t, err)
	assert.Equal(t, model.SessionEmpty, view.Status)
	assert.Equal(t, 0, view.Current)
	require.NotNil(t, view.Question)
	assert.Equal(t, "signal_resilience", view.Question.ID)
	assert.Nil(t, view.Selected)

	view, err = f.sessions.Answer(ctx, owner, view.ID, "signal_resilience", 1)
	require.NoError(t, err)
	assert.Equal(t, model.SessionPartial, view.Status)
	assert.Equal(t, 1, view.Current)
	assert.Equal(t, 1, view.Answered)

	view, err = f.sessions.Back(ctx, owner, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Current)
	require.NotNil(t, view.Selected)
	assert.Equal(t, 1, *view.Selected)

	preview, err := f.sessions.Preview(ctx, owner, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, preview.Percentage)
	require.Len(t, preview.Risks, 1)
	assert.Equal(t, "signal_resilience", preview.Risks[0].QuestionID)

	_, err = f.sessions.Submit(ctx, owner, view.ID)
	assert.ErrorIs(t, err, scoring.ErrIncompleteSubmission)

	view = f.answerAll(t, owner, view, 0)
	assert.Equal(t, model.SessionComplete, view.Status)
	assert.Equal(t, view.Total-1, view.Current)
	assert.Equal(t, 100, view.Progress)

	audit, err := f.sessions.Submit(ctx, owner, view.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, audit.ID)
	assert.Equal(t, 100, audit.Percentage)
	assert.Empty(t, audit.Risks)
	assert.Equal(t, model.TierSuccess, audit.Verdict.Tier)
	assert.Equal(t, f.cat.Version, audit.CatalogVersion)

	_, err = f.sessions.Get(ctx, owner, view.ID)
	assert.ErrorIs(t, err, cache.ErrSessionNotFound, "submitted session must be closed")

	require.Len(t, f.events.events, 1)
	assert.Equal(t, EventAuditCreated, f.events.events[0].msgType)
	assert.Equal(t, owner, f.events.events[0].ownerID)
}

func TestSessionRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := OwnerID("alice")

	_, err := f.sessions.Start(ctx, owner, "franchise", model.ChannelMeta)
	assert.ErrorIs(t, err, catalog.ErrUnknownBusinessModel)
	_, err = f.sessions.Start(ctx, owner, model.BusinessServices, "tiktok")
	assert.ErrorIs(t, err, catalog.ErrUnknownChannel)

	view, err := f.sessions.Start(ctx, owner, model.BusinessServices, model.ChannelGoogle)
	require.NoError(t, err)

	_, err = f.sessions.Answer(ctx, owner, view.ID, "not_a_question", 0)
	assert.ErrorIs(t, err, scoring.ErrUnknownQuestion)
	// meta-only question is filtered out of a google session
	_, err = f.sessions.Answer(ctx, owner, view.ID, "signal_resilience", 0)
	assert.ErrorIs(t, err, scoring.ErrUnknownQuestion)
	_, err = f.sessions.Answer(ctx, owner, view.ID, "oci", 42)
	assert.ErrorIs(t, err, scoring.ErrInvalidOption)

	_, err = f.sessions.Get(ctx, OwnerID("bob"), view.ID)
	assert.ErrorIs(t, err, cache.ErrSessionNotFound)
}

func TestStartDiscardsPreviousSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := OwnerID("alice")

	first, err := f.sessions.Start(ctx, owner, model.BusinessAccess, model.ChannelBoth)
	require.NoError(t, err)
	second, err := f.sessions.Start(ctx, owner, model.BusinessAudience, model.ChannelBoth)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = f.sessions.Get(ctx, owner, first.ID)
	assert.ErrorIs(t, err, cache.ErrSessionNotFound)
	_, err = f.sessions.Get(ctx, owner, second.ID)
	assert.NoError(t, err)
}

func TestSubmitKeepsSessionWhenStoreFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := OwnerID("alice")

	log, _ := test.NewNullLogger()
	svc := NewSessionService(f.cat, cache.NewMemorySessionCache(time.Hour), failingRepo{}, log)
	f.sessions = svc

	view, err := svc.Start(ctx, owner, model.BusinessProducts, model.ChannelGoogle)
	require.NoError(t, err)
	view = f.answerAll(t, owner, view, 0)

	_, err = svc.Submit(ctx, owner, view.ID)
	assert.ErrorIs(t, err, ErrPersistence)

	got, err := svc.Get(ctx, owner, view.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionComplete, got.Status)
}

func TestAbandon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := OwnerID("alice")

	view, err := f.sessions.Start(ctx, owner, model.BusinessProducts, model.ChannelMeta)
	require.NoError(t, err)
	assert.ErrorIs(t, f.sessions.Abandon(ctx, OwnerID("bob"), view.ID), cache.ErrSessionNotFound)
	require.NoError(t, f.sessions.Abandon(ctx, owner, view.ID))

	_, err = f.sessions.Get(ctx, owner, view.ID)
	assert.ErrorIs(t, err, cache.ErrSessionNotFound)
	list, err := f.audits.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list.Audits)
}

func TestAuditHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := OwnerID("alice"), OwnerID("bob")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	f.sessions.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	submit := func(owner string, option int) *model.AuditView {
		view, err := f.sessions.Start(ctx, owner, model.BusinessProducts, model.ChannelMeta)
		require.NoError(t, err)
		view = f.answerAll(t, owner, view, option)
		audit, err := f.sessions.Submit(ctx, owner, view.ID)
		require.NoError(t, err)
		return audit
	}

	bad := submit(alice, 2)
	good := submit(alice, 0)
	other := submit(bob, 0)

	list, err := f.audits.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list.Audits, 2)
	assert.Equal(t, good.ID, list.Audits[0].ID, "newest first")
	assert.Equal(t, bad.ID, list.Audits[1].ID)
	assert.Equal(t, model.TierCritical, list.Audits[1].Verdict.Tier)
	assert.Equal(t, 2, list.Summary.Count)
	assert.Equal(t, 50, list.Summary.AveragePercentage)
	require.NotNil(t, list.Summary.Latest)
	assert.Equal(t, model.TierSuccess, *list.Summary.Latest)

	_, err = f.audits.Get(ctx, alice, other.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "other owners' audits are invisible")
	assert.ErrorIs(t, f.audits.Delete(ctx, alice, other.ID), repository.ErrNotFound)

	got, err := f.audits.Get(ctx, alice, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Percentage)

	require.NoError(t, f.audits.Delete(ctx, alice, bad.ID))
	assert.ErrorIs(t, f.audits.Delete(ctx, alice, bad.ID), repository.ErrNotFound)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, EventAuditDeleted, last.msgType)
	assert.Equal(t, alice, last.ownerID)

	list, err = f.audits.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list.Audits, 1)
	assert.Equal(t, 100, list.Summary.AveragePercentage)
}

func TestAuthService(t *testing.T) {
	svc := NewAuthService("test-secret", map[string]string{"alice": "wonderland"})

	_, err := svc.Login("alice", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("mallory", "wonderland")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login("alice", "wonderland")
	require.NoError(t, err)
	assert.Equal(t, OwnerID("alice"), resp.OwnerID)
	assert.NotEqual(t, OwnerID("alice"), OwnerID("bob"))

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.OwnerID, claims.OwnerID)
	assert.Equal(t, "alice", claims.Username)

	other := NewAuthService("another-secret", nil)
	_, err = other.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}

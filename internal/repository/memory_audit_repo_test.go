package repository

import (
	"adaudit/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAuditRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAuditRepo()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := &model.Audit{OwnerID: "alice", CreatedAt: base, Answers: map[string]int{"q1": 0}}
	newer := &model.Audit{OwnerID: "alice", CreatedAt: base.Add(time.Hour)}
	other := &model.Audit{OwnerID: "bob", CreatedAt: base}

	for _, a := range []*model.Audit{older, newer, other} {
		id, err := repo.Create(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, id, a.ID)
		assert.Len(t, id, 24)
	}

	list, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "newest first")
	assert.Equal(t, older.ID, list[1].ID)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Answers["q1"])

	// Returned records are copies
	got.Answers["q1"] = 3
	again, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Answers["q1"])

	require.NoError(t, repo.DeleteByID(ctx, older.ID))
	_, err = repo.GetByID(ctx, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByID(ctx, older.ID), ErrNotFound)

	list, err = repo.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryAuditRepoDeleteUnknown(t *testing.T) {
	repo := NewMemoryAuditRepo()
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), "does-not-exist"), ErrNotFound)
}

func TestMemoryAuditRepoSameTimestampKeepsInsertOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAuditRepo()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &model.Audit{OwnerID: "alice", CreatedAt: at}
	second := &model.Audit{OwnerID: "alice", CreatedAt: at}
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	list, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestAuditDocToModelNormalizesLegacyRisks(t *testing.T) {
	doc := auditDoc{Audit: model.Audit{Result: model.Result{Risks: []model.Risk{
		{Plan: model.ActionPlan{Title: "legacy"}},
		{QuestionPrompt: "p", Plan: model.ActionPlan{Title: "enriched"}},
	}}}}
	a := doc.toModel()
	assert.Equal(t, model.RiskPlan, a.Risks[0].Kind)
	assert.Equal(t, model.RiskEnriched, a.Risks[1].Kind)
	assert.Equal(t, doc.OID.Hex(), a.ID)
}

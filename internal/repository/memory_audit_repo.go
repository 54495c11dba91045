package repository

import (
	"adaudit/internal/model"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryAuditRepo struct {
	mu     sync.RWMutex
	audits map[string]memoryEntry
	seq    int
}

type memoryEntry struct {
	audit model.Audit
	seq   int
}

// NewMemoryAuditRepo creates a process-local audit repository.
// Ids have the same shape as the MongoDB repository's.
func NewMemoryAuditRepo() AuditRepo {
	return &memoryAuditRepo{
		audits: make(map[string]memoryEntry),
	}
}

func (r *memoryAuditRepo) Create(ctx context.Context, audit *model.Audit) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	audit.ID = primitive.NewObjectID().Hex()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.audits[audit.ID] = memoryEntry{audit: cloneAudit(*audit), seq: r.seq}
	return audit.ID, nil
}

func (r *memoryAuditRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Audit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	entries := []memoryEntry{}
	for _, e := range r.audits {
		if e.audit.OwnerID == ownerID {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].audit.CreatedAt.Equal(entries[j].audit.CreatedAt) {
			return entries[i].audit.CreatedAt.After(entries[j].audit.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	audits := make([]*model.Audit, 0, len(entries))
	for _, e := range entries {
		a := cloneAudit(e.audit)
		audits = append(audits, &a)
	}
	return audits, nil
}

func (r *memoryAuditRepo) GetByID(ctx context.Context, id string) (*model.Audit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.audits[id]
	if !ok {
		return nil, ErrNotFound
	}
	a := cloneAudit(e.audit)
	return &a, nil
}

func (r *memoryAuditRepo) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.audits[id]; !ok {
		return ErrNotFound
	}
	delete(r.audits, id)
	return nil
}

func cloneAudit(a model.Audit) model.Audit {
	answers := make(map[string]int, len(a.Answers))
	for k, v := range a.Answers {
		answers[k] = v
	}
	a.Answers = answers
	a.Risks = append([]model.Risk(nil), a.Risks...)
	if a.Risks == nil {
		a.Risks = []model.Risk{}
	}
	return a
}

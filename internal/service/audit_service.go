package service

import (
	"adaudit/internal/model"
	"adaudit/internal/repository"
	"adaudit/internal/scoring"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// AuditList is an owner's audit history with its dashboard summary
type AuditList struct {
	Audits  []model.AuditView  `json:"audits"`
	Summary model.AuditSummary `json:"summary"`
}

// AuditService reads and deletes submitted audits
type AuditService struct {
	repo        repository.AuditRepo
	broadcaster Broadcaster
	log         logrus.FieldLogger
}

// NewAuditService creates a new audit service
func NewAuditService(repo repository.AuditRepo, log logrus.FieldLogger) *AuditService {
	return &AuditService{
		repo: repo,
		log:  log.WithField("source", "AuditService"),
	}
}

// SetBroadcaster sets the broadcaster for dashboard events
func (s *AuditService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// List returns the owner's audits, newest first, with a summary
func (s *AuditService) List(ctx context.Context, ownerID string) (*AuditList, error) {
	audits, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}

	views := make([]model.AuditView, 0, len(audits))
	for _, a := range audits {
		views = append(views, scoring.View(a))
	}
	return &AuditList{
		Audits:  views,
		Summary: scoring.Summarize(audits),
	}, nil
}

// Get returns one audit. Audits of other owners are reported as not found.
func (s *AuditService) Get(ctx context.Context, ownerID, id string) (*model.AuditView, error) {
	audit, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	view := scoring.View(audit)
	return &view, nil
}

// Delete removes one audit owned by ownerID
func (s *AuditService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"owner": ownerID, "audit": id}).Info("audit deleted")
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToOwner(ownerID, EventAuditDeleted, map[string]string{"id": id})
	}
	return nil
}

func (s *AuditService) owned(ctx context.Context, ownerID, id string) (*model.Audit, error) {
	audit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if audit.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return audit, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reshla/blacklist-service/internal/config"
	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/events"
	"github.com/reshla/blacklist-service/internal/repository"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// Publisher turns an approved report into public blacklist artifacts.
type Publisher interface {
	Publish(ctx context.Context, report *domain.Report) (*domain.Profile, error)
}

// PublisherService writes the denormalized profile record, a per-subject
// profile.json artifact and one ledger line per subject. The profiles row is
// the idempotency check: a subject already published is never appended twice.
type PublisherService struct {
	profiles   repository.ProfileRepository
	reports    repository.ReportRepository
	cfg        config.PublisherConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewPublisherService constructs the service.
func NewPublisherService(profiles repository.ProfileRepository, reports repository.ReportRepository, cfg config.PublisherConfig, dispatcher events.Dispatcher, logger *zap.Logger) *PublisherService {
	return &PublisherService{
		profiles:   profiles,
		reports:    reports,
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Publish records the subject on the public blacklist. Safe to call more than
// once for the same subject.
func (s *PublisherService) Publish(ctx context.Context, report *domain.Report) (*domain.Profile, error) {
	proofs := report.Proofs
	if len(proofs) == 0 {
		loaded, err := s.reports.ListProofs(ctx, report.ID)
		if err != nil {
			return nil, err
		}
		proofs = loaded
	}
	proofURLs := make([]string, 0, len(proofs))
	for _, proof := range proofs {
		proofURLs = append(proofURLs, proof.URL)
	}

	profile := &domain.Profile{
		SubjectID: report.SubjectID,
		Handle:    report.SubjectHandle,
		Reason:    report.Reason,
		BannedAt:  s.now(),
		ReportURL: "/reports/" + report.ID,
		Proofs:    proofURLs,
	}

	created, err := s.profiles.Create(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !created {
		s.logger.Info("subject already published; skipping ledger append",
			zap.String("subject_id", report.SubjectID))
		return s.profiles.Get(ctx, report.SubjectID)
	}

	if err := s.writeProfileArtifact(profile); err != nil {
		return nil, err
	}
	if err := s.appendLedgerLine(profile); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReportPublished,
			ReportID:  report.ID,
			Timestamp: s.now(),
			Payload: events.ReportPublishedPayload{
				SubjectID:  profile.SubjectID,
				ProfileURL: s.profileURL(profile.SubjectID),
			},
		})
	}

	s.logger.Info("published blacklist entry",
		zap.String("subject_id", profile.SubjectID),
		zap.String("report_id", report.ID))
	return profile, nil
}

func (s *PublisherService) writeProfileArtifact(profile *domain.Profile) error {
	dir := filepath.Join(s.cfg.DataDir, profile.SubjectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewCollaboratorUnavailable("artifact store", err)
	}
	raw, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "profile.json"), raw, 0o644); err != nil {
		return apperrors.NewCollaboratorUnavailable("artifact store", err)
	}
	return nil
}

func (s *PublisherService) appendLedgerLine(profile *domain.Profile) error {
	line := fmt.Sprintf("%s #%s (%s)\n", profile.SubjectID, profile.Reason, s.profileURL(profile.SubjectID))

	f, err := os.OpenFile(s.cfg.LedgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.NewCollaboratorUnavailable("artifact store", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return apperrors.NewCollaboratorUnavailable("artifact store", err)
	}
	return nil
}

func (s *PublisherService) profileURL(subjectID string) string {
	return s.cfg.BaseURL + "/" + subjectID
}

package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reshla/blacklist-service/internal/config"
	"github.com/reshla/blacklist-service/internal/domain"
)

func newTestPublisher(t *testing.T, profiles *fakeProfileRepo, reports *fakeReportRepo) (*PublisherService, config.PublisherConfig) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.PublisherConfig{
		DataDir:    filepath.Join(dir, "blacklist"),
		LedgerPath: filepath.Join(dir, "reshla-blacklist.txt"),
		BaseURL:    "https://blacklist.example.org/blacklist",
	}
	svc := NewPublisherService(profiles, reports, cfg, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, cfg
}

func approvedReport() *domain.Report {
	return &domain.Report{
		ID:            "rep-1",
		SubjectID:     "123456789",
		SubjectHandle: "scammer",
		Reason:        "fake_escrow",
		Status:        domain.ReportStatusApproved,
		Proofs: []domain.ProofReference{
			{URL: "https://imgur.com/a/proof1"},
			{URL: "https://imgur.com/a/proof2"},
		},
	}
}

func TestPublishWritesProfileAndLedger(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc, cfg := newTestPublisher(t, profiles, newFakeReportRepo())

	profile, err := svc.Publish(context.Background(), approvedReport())
	require.NoError(t, err)
	assert.Equal(t, "123456789", profile.SubjectID)
	assert.Equal(t, "/reports/rep-1", profile.ReportURL)

	raw, err := os.ReadFile(filepath.Join(cfg.DataDir, "123456789", "profile.json"))
	require.NoError(t, err)

	var stored domain.Profile
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "scammer", stored.Handle)
	assert.Equal(t, "fake_escrow", stored.Reason)
	assert.Equal(t, []string{"https://imgur.com/a/proof1", "https://imgur.com/a/proof2"}, stored.Proofs)

	ledger, err := os.ReadFile(cfg.LedgerPath)
	require.NoError(t, err)
	assert.Equal(t,
		"123456789 #fake_escrow (https://blacklist.example.org/blacklist/123456789)\n",
		string(ledger))
}

func TestPublishIsIdempotentPerSubject(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc, cfg := newTestPublisher(t, profiles, newFakeReportRepo())

	first, err := svc.Publish(context.Background(), approvedReport())
	require.NoError(t, err)

	second, err := svc.Publish(context.Background(), approvedReport())
	require.NoError(t, err)
	assert.Equal(t, first.SubjectID, second.SubjectID)

	ledger, err := os.ReadFile(cfg.LedgerPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(ledger), "123456789"), "second publish must not append")
}

func TestPublishLoadsProofsWhenAbsent(t *testing.T) {
	profiles := newFakeProfileRepo()
	reports := newFakeReportRepo()
	svc, _ := newTestPublisher(t, profiles, reports)

	report := approvedReport()
	require.NoError(t, reports.AddProofs(context.Background(), report.ID, report.Proofs))
	report.Proofs = nil

	profile, err := svc.Publish(context.Background(), report)
	require.NoError(t, err)
	assert.Len(t, profile.Proofs, 2)
}

func TestPublishLedgerAppendFailure(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc, cfg := newTestPublisher(t, profiles, newFakeReportRepo())

	// A directory at the ledger path makes the append fail.
	require.NoError(t, os.MkdirAll(cfg.LedgerPath, 0o755))

	_, err := svc.Publish(context.Background(), approvedReport())
	require.Error(t, err)
}

package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reshla/blacklist-service/internal/config"
	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/events"
)

func TestStatusChangedEventReachesWebhook(t *testing.T) {
	var mu sync.Mutex
	var received []events.Event

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event events.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotifyConfig{WebhookURL: server.URL})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:       "evt-1",
		Type:     events.EventReportStatusChanged,
		ReportID: "r1",
		Payload: events.ReportStatusChangedPayload{
			OldStatus: domain.ReportStatusVoting,
			NewStatus: domain.ReportStatusModeration,
			Reason:    "threshold_reached",
		},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, events.EventReportStatusChanged, received[0].Type)
	assert.Equal(t, "r1", received[0].ReportID)
}

func TestWebhookSkippedWhenUnconfigured(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotifyConfig{})
	svc.RegisterHandlers()

	// No webhook configured: delivery is a logged no-op, never an error.
	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventReportPublished,
		ReportID: "r1",
	})
	assert.NoError(t, err)
}

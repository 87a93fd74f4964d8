package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/reshla/blacklist-service/internal/config"
	"github.com/reshla/blacklist-service/internal/events"
)

// NotificationService forwards domain events to an external webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotifyConfig
	client     *retryablehttp.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotifyConfig) *NotificationService {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		client:     client,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventReportStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventReportPublished, n.handleEvent)
	n.dispatcher.Subscribe(events.EventRolesChanged, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("type", string(event.Type)),
		zap.String("report_id", event.ReportID))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("failed to marshal webhook payload", zap.Error(err))
		return
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", n.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("failed to build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed",
			zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected",
			zap.String("type", string(event.Type)),
			zap.Int("status", resp.StatusCode))
	}
}

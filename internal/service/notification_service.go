package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/telelink-next/internal/cache"
	"github.com/telelink-next/internal/config"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/queue"
	"github.com/telelink-next/internal/repository"

	"github.com/hibiken/asynq"
)

const notificationDedupeTTL = 5 * time.Minute

// NotificationService pushes withdrawal status changes to the ops webhook
type NotificationService struct {
	cfg            config.NotifyConfig
	queueClient    *queue.Client
	withdrawalRepo repository.WithdrawalRepository
	creatorRepo    repository.CreatorRepository
	httpClient     *http.Client
}

// NewNotificationService creates a notification service
func NewNotificationService(
	cfg config.NotifyConfig,
	queueClient *queue.Client,
	withdrawalRepo repository.WithdrawalRepository,
	creatorRepo repository.CreatorRepository,
) *NotificationService {
	timeout := 10 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &NotificationService{
		cfg:            cfg,
		queueClient:    queueClient,
		withdrawalRepo: withdrawalRepo,
		creatorRepo:    creatorRepo,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// Enqueue queues a status notification for async delivery
func (s *NotificationService) Enqueue(withdrawalID uint, status string) error {
	if s == nil || s.queueClient == nil {
		return nil
	}
	if withdrawalID == 0 || strings.TrimSpace(status) == "" {
		return nil
	}
	return s.queueClient.EnqueueWithdrawalNotify(queue.WithdrawalNotifyPayload{
		WithdrawalID: withdrawalID,
		Status:       status,
	}, asynq.MaxRetry(5))
}

// Dispatch delivers one queued notification
func (s *NotificationService) Dispatch(ctx context.Context, payload queue.WithdrawalNotifyPayload) error {
	if s == nil || !s.cfg.Enabled || strings.TrimSpace(s.cfg.WebhookURL) == "" {
		return nil
	}
	if payload.WithdrawalID == 0 {
		return nil
	}

	ok, err := cache.SetNX(ctx, buildNotificationDedupeKey(payload), "1", notificationDedupeTTL)
	if err != nil {
		logger.Warnw("notification_dedupe_failed",
			"withdrawal_id", payload.WithdrawalID,
			"status", payload.Status,
			"error", err,
		)
	}
	if err == nil && !ok {
		return nil
	}

	withdrawal, err := s.withdrawalRepo.GetByID(payload.WithdrawalID)
	if err != nil {
		return err
	}
	if withdrawal == nil {
		logger.Warnw("notification_withdrawal_missing", "withdrawal_id", payload.WithdrawalID)
		return nil
	}

	handle := ""
	creator, err := s.creatorRepo.GetByID(withdrawal.CreatorID)
	if err != nil {
		return err
	}
	if creator != nil {
		handle = creator.Handle
	}

	body := map[string]interface{}{
		"event":          "withdrawal_status",
		"withdrawal_id":  withdrawal.ID,
		"creator_id":     withdrawal.CreatorID,
		"creator_handle": handle,
		"amount":         withdrawal.Amount,
		"method":         withdrawal.Method,
		"status":         payload.Status,
		"external_ref":   withdrawal.ExternalRef,
		"failure_reason": withdrawal.FailureReason,
		"occurred_at":    time.Now().Format(time.RFC3339),
	}
	if err := s.postWebhook(ctx, body); err != nil {
		logger.Warnw("notification_webhook_failed",
			"withdrawal_id", payload.WithdrawalID,
			"status", payload.Status,
			"error", err,
		)
		return err
	}
	logger.Infow("notification_webhook_sent",
		"withdrawal_id", payload.WithdrawalID,
		"status", payload.Status,
	)
	return nil
}

func (s *NotificationService) postWebhook(ctx context.Context, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook http status %d", resp.StatusCode)
	}
	return nil
}

func buildNotificationDedupeKey(payload queue.WithdrawalNotifyPayload) string {
	return fmt.Sprintf("notify:withdrawal:%d:%s", payload.WithdrawalID, strings.ToLower(strings.TrimSpace(payload.Status)))
}

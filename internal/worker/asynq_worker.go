package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/provider"
	"github.com/telelink-next/internal/queue"
	"github.com/telelink-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer async task consumer
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskWithdrawalPayout, c.handleWithdrawalPayout)
	mux.HandleFunc(queue.TaskWithdrawalNotify, c.handleWithdrawalNotify)
}

func (c *Consumer) handleWithdrawalPayout(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_withdrawal_payout_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.WithdrawalPayoutPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_withdrawal_payout_unmarshal_failed", "error", err)
		return err
	}
	if payload.WithdrawalID == 0 {
		logger.Debugw("worker_withdrawal_payout_skip_invalid_payload", "withdrawal_id", payload.WithdrawalID)
		return nil
	}
	if c.WithdrawalService == nil {
		logger.Warnw("worker_withdrawal_payout_skip_service_nil", "withdrawal_id", payload.WithdrawalID)
		return nil
	}
	if err := c.WithdrawalService.AttemptPayout(ctx, payload.WithdrawalID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			logger.Debugw("worker_withdrawal_payout_skip_not_found", "withdrawal_id", payload.WithdrawalID)
			return nil
		case errors.Is(err, service.ErrWithdrawalNotPending):
			logger.Debugw("worker_withdrawal_payout_skip_not_pending", "withdrawal_id", payload.WithdrawalID)
			return nil
		default:
			logger.Warnw("worker_withdrawal_payout_failed", "withdrawal_id", payload.WithdrawalID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleWithdrawalNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_withdrawal_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.WithdrawalNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_withdrawal_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.WithdrawalID == 0 {
		logger.Debugw("worker_withdrawal_notify_skip_invalid_payload", "withdrawal_id", payload.WithdrawalID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_withdrawal_notify_skip_service_nil", "withdrawal_id", payload.WithdrawalID)
		return nil
	}
	if err := c.NotificationService.Dispatch(ctx, payload); err != nil {
		logger.Warnw("worker_withdrawal_notify_failed",
			"withdrawal_id", payload.WithdrawalID,
			"status", payload.Status,
			"error", err,
		)
		return err
	}
	return nil
}

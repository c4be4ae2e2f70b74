package queue

import (
	"encoding/json"

	"github.com/telelink-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskWithdrawalPayout provider transfer attempt task
	TaskWithdrawalPayout = constants.TaskWithdrawalPayout
	// TaskWithdrawalNotify admin webhook notification task
	TaskWithdrawalNotify = constants.TaskWithdrawalNotify
)

// WithdrawalPayoutPayload provider transfer task payload
type WithdrawalPayoutPayload struct {
	WithdrawalID uint `json:"withdrawal_id"`
}

// WithdrawalNotifyPayload admin notification task payload
type WithdrawalNotifyPayload struct {
	WithdrawalID uint   `json:"withdrawal_id"`
	Status       string `json:"status"`
}

// NewWithdrawalPayoutTask creates a payout attempt task
func NewWithdrawalPayoutTask(payload WithdrawalPayoutPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWithdrawalPayout, body), nil
}

// NewWithdrawalNotifyTask creates an admin notification task
func NewWithdrawalNotifyTask(payload WithdrawalNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWithdrawalNotify, body), nil
}

package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskBrokerStatsReconcile = "brokers.stats.reconcile"

const TaskAnalyticsExportArchive = "analytics.export.archive"

type BrokerStatsReconcilePayload struct {
	RequestedBy string `json:"requestedBy"`
}

type AnalyticsExportArchivePayload struct {
	Formats []string `json:"formats,omitempty"`
}

func NewBrokerStatsReconcileTask(payload BrokerStatsReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBrokerStatsReconcile, data), nil
}

func ParseBrokerStatsReconcilePayload(task *asynq.Task) (BrokerStatsReconcilePayload, error) {
	var payload BrokerStatsReconcilePayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BrokerStatsReconcilePayload{}, err
	}
	return payload, nil
}

func NewAnalyticsExportArchiveTask(payload AnalyticsExportArchivePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsExportArchive, data), nil
}

func ParseAnalyticsExportArchivePayload(task *asynq.Task) (AnalyticsExportArchivePayload, error) {
	var payload AnalyticsExportArchivePayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AnalyticsExportArchivePayload{}, err
	}
	return payload, nil
}

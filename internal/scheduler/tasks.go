package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCallSync = "calls.sync"

const TaskCRMMirrorRefresh = "crm.mirror_refresh"

type CallSyncPayload struct {
	OrganizationID string `json:"organizationId"`
	LocationID     string `json:"locationId,omitempty"`
}

type CRMMirrorRefreshPayload struct {
	OrganizationID string `json:"organizationId"`
}

func NewCallSyncTask(payload CallSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCallSync, data), nil
}

func ParseCallSyncPayload(task *asynq.Task) (CallSyncPayload, error) {
	var payload CallSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CallSyncPayload{}, err
	}
	return payload, nil
}

func NewCRMMirrorRefreshTask(payload CRMMirrorRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCRMMirrorRefresh, data), nil
}

func ParseCRMMirrorRefreshPayload(task *asynq.Task) (CRMMirrorRefreshPayload, error) {
	var payload CRMMirrorRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CRMMirrorRefreshPayload{}, err
	}
	return payload, nil
}

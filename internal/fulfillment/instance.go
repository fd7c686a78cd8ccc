/*
Copyright (c) 2025 Red Hat Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the
License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the specific
language governing permissions and limitations under the License.
*/

package fulfillment

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// States of a compute instance, as reported by the fulfillment service.
const (
	StateUnspecified = "COMPUTE_INSTANCE_STATE_UNSPECIFIED"
	StateProgressing = "COMPUTE_INSTANCE_STATE_PROGRESSING"
	StateReady       = "COMPUTE_INSTANCE_STATE_READY"
	StateFailed      = "COMPUTE_INSTANCE_STATE_FAILED"
)

// Condition types of a compute instance.
const (
	ConditionProgressing       = "COMPUTE_INSTANCE_CONDITION_TYPE_PROGRESSING"
	ConditionReady             = "COMPUTE_INSTANCE_CONDITION_TYPE_READY"
	ConditionRestartInProgress = "COMPUTE_INSTANCE_CONDITION_TYPE_RESTART_IN_PROGRESS"
	ConditionRestartFailed     = "COMPUTE_INSTANCE_CONDITION_TYPE_RESTART_FAILED"
)

// Condition statuses.
const (
	ConditionStatusUnspecified = "CONDITION_STATUS_UNSPECIFIED"
	ConditionStatusFalse       = "CONDITION_STATUS_FALSE"
	ConditionStatusTrue        = "CONDITION_STATUS_TRUE"
)

// Instance is the JSON representation of a fulfillment compute instance.
type Instance struct {
	ID     string          `json:"id,omitempty"`
	Spec   *InstanceSpec   `json:"spec,omitempty"`
	Status *InstanceStatus `json:"status,omitempty"`
}

// InstanceSpec is the desired state of a compute instance.
type InstanceSpec struct {
	TemplateID         string         `json:"templateId,omitempty"`
	TemplateParameters map[string]any `json:"templateParameters,omitempty"`
	RestartRequestedAt string         `json:"restartRequestedAt,omitempty"`
}

// InstanceStatus is the observed state of a compute instance.
type InstanceStatus struct {
	State           string      `json:"state,omitempty"`
	Conditions      []Condition `json:"conditions,omitempty"`
	IPAddress       string      `json:"ipAddress,omitempty"`
	LastRestartedAt string      `json:"lastRestartedAt,omitempty"`
}

// Condition is one entry of the conditions array of the instance status.
type Condition struct {
	Type               string `json:"type,omitempty"`
	Status             string `json:"status,omitempty"`
	Message            string `json:"message,omitempty"`
	LastTransitionTime string `json:"lastTransitionTime,omitempty"`
}

// Condition returns the condition of the given type, or nil when absent.
func (i *Instance) Condition(kind string) *Condition {
	if i.Status == nil {
		return nil
	}
	condition, found := lo.Find(i.Status.Conditions, func(c Condition) bool {
		return c.Type == kind
	})
	if !found {
		return nil
	}
	return &condition
}

// IsConditionTrue returns true when the condition of the given type is
// present with status true.
func (i *Instance) IsConditionTrue(kind string) bool {
	condition := i.Condition(kind)
	return condition != nil && condition.Status == ConditionStatusTrue
}

// objectEnvelope wraps the instance in requests and responses of the service.
type objectEnvelope struct {
	Object *Instance `json:"object"`
}

// ParseInstanceResponse decodes a Get/Create/Update response body.
func ParseInstanceResponse(data []byte) (*Instance, error) {
	envelope := &objectEnvelope{}
	if err := json.Unmarshal(data, envelope); err != nil {
		return nil, fmt.Errorf("failed to decode compute instance response: %w", err)
	}
	if envelope.Object == nil {
		return nil, fmt.Errorf("compute instance response contains no object")
	}
	return envelope.Object, nil
}

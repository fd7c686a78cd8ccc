/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ComputeInstanceSpec defines the desired state of ComputeInstance
type ComputeInstanceSpec struct {
	// TemplateID is the unique identifier of the compute instance template to use when creating this compute instance
	TemplateID string `json:"templateID,omitempty"`

	// TemplateParameters is a JSON-encoded map of the parameter values for the
	// selected compute instance template.
	TemplateParameters string `json:"templateParameters,omitempty"`

	// RestartRequestedAt is a timestamp signal to request a VM restart.
	//
	// The operator executes the restart when this timestamp is greater than
	// status.lastRestartedAt. It is a monotonically increasing signal, not a
	// scheduled time; callers set it to the current time.
	RestartRequestedAt *metav1.Time `json:"restartRequestedAt,omitempty"`
}

// ComputeInstancePhaseType is a valid value for .status.phase
type ComputeInstancePhaseType string

const (
	// ComputeInstancePhaseProgressing means an update is in progress
	ComputeInstancePhaseProgressing ComputeInstancePhaseType = "Progressing"

	// ComputeInstancePhaseFailed means the compute instance deployment or update has failed
	ComputeInstancePhaseFailed ComputeInstancePhaseType = "Failed"

	// ComputeInstancePhaseReady means the compute instance and all associated resources are ready
	ComputeInstancePhaseReady ComputeInstancePhaseType = "Ready"

	// ComputeInstancePhaseDeleting means there has been a request to delete the ComputeInstance
	ComputeInstancePhaseDeleting ComputeInstancePhaseType = "Deleting"
)

// ComputeInstanceConditionType is a valid value for .status.conditions.type
type ComputeInstanceConditionType string

const (
	// ComputeInstanceConditionAccepted means the order has been accepted but work has not yet started
	ComputeInstanceConditionAccepted ComputeInstanceConditionType = "Accepted"

	// ComputeInstanceConditionProgressing means that an update is in progress
	ComputeInstanceConditionProgressing ComputeInstanceConditionType = "Progressing"

	// ComputeInstanceConditionAvailable means the compute instance is available
	ComputeInstanceConditionAvailable ComputeInstanceConditionType = "Available"

	// ComputeInstanceConditionDeleting means the compute instance is being deleted
	ComputeInstanceConditionDeleting ComputeInstanceConditionType = "Deleting"

	// ComputeInstanceConditionRestartInProgress indicates a restart is in progress
	ComputeInstanceConditionRestartInProgress ComputeInstanceConditionType = "RestartInProgress"

	// ComputeInstanceConditionRestartFailed indicates a restart request has failed
	ComputeInstanceConditionRestartFailed ComputeInstanceConditionType = "RestartFailed"
)

// VirtualMachineReferenceType contains a reference to the KubeVirt VirtualMachine CR created by this ComputeInstance
type VirtualMachineReferenceType struct {
	// Namespace that contains the VirtualMachine resources
	Namespace                  string `json:"namespace"`
	KubeVirtVirtualMachineName string `json:"kubeVirtVirtualMachineName"`
}

// ComputeInstanceStatus defines the observed state of ComputeInstance.
type ComputeInstanceStatus struct {
	// Phase provides a single-value overview of the state of the ComputeInstance
	Phase ComputeInstancePhaseType `json:"phase,omitempty"`

	// Conditions holds an array of metav1.Condition that describe the state of the ComputeInstance
	Conditions []metav1.Condition `json:"conditions,omitempty" patchStrategy:"merge" patchMergeKey:"type" protobuf:"bytes,1,rep,name=conditions"`

	// Reference to the KubeVirt VirtualMachine CR created by this ComputeInstance
	VirtualMachineReference *VirtualMachineReferenceType `json:"virtualMachineReference,omitempty"`

	// LastRestartedAt records when the last restart was initiated by the controller.
	//
	// This is set to spec.restartRequestedAt when the controller processes a restart request.
	// It will be empty if no restart has been performed yet.
	LastRestartedAt *metav1.Time `json:"lastRestartedAt,omitempty"`
}

// +kubebuilder:object:root=true

// ComputeInstance is the Schema for the computeinstances API
type ComputeInstance struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ComputeInstanceSpec   `json:"spec"`
	Status ComputeInstanceStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ComputeInstanceList contains a list of ComputeInstance
type ComputeInstanceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ComputeInstance `json:"items"`
}

// GetStatusCondition returns the condition of the given type, or nil if it is not set.
func (ci *ComputeInstance) GetStatusCondition(conditionType ComputeInstanceConditionType) *metav1.Condition {
	return meta.FindStatusCondition(ci.Status.Conditions, string(conditionType))
}

// IsStatusConditionTrue returns true when the condition of the given type is present with status True.
func (ci *ComputeInstance) IsStatusConditionTrue(conditionType ComputeInstanceConditionType) bool {
	return meta.IsStatusConditionTrue(ci.Status.Conditions, string(conditionType))
}

func init() {
	SchemeBuilder.Register(&ComputeInstance{}, &ComputeInstanceList{})
}

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

// Package verify checks that the operator and the fulfillment service behave
// as expected when compute instances are created and restarted. It drives the
// system only through the fulfillment API and observes the outcome on the
// cluster; it never mutates ComputeInstance or VirtualMachineInstance objects
// itself.
package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/wait"
	kubevirtv1 "kubevirt.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/innabox/osac-test-infra/api/v1alpha1"
	"github.com/innabox/osac-test-infra/internal/fulfillment"
)

// Fulfillment is the subset of the fulfillment client the verifiers use.
type Fulfillment interface {
	Get(ctx context.Context, id string) (*fulfillment.Instance, error)
	RequestRestart(ctx context.Context, id string, at time.Time) error
}

// Options contains the poll interval and the per-step timeouts.
type Options struct {
	Interval           time.Duration
	AcknowledgeTimeout time.Duration
	InitiateTimeout    time.Duration
	RecreateTimeout    time.Duration
	ReadyTimeout       time.Duration
	ProvisionTimeout   time.Duration
	DeleteTimeout      time.Duration
}

func (o *Options) applyDefaults() {
	if o.Interval == 0 {
		o.Interval = 5 * time.Second
	}
	if o.AcknowledgeTimeout == 0 {
		o.AcknowledgeTimeout = time.Minute
	}
	if o.InitiateTimeout == 0 {
		o.InitiateTimeout = 2 * time.Minute
	}
	if o.RecreateTimeout == 0 {
		o.RecreateTimeout = 5 * time.Minute
	}
	if o.ReadyTimeout == 0 {
		o.ReadyTimeout = 10 * time.Minute
	}
	if o.ProvisionTimeout == 0 {
		o.ProvisionTimeout = 20 * time.Minute
	}
	if o.DeleteTimeout == 0 {
		o.DeleteTimeout = 5 * time.Minute
	}
}

// Verifier runs the verification checklists.
type Verifier struct {
	logger      logr.Logger
	hub         client.Client
	fulfillment Fulfillment
	options     Options
}

// New creates a verifier. The hub client must have the osac and KubeVirt
// schemes registered.
func New(logger logr.Logger, hub client.Client, fulfillment Fulfillment, options Options) *Verifier {
	options.applyDefaults()
	return &Verifier{
		logger:      logger,
		hub:         hub,
		fulfillment: fulfillment,
		options:     options,
	}
}

// RestartFailedError is returned when the operator reports the RestartFailed
// condition during a verification run.
type RestartFailedError struct {
	Reason  string
	Message string
}

func (e *RestartFailedError) Error() string {
	return fmt.Sprintf("restart failed with reason '%s': %s", e.Reason, e.Message)
}

// StepResult records how long one step of a checklist took.
type StepResult struct {
	Name     string
	Duration time.Duration
}

// step polls one checklist condition and records its duration.
func (v *Verifier) step(ctx context.Context, steps *[]StepResult, name string, timeout time.Duration,
	condition wait.ConditionWithContextFunc) error {
	v.logger.Info("Starting verification step", "step", name, "timeout", timeout.String())
	start := time.Now()
	err := wait.PollUntilContextTimeout(ctx, v.options.Interval, timeout, true, condition)
	duration := time.Since(start)
	*steps = append(*steps, StepResult{Name: name, Duration: duration})
	if err != nil {
		return fmt.Errorf("verification step '%s' failed after %s: %w", name, duration.Round(time.Millisecond), err)
	}
	v.logger.Info("Completed verification step", "step", name, "duration", duration.String())
	return nil
}

// restartFailure converts a true RestartFailed condition into a typed error.
func restartFailure(ci *v1alpha1.ComputeInstance) error {
	condition := ci.GetStatusCondition(v1alpha1.ComputeInstanceConditionRestartFailed)
	if condition != nil && condition.Status == metav1.ConditionTrue {
		return &RestartFailedError{
			Reason:  condition.Reason,
			Message: condition.Message,
		}
	}
	return nil
}

// currentVMI fetches the VirtualMachineInstance the compute instance refers to.
func (v *Verifier) currentVMI(ctx context.Context, ci *v1alpha1.ComputeInstance) (*kubevirtv1.VirtualMachineInstance, error) {
	ref := ci.Status.VirtualMachineReference
	if ref == nil {
		return nil, fmt.Errorf("compute instance '%s/%s' has no virtual machine reference", ci.Namespace, ci.Name)
	}
	vmi := &kubevirtv1.VirtualMachineInstance{}
	key := types.NamespacedName{
		Namespace: ref.Namespace,
		Name:      ref.KubeVirtVirtualMachineName,
	}
	if err := v.hub.Get(ctx, key, vmi); err != nil {
		return nil, fmt.Errorf("failed to get virtual machine instance '%s': %w", key, err)
	}
	return vmi, nil
}

func vmiReady(vmi *kubevirtv1.VirtualMachineInstance) bool {
	for _, condition := range vmi.Status.Conditions {
		if condition.Type == kubevirtv1.VirtualMachineInstanceReady {
			return condition.Status == corev1.ConditionTrue
		}
	}
	return false
}

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

package verify

import (
	"context"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/innabox/osac-test-infra/api/v1alpha1"
)

// RestartReport is the outcome of a restart verification run.
type RestartReport struct {
	// RequestedAt is the restart timestamp sent to the fulfillment service.
	RequestedAt metav1.Time

	// BaselineLastRestartedAt is the value of status.lastRestartedAt before
	// the restart was requested, nil when the instance was never restarted.
	BaselineLastRestartedAt *metav1.Time

	// OldVMICreated and NewVMICreated are the creation timestamps of the
	// virtual machine instance before and after the restart.
	OldVMICreated metav1.Time
	NewVMICreated metav1.Time

	// Steps holds the duration of each checklist step, in execution order.
	Steps []StepResult
}

// VerifyRestart runs the restart checklist against the compute instance
// identified by key on the hub and by instanceID on the fulfillment service:
//
//  1. Snapshot the baseline restart state and the current VMI.
//  2. Request a restart through the fulfillment API.
//  3. Wait for spec.restartRequestedAt to reach the custom resource.
//  4. Wait for the operator to start the restart.
//  5. Wait for KubeVirt to recreate the VMI.
//  6. Wait for the instance to settle back into a ready state.
//
// A true RestartFailed condition observed at any point aborts the run with a
// RestartFailedError.
func (v *Verifier) VerifyRestart(ctx context.Context, key types.NamespacedName, instanceID string) (*RestartReport, error) {
	report := &RestartReport{}
	logger := v.logger.WithValues("computeinstance", key.String(), "instance", instanceID)

	// Snapshot the baseline.
	ci := &v1alpha1.ComputeInstance{}
	if err := v.hub.Get(ctx, key, ci); err != nil {
		return nil, fmt.Errorf("failed to get compute instance '%s': %w", key, err)
	}
	if err := restartFailure(ci); err != nil {
		return nil, err
	}
	vmi, err := v.currentVMI(ctx, ci)
	if err != nil {
		return nil, err
	}
	report.BaselineLastRestartedAt = ci.Status.LastRestartedAt.DeepCopy()
	report.OldVMICreated = vmi.CreationTimestamp
	logger.Info(
		"Recorded restart baseline",
		"lastRestartedAt", report.BaselineLastRestartedAt,
		"vmiCreated", report.OldVMICreated.Format(time.RFC3339),
	)

	// Request the restart. The timestamp is truncated to seconds because
	// metav1.Time serializes as RFC 3339 without fractions, and the checklist
	// compares against the round-tripped value.
	requested := metav1.NewTime(time.Now().UTC().Truncate(time.Second))
	report.RequestedAt = requested
	if err := v.fulfillment.RequestRestart(ctx, instanceID, requested.Time); err != nil {
		return report, fmt.Errorf("failed to request restart of instance '%s': %w", instanceID, err)
	}
	logger.Info("Requested restart", "requestedAt", requested.Format(time.RFC3339))

	// The fulfillment service propagates the request to the custom resource.
	err = v.step(ctx, &report.Steps, "acknowledge", v.options.AcknowledgeTimeout, func(ctx context.Context) (bool, error) {
		if err := v.hub.Get(ctx, key, ci); err != nil {
			return false, nil
		}
		if err := restartFailure(ci); err != nil {
			return false, err
		}
		at := ci.Spec.RestartRequestedAt
		return at != nil && !at.Time.Before(requested.Time), nil
	})
	if err != nil {
		return report, err
	}

	// The operator picks the request up. A fast restart can complete between
	// two polls, so an advanced lastRestartedAt counts as started too.
	err = v.step(ctx, &report.Steps, "initiate", v.options.InitiateTimeout, func(ctx context.Context) (bool, error) {
		if err := v.hub.Get(ctx, key, ci); err != nil {
			return false, nil
		}
		if err := restartFailure(ci); err != nil {
			return false, err
		}
		if ci.IsStatusConditionTrue(v1alpha1.ComputeInstanceConditionRestartInProgress) {
			return true, nil
		}
		at := ci.Status.LastRestartedAt
		return at != nil && !at.Time.Before(requested.Time), nil
	})
	if err != nil {
		return report, err
	}

	// KubeVirt recreates the VMI after the operator deletes it.
	err = v.step(ctx, &report.Steps, "recreate", v.options.RecreateTimeout, func(ctx context.Context) (bool, error) {
		if err := v.hub.Get(ctx, key, ci); err != nil {
			return false, nil
		}
		if err := restartFailure(ci); err != nil {
			return false, err
		}
		vmi, err := v.currentVMI(ctx, ci)
		if err != nil {
			return false, nil
		}
		if !vmi.CreationTimestamp.Time.After(requested.Time) {
			return false, nil
		}
		report.NewVMICreated = vmi.CreationTimestamp
		return true, nil
	})
	if err != nil {
		return report, err
	}

	// The restart is done when the recorded restart time matches the request,
	// the instance is available again and the new VMI reports ready.
	err = v.step(ctx, &report.Steps, "ready", v.options.ReadyTimeout, func(ctx context.Context) (bool, error) {
		if err := v.hub.Get(ctx, key, ci); err != nil {
			return false, nil
		}
		if err := restartFailure(ci); err != nil {
			return false, err
		}
		at := ci.Status.LastRestartedAt
		if at == nil || !at.Time.Equal(requested.Time) {
			return false, nil
		}
		if !ci.IsStatusConditionTrue(v1alpha1.ComputeInstanceConditionAvailable) {
			return false, nil
		}
		vmi, err := v.currentVMI(ctx, ci)
		if err != nil {
			return false, nil
		}
		return vmiReady(vmi), nil
	})
	if err != nil {
		return report, err
	}

	logger.Info(
		"Restart verified",
		"requestedAt", requested.Format(time.RFC3339),
		"newVMICreated", report.NewVMICreated.Format(time.RFC3339),
	)
	return report, nil
}

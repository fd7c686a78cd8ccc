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

	"k8s.io/apimachinery/pkg/types"
	kubevirtv1 "kubevirt.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/innabox/osac-test-infra/api/v1alpha1"
	"github.com/innabox/osac-test-infra/internal/fulfillment"
)

// InstanceIDLabel is the label the operator puts on ComputeInstance resources
// to link them to the fulfillment instance they implement.
const InstanceIDLabel = "osac.openshift.io/computeinstance-uuid"

// FindResource locates the ComputeInstance resource that implements the
// given fulfillment instance, erroring when it doesn't exist.
func (v *Verifier) FindResource(ctx context.Context, namespace, instanceID string) (types.NamespacedName, error) {
	ci, err := v.findInstanceResource(ctx, namespace, instanceID)
	if err != nil {
		return types.NamespacedName{}, err
	}
	if ci == nil {
		return types.NamespacedName{}, fmt.Errorf(
			"no compute instance in namespace '%s' is labeled with instance '%s'",
			namespace, instanceID,
		)
	}
	return types.NamespacedName{Namespace: ci.Namespace, Name: ci.Name}, nil
}

// CreationReport is the outcome of a creation verification run.
type CreationReport struct {
	// Resource is the ComputeInstance custom resource that implements the
	// fulfillment instance.
	Resource types.NamespacedName

	// IPAddress is the address the fulfillment service reported for the
	// instance once it became ready.
	IPAddress string

	// Steps holds the duration of each checklist step, in execution order.
	Steps []StepResult
}

// findInstanceResource lists the ComputeInstance resources labeled with the
// fulfillment instance identifier. At most one may exist.
func (v *Verifier) findInstanceResource(ctx context.Context, namespace, instanceID string) (*v1alpha1.ComputeInstance, error) {
	list := &v1alpha1.ComputeInstanceList{}
	err := v.hub.List(ctx, list,
		client.InNamespace(namespace),
		client.MatchingLabels{InstanceIDLabel: instanceID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list compute instances for '%s': %w", instanceID, err)
	}
	switch len(list.Items) {
	case 0:
		return nil, nil
	case 1:
		return &list.Items[0], nil
	default:
		return nil, fmt.Errorf("found %d compute instances labeled with '%s'", len(list.Items), instanceID)
	}
}

// VerifyCreation checks that an instance created through the fulfillment
// service actually materializes: the operator creates a ComputeInstance
// resource, the fulfillment service reports the instance ready with an IP
// address, and the cluster runs a ready virtual machine instance for it.
func (v *Verifier) VerifyCreation(ctx context.Context, namespace, instanceID string) (*CreationReport, error) {
	report := &CreationReport{}
	logger := v.logger.WithValues("namespace", namespace, "instance", instanceID)

	// The operator creates the custom resource from the fulfillment order.
	var ci *v1alpha1.ComputeInstance
	err := v.step(ctx, &report.Steps, "resource", v.options.AcknowledgeTimeout, func(ctx context.Context) (bool, error) {
		found, err := v.findInstanceResource(ctx, namespace, instanceID)
		if err != nil || found == nil {
			return false, err
		}
		ci = found
		return true, nil
	})
	if err != nil {
		return report, err
	}
	report.Resource = types.NamespacedName{Namespace: ci.Namespace, Name: ci.Name}
	logger.Info("Found compute instance resource", "computeinstance", report.Resource.String())

	// The fulfillment service converges on the ready state and reports the
	// address of the machine. A failed state aborts the wait.
	err = v.step(ctx, &report.Steps, "fulfilled", v.options.ProvisionTimeout, func(ctx context.Context) (bool, error) {
		instance, err := v.fulfillment.Get(ctx, instanceID)
		if err != nil {
			return false, nil
		}
		if instance.Status == nil {
			return false, nil
		}
		if instance.Status.State == fulfillment.StateFailed {
			return false, fmt.Errorf("instance '%s' reached the failed state", instanceID)
		}
		if instance.Status.State != fulfillment.StateReady || instance.Status.IPAddress == "" {
			return false, nil
		}
		report.IPAddress = instance.Status.IPAddress
		return true, nil
	})
	if err != nil {
		return report, err
	}
	logger.Info("Instance reported ready", "ipAddress", report.IPAddress)

	// The cluster side agrees: the resource is ready and available, and the
	// virtual machine instance is running.
	key := report.Resource
	err = v.step(ctx, &report.Steps, "available", v.options.ReadyTimeout, func(ctx context.Context) (bool, error) {
		current := &v1alpha1.ComputeInstance{}
		if err := v.hub.Get(ctx, key, current); err != nil {
			return false, nil
		}
		if current.Status.Phase != v1alpha1.ComputeInstancePhaseReady {
			return false, nil
		}
		if !current.IsStatusConditionTrue(v1alpha1.ComputeInstanceConditionAvailable) {
			return false, nil
		}
		vmi, err := v.currentVMI(ctx, current)
		if err != nil {
			return false, nil
		}
		return vmi.Status.Phase == kubevirtv1.Running && vmiReady(vmi), nil
	})
	if err != nil {
		return report, err
	}

	logger.Info("Creation verified", "computeinstance", report.Resource.String(), "ipAddress", report.IPAddress)
	return report, nil
}

// VerifyDeletion checks that after the instance is deleted through the
// fulfillment service the ComputeInstance resource goes away.
func (v *Verifier) VerifyDeletion(ctx context.Context, namespace, instanceID string) error {
	var steps []StepResult
	return v.step(ctx, &steps, "deleted", v.options.DeleteTimeout, func(ctx context.Context) (bool, error) {
		found, err := v.findInstanceResource(ctx, namespace, instanceID)
		if err != nil {
			return false, nil
		}
		return found == nil, nil
	})
}

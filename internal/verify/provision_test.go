package verify_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/innabox/osac-test-infra/api/v1alpha1"
	"github.com/innabox/osac-test-infra/internal/fulfillment"
)

var _ = Describe("VerifyCreation", func() {
	var (
		ctx       context.Context
		hubClient client.Client
		ff        *fakeFulfillment
	)

	baseInstance := func() *v1alpha1.ComputeInstance {
		return &v1alpha1.ComputeInstance{
			ObjectMeta: testObjectMeta(),
			Status: v1alpha1.ComputeInstanceStatus{
				Phase: v1alpha1.ComputeInstancePhaseReady,
				VirtualMachineReference: &v1alpha1.VirtualMachineReferenceType{
					Namespace:                  testNamespace,
					KubeVirtVirtualMachineName: vmiName,
				},
				Conditions: availableConditions(),
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		ff = &fakeFulfillment{
			instance: &fulfillment.Instance{
				ID: instanceID,
				Status: &fulfillment.InstanceStatus{
					State:     fulfillment.StateReady,
					IPAddress: "192.168.4.17",
					Conditions: []fulfillment.Condition{
						{
							Type:   fulfillment.ConditionReady,
							Status: fulfillment.ConditionStatusTrue,
						},
					},
				},
			},
		}
	})

	It("should verify a provisioned instance", func() {
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(baseInstance(), readyVMI(time.Now().Add(-time.Minute))).
			Build()

		report, err := newTestVerifier(hubClient, ff).VerifyCreation(ctx, testNamespace, instanceID)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Resource.Name).To(Equal(instanceName))
		Expect(report.Resource.Namespace).To(Equal(testNamespace))
		Expect(report.IPAddress).To(Equal("192.168.4.17"))
		Expect(report.Steps).To(HaveLen(3))
	})

	It("should time out when the resource never appears", func() {
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			Build()

		_, err := newTestVerifier(hubClient, ff).VerifyCreation(ctx, testNamespace, instanceID)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("resource"))
	})

	It("should abort when the fulfillment service reports failure", func() {
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(baseInstance(), readyVMI(time.Now().Add(-time.Minute))).
			Build()
		ff.instance.Status.State = fulfillment.StateFailed

		_, err := newTestVerifier(hubClient, ff).VerifyCreation(ctx, testNamespace, instanceID)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("failed state"))
	})

	It("should wait for the instance to become available on the cluster", func() {
		ci := baseInstance()
		ci.Status.Phase = v1alpha1.ComputeInstancePhaseProgressing
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(ci, readyVMI(time.Now().Add(-time.Minute))).
			Build()

		_, err := newTestVerifier(hubClient, ff).VerifyCreation(ctx, testNamespace, instanceID)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("available"))
	})
})

var _ = Describe("VerifyDeletion", func() {
	var (
		ctx context.Context
		ff  *fakeFulfillment
	)

	BeforeEach(func() {
		ctx = context.Background()
		ff = &fakeFulfillment{}
	})

	It("should succeed once the resource is gone", func() {
		hubClient := fake.NewClientBuilder().
			WithScheme(newScheme()).
			Build()

		verifier := newTestVerifier(hubClient, ff)
		Expect(verifier.VerifyDeletion(ctx, testNamespace, instanceID)).To(Succeed())
	})

	It("should time out while the resource still exists", func() {
		ci := &v1alpha1.ComputeInstance{
			ObjectMeta: testObjectMeta(),
		}
		hubClient := fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(ci).
			Build()

		verifier := newTestVerifier(hubClient, ff)
		Expect(verifier.VerifyDeletion(ctx, testNamespace, instanceID)).To(HaveOccurred())
	})
})

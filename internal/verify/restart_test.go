package verify_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/innabox/osac-test-infra/api/v1alpha1"
	"github.com/innabox/osac-test-infra/internal/verify"
)

var _ = Describe("VerifyRestart", func() {
	var (
		ctx       context.Context
		hubClient client.Client
		ff        *fakeFulfillment
		key       types.NamespacedName
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
		ff = &fakeFulfillment{}
		key = types.NamespacedName{Namespace: testNamespace, Name: instanceName}
	})

	It("should verify a successful restart", func() {
		oldCreated := time.Now().Add(-time.Hour)
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(baseInstance(), readyVMI(oldCreated)).
			Build()

		// Play the operator: propagate the request, record the restart and
		// recreate the VMI with a later creation timestamp.
		ff.onRestart = func(at time.Time) {
			ci := &v1alpha1.ComputeInstance{}
			Expect(hubClient.Get(ctx, key, ci)).To(Succeed())
			requested := metav1.NewTime(at)
			ci.Spec.RestartRequestedAt = &requested
			ci.Status.LastRestartedAt = &requested
			Expect(hubClient.Update(ctx, ci)).To(Succeed())

			Expect(hubClient.Delete(ctx, readyVMI(oldCreated))).To(Succeed())
			Expect(hubClient.Create(ctx, readyVMI(at.Add(2*time.Second)))).To(Succeed())
		}

		report, err := newTestVerifier(hubClient, ff).VerifyRestart(ctx, key, instanceID)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.BaselineLastRestartedAt).To(BeNil())
		Expect(report.OldVMICreated.Time).To(BeTemporally("~", oldCreated, time.Second))
		Expect(report.NewVMICreated.Time).To(BeTemporally(">", report.RequestedAt.Time))
		Expect(report.Steps).To(HaveLen(4))
		Expect(report.Steps[0].Name).To(Equal("acknowledge"))
		Expect(report.Steps[3].Name).To(Equal("ready"))
	})

	It("should fail immediately without a virtual machine reference", func() {
		ci := baseInstance()
		ci.Status.VirtualMachineReference = nil
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(ci).
			Build()

		_, err := newTestVerifier(hubClient, ff).VerifyRestart(ctx, key, instanceID)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no virtual machine reference"))
	})

	It("should surface an existing restart failure", func() {
		ci := baseInstance()
		ci.Status.Conditions = append(ci.Status.Conditions, metav1.Condition{
			Type:               string(v1alpha1.ComputeInstanceConditionRestartFailed),
			Status:             metav1.ConditionTrue,
			Reason:             "NoVMReference",
			Message:            "No VirtualMachine reference found",
			LastTransitionTime: metav1.Now(),
		})
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(ci, readyVMI(time.Now().Add(-time.Hour))).
			Build()

		_, err := newTestVerifier(hubClient, ff).VerifyRestart(ctx, key, instanceID)
		Expect(err).To(HaveOccurred())

		restartErr := &verify.RestartFailedError{}
		Expect(errors.As(err, &restartErr)).To(BeTrue())
		Expect(restartErr.Reason).To(Equal("NoVMReference"))
	})

	It("should abort when the restart fails during the run", func() {
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(baseInstance(), readyVMI(time.Now().Add(-time.Hour))).
			Build()

		ff.onRestart = func(at time.Time) {
			ci := &v1alpha1.ComputeInstance{}
			Expect(hubClient.Get(ctx, key, ci)).To(Succeed())
			ci.Status.Conditions = append(ci.Status.Conditions, metav1.Condition{
				Type:               string(v1alpha1.ComputeInstanceConditionRestartFailed),
				Status:             metav1.ConditionTrue,
				Reason:             "VMIDeletionFailed",
				Message:            "Failed to delete VMI",
				LastTransitionTime: metav1.Now(),
			})
			Expect(hubClient.Update(ctx, ci)).To(Succeed())
		}

		_, err := newTestVerifier(hubClient, ff).VerifyRestart(ctx, key, instanceID)
		Expect(err).To(HaveOccurred())

		restartErr := &verify.RestartFailedError{}
		Expect(errors.As(err, &restartErr)).To(BeTrue())
		Expect(restartErr.Reason).To(Equal("VMIDeletionFailed"))
	})

	It("should time out when the request is never acknowledged", func() {
		hubClient = fake.NewClientBuilder().
			WithScheme(newScheme()).
			WithObjects(baseInstance(), readyVMI(time.Now().Add(-time.Hour))).
			Build()

		report, err := newTestVerifier(hubClient, ff).VerifyRestart(ctx, key, instanceID)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("acknowledge"))
		Expect(report.Steps).To(HaveLen(1))
	})
})

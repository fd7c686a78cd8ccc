package e2e_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/innabox/osac-test-infra/internal/fulfillment"
)

var _ = Describe("Compute instance restart", func() {
	It("restarts the virtual machine when a restart is requested", func(ctx SpecContext) {
		instanceID := os.Getenv("TEST_INSTANCE_ID")
		if instanceID == "" {
			Skip("Restart scenario was skipped because environment variable 'TEST_INSTANCE_ID' isn't set")
		}

		By("locating the ComputeInstance resource on the hub")
		key, err := verifier.FindResource(ctx, cfg.Namespace, instanceID)
		Expect(err).NotTo(HaveOccurred())

		By("requesting a restart and following it through the cluster")
		report, err := verifier.VerifyRestart(ctx, key, instanceID)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.NewVMICreated.Time).To(BeTemporally(">", report.RequestedAt.Time))

		By("checking the fulfillment service reflects the completed restart")
		instance, err := ffClient.Get(ctx, instanceID)
		Expect(err).NotTo(HaveOccurred())
		Expect(instance.Status).NotTo(BeNil())
		Expect(instance.Status.LastRestartedAt).NotTo(BeEmpty())
		last, err := time.Parse(time.RFC3339, instance.Status.LastRestartedAt)
		Expect(err).NotTo(HaveOccurred())
		Expect(last).To(BeTemporally("==", report.RequestedAt.Time))
		Expect(instance.IsConditionTrue(fulfillment.ConditionRestartInProgress)).To(BeFalse())
		Expect(instance.IsConditionTrue(fulfillment.ConditionRestartFailed)).To(BeFalse())
	}, SpecTimeout(30*time.Minute))
})

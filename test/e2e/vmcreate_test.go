package e2e_test

import (
	"encoding/json"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/innabox/osac-test-infra/internal/fulfillment"
)

var _ = Describe("Virtual machine creation", func() {
	It("creates a running virtual machine from a template", func(ctx SpecContext) {
		templateID := os.Getenv("TEST_TEMPLATE_ID")
		if templateID == "" {
			Skip("Creation scenario was skipped because environment variable 'TEST_TEMPLATE_ID' isn't set")
		}
		var parameters map[string]any
		if raw := os.Getenv("TEST_TEMPLATE_PARAMETERS"); raw != "" {
			Expect(json.Unmarshal([]byte(raw), &parameters)).To(Succeed())
		}

		By("ordering a compute instance from the template")
		instance, err := ffClient.Create(ctx, templateID, parameters)
		Expect(err).NotTo(HaveOccurred())
		Expect(instance.ID).NotTo(BeEmpty())
		DeferCleanup(func(ctx SpecContext) {
			// Best effort, the happy path deletes it below.
			_ = ffClient.Delete(ctx, instance.ID)
		})

		By("waiting for the instance to be provisioned")
		report, err := verifier.VerifyCreation(ctx, cfg.Namespace, instance.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.IPAddress).NotTo(BeEmpty())

		By("checking the fulfillment service reports the instance ready")
		current, err := ffClient.Get(ctx, instance.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(current.Status).NotTo(BeNil())
		Expect(current.Status.State).To(Equal(fulfillment.StateReady))
		Expect(current.IsConditionTrue(fulfillment.ConditionReady)).To(BeTrue())
		Expect(current.Status.IPAddress).To(Equal(report.IPAddress))

		By("deleting the instance")
		Expect(ffClient.Delete(ctx, instance.ID)).To(Succeed())
		Expect(verifier.VerifyDeletion(ctx, cfg.Namespace, instance.ID)).To(Succeed())
	}, SpecTimeout(45*time.Minute))
})

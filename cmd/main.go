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

// Main entrypoint for the verify-restart runner. It drives a restart of a
// compute instance through the fulfillment service and checks that the
// operator and KubeVirt carry it out on the hub cluster.
package main

import (
	"errors"
	"flag"
	"os"
	"time"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"golang.org/x/oauth2"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	kubevirtv1 "kubevirt.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/innabox/osac-test-infra/api/v1alpha1"
	"github.com/innabox/osac-test-infra/internal/config"
	"github.com/innabox/osac-test-infra/internal/fulfillment"
	"github.com/innabox/osac-test-infra/internal/keycloak"
	"github.com/innabox/osac-test-infra/internal/verify"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1alpha1.AddToScheme(scheme))
	utilruntime.Must(kubevirtv1.AddToScheme(scheme))
}

func main() {
	var instanceID string
	var resourceName string
	var grpcPlaintext bool
	var grpcInsecure bool
	var grpcTokenFile string
	var fulfillmentServerAddress string
	flag.StringVar(
		&instanceID,
		"instance-id",
		"",
		"Identifier of the compute instance on the fulfillment service.",
	)
	flag.StringVar(
		&resourceName,
		"computeinstance-name",
		"",
		"Name of the ComputeInstance resource. Looked up by instance label when empty.",
	)
	flag.BoolVar(
		&grpcPlaintext,
		"grpc-plaintext",
		false,
		"Enable gRPC without TLS.",
	)
	flag.BoolVar(
		&grpcInsecure,
		"grpc-insecure",
		true,
		"Enable insecure gRPC, without checking the server TLS certificates.",
	)
	flag.StringVar(
		&grpcTokenFile,
		"fulfillment-server-token-file",
		os.Getenv("FULFILLMENT_TOKEN_FILE"),
		"Path of the file containing the token for gRPC authentication to the fulfillment service.",
	)
	flag.StringVar(
		&fulfillmentServerAddress,
		"fulfillment-server-address",
		os.Getenv("FULFILLMENT_SERVER_ADDRESS"),
		"Address of the fulfillment server. Derived from the environment when empty.",
	)
	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if instanceID == "" {
		setupLog.Info("the -instance-id flag is required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		setupLog.Error(err, "failed to load configuration")
		os.Exit(1)
	}
	if fulfillmentServerAddress == "" {
		fulfillmentServerAddress = cfg.FulfillmentAddress()
	}

	ctx := ctrl.SetupSignalHandler()

	// Authentication: an explicit token file wins, otherwise log in to
	// Keycloak with the configured credentials.
	var tokenSource oauth2.TokenSource
	if grpcTokenFile == "" {
		if !cfg.HaveCredentials() {
			setupLog.Info("no token file and no Keycloak credentials configured")
			os.Exit(1)
		}
		session, err := keycloak.Login(ctx, keycloak.Options{
			BaseURL:            cfg.KeycloakURL(),
			Username:           cfg.KeycloakUsername,
			Password:           cfg.KeycloakPassword,
			InsecureSkipVerify: cfg.GRPCInsecure,
		})
		if err != nil {
			setupLog.Error(err, "failed to authenticate with Keycloak")
			os.Exit(1)
		}
		tokenSource = session.TokenSource()
	}

	grpcConn, err := fulfillment.NewConn(fulfillment.ConnOptions{
		Address:     fulfillmentServerAddress,
		Plaintext:   grpcPlaintext,
		Insecure:    grpcInsecure,
		TokenSource: tokenSource,
		TokenFile:   grpcTokenFile,
	})
	if err != nil {
		setupLog.Error(err, "failed to create gRPC connection to fulfillment service")
		os.Exit(1)
	}
	defer grpcConn.Close() //nolint:errcheck

	hubClient, err := client.New(ctrl.GetConfigOrDie(), client.Options{Scheme: scheme})
	if err != nil {
		setupLog.Error(err, "failed to create hub client")
		os.Exit(1)
	}

	verifier := verify.New(
		ctrl.Log.WithName("verify"),
		hubClient,
		fulfillment.NewClient(ctrl.Log.WithName("fulfillment"), grpcConn),
		verify.Options{
			Interval:           cfg.PollInterval,
			AcknowledgeTimeout: cfg.AcknowledgeTimeout,
			InitiateTimeout:    cfg.InitiateTimeout,
			RecreateTimeout:    cfg.RecreateTimeout,
			ReadyTimeout:       cfg.ReadyTimeout,
			ProvisionTimeout:   cfg.ProvisionTimeout,
			DeleteTimeout:      cfg.DeleteTimeout,
		},
	)

	key := types.NamespacedName{Namespace: cfg.Namespace, Name: resourceName}
	if key.Name == "" {
		key, err = verifier.FindResource(ctx, cfg.Namespace, instanceID)
		if err != nil {
			setupLog.Error(err, "failed to locate the compute instance resource")
			os.Exit(1)
		}
	}

	report, err := verifier.VerifyRestart(ctx, key, instanceID)
	if err != nil {
		restartErr := &verify.RestartFailedError{}
		if errors.As(err, &restartErr) {
			setupLog.Error(err, "operator reported restart failure",
				"reason", restartErr.Reason, "message", restartErr.Message)
		} else {
			setupLog.Error(err, "restart verification failed")
		}
		os.Exit(1)
	}

	setupLog.Info("restart verified",
		"requestedAt", report.RequestedAt.Format(time.RFC3339),
		"oldVMICreated", report.OldVMICreated.Format(time.RFC3339),
		"newVMICreated", report.NewVMICreated.Format(time.RFC3339),
	)
	for _, step := range report.Steps {
		setupLog.Info("step timing", "step", step.Name, "duration", step.Duration.String())
	}
}

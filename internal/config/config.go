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

// Package config loads the test infrastructure configuration from the
// environment. The variable names are shared with the rest of the OSAC test
// tooling, so the same environment drives the Go suites, the standalone
// runner and the fulfillment-cli.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the suites need to reach the deployment under test.
type Config struct {
	// Namespace is the namespace the fulfillment service and the hub-access
	// secret live in.
	Namespace string `envconfig:"TEST_NAMESPACE" default:"foobar"`

	// ClusterDomainSuffix is the application domain suffix of the cluster.
	ClusterDomainSuffix string `envconfig:"CLUSTER_DOMAIN_SUFFIX" default:"apps.hcp.local.lab"`

	// FulfillmentAppName is the name of the fulfillment service route.
	FulfillmentAppName string `envconfig:"FULFILLMENT_APP_NAME" default:"fulfillment-api"`

	// FulfillmentPort is the port the fulfillment gRPC endpoint listens on.
	FulfillmentPort string `envconfig:"FULFILLMENT_PORT" default:"443"`

	// FulfillmentCLIPath is the path of the fulfillment-cli binary.
	FulfillmentCLIPath string `envconfig:"FULFILLMENT_CLI_PATH" default:"fulfillment-cli"`

	// KeycloakUsername and KeycloakPassword are the credentials used for the
	// password grant. The e2e suites skip when they are empty.
	KeycloakUsername string `envconfig:"KEYCLOAK_USERNAME"`
	KeycloakPassword string `envconfig:"KEYCLOAK_PASSWORD"`

	// GRPCPlaintext disables TLS entirely on the fulfillment connection.
	GRPCPlaintext bool `envconfig:"FULFILLMENT_GRPC_PLAINTEXT" default:"false"`

	// GRPCInsecure keeps TLS but skips server certificate verification. Lab
	// clusters use self-signed certificates, so this defaults to true.
	GRPCInsecure bool `envconfig:"FULFILLMENT_GRPC_INSECURE" default:"true"`

	// PollInterval is the interval between polls of the verification steps.
	PollInterval time.Duration `envconfig:"VERIFY_POLL_INTERVAL" default:"5s"`

	// AcknowledgeTimeout bounds the wait for spec.restartRequestedAt to show
	// up on the custom resource after the fulfillment update.
	AcknowledgeTimeout time.Duration `envconfig:"VERIFY_ACKNOWLEDGE_TIMEOUT" default:"1m"`

	// InitiateTimeout bounds the wait for the operator to pick the request up.
	InitiateTimeout time.Duration `envconfig:"VERIFY_INITIATE_TIMEOUT" default:"2m"`

	// RecreateTimeout bounds the wait for KubeVirt to recreate the VMI.
	RecreateTimeout time.Duration `envconfig:"VERIFY_RECREATE_TIMEOUT" default:"5m"`

	// ReadyTimeout bounds the wait for the instance to become available again.
	ReadyTimeout time.Duration `envconfig:"VERIFY_READY_TIMEOUT" default:"10m"`

	// ProvisionTimeout bounds the wait for a newly created instance to become
	// ready in the VM creation scenario.
	ProvisionTimeout time.Duration `envconfig:"VERIFY_PROVISION_TIMEOUT" default:"20m"`

	// DeleteTimeout bounds the wait for the custom resource to go away after
	// the instance is deleted.
	DeleteTimeout time.Duration `envconfig:"VERIFY_DELETE_TIMEOUT" default:"5m"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return c, nil
}

// FulfillmentAddress returns the host:port of the fulfillment gRPC endpoint.
func (c *Config) FulfillmentAddress() string {
	return fmt.Sprintf(
		"%s-%s.%s:%s",
		c.FulfillmentAppName, c.Namespace, c.ClusterDomainSuffix, c.FulfillmentPort,
	)
}

// KeycloakURL returns the base URL of the Keycloak instance of the cluster.
func (c *Config) KeycloakURL() string {
	return fmt.Sprintf("https://keycloak-keycloak.%s", c.ClusterDomainSuffix)
}

// HaveCredentials returns true when Keycloak credentials are configured.
func (c *Config) HaveCredentials() bool {
	return c.KeycloakUsername != "" && c.KeycloakPassword != ""
}

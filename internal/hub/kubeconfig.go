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

// Package hub builds access to the hub cluster for the test suites. The hub
// runs the operator and the fulfillment service; the suites talk to it with a
// kubeconfig minted from the hub-access service account.
package hub

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// AccessSecretName is the name of the service account token secret the
// deployment creates for external test access.
const AccessSecretName = "hub-access"

// KubeconfigOptions contains the parameters needed to mint the kubeconfig.
type KubeconfigOptions struct {
	// Client is used to read the hub-access secret.
	Client kubernetes.Interface

	// Namespace is the namespace containing the hub-access secret.
	Namespace string

	// Server is the API server URL of the hub cluster.
	Server string
}

// Kubeconfig reads the hub-access token and assembles a client configuration
// for the hub cluster. Lab clusters use self-signed certificates, so the
// configuration skips TLS verification.
func Kubeconfig(ctx context.Context, opts KubeconfigOptions) (*clientcmdapi.Config, error) {
	secret, err := opts.Client.CoreV1().Secrets(opts.Namespace).Get(ctx, AccessSecretName, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret '%s/%s': %w", opts.Namespace, AccessSecretName, err)
	}
	if secret.Type != corev1.SecretTypeServiceAccountToken {
		return nil, fmt.Errorf(
			"secret '%s/%s' has type '%s', expected '%s'",
			opts.Namespace, AccessSecretName, secret.Type, corev1.SecretTypeServiceAccountToken,
		)
	}
	token := secret.Data[corev1.ServiceAccountTokenKey]
	if len(token) == 0 {
		return nil, fmt.Errorf("secret '%s/%s' contains no token", opts.Namespace, AccessSecretName)
	}

	contextName, err := contextNameFor(opts.Server)
	if err != nil {
		return nil, err
	}
	userName := fmt.Sprintf("system:serviceaccount:%s:%s", opts.Namespace, AccessSecretName)

	config := clientcmdapi.NewConfig()
	config.Clusters[contextName] = &clientcmdapi.Cluster{
		Server:                opts.Server,
		InsecureSkipTLSVerify: true,
	}
	config.AuthInfos[userName] = &clientcmdapi.AuthInfo{
		Token: string(token),
	}
	config.Contexts[contextName] = &clientcmdapi.Context{
		Cluster:   contextName,
		AuthInfo:  userName,
		Namespace: opts.Namespace,
	}
	config.CurrentContext = contextName
	return config, nil
}

// WriteKubeconfig mints the kubeconfig and writes it to a file under the
// given directory, returning the file path. An empty directory selects a
// temporary one.
func WriteKubeconfig(ctx context.Context, opts KubeconfigOptions, dir string) (string, error) {
	config, err := Kubeconfig(ctx, opts)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir, err = os.MkdirTemp("", "hub-kubeconfig-")
		if err != nil {
			return "", fmt.Errorf("failed to create kubeconfig directory: %w", err)
		}
	}
	path := filepath.Join(dir, "kubeconfig")
	if err := clientcmd.WriteToFile(*config, path); err != nil {
		return "", fmt.Errorf("failed to write kubeconfig to '%s': %w", path, err)
	}
	return path, nil
}

// contextNameFor derives the context and cluster name from the server URL.
func contextNameFor(server string) (string, error) {
	parsed, err := url.Parse(server)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid hub API server URL '%s'", server)
	}
	name := parsed.Hostname()
	if port := parsed.Port(); port != "" {
		name = fmt.Sprintf("%s:%s", name, port)
	}
	return name, nil
}

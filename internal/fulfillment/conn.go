/*
Copyright (c) 2025 Red Hat Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the
License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the specific
language governing permissions and limitations under the License.
*/

// Package fulfillment is a client for the fulfillment.v1.ComputeInstances
// gRPC service. The service owns its own protos; this package talks to it the
// way grpcurl does, through server reflection and JSON payloads, so that the
// test infrastructure doesn't have to vendor generated stubs.
package fulfillment

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	insecurecredentials "google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/credentials/oauth"
	experimentalcredentials "google.golang.org/grpc/experimental/credentials"
)

// ConnOptions contains the parameters of the gRPC connection to the
// fulfillment service.
type ConnOptions struct {
	// Address is the host:port of the fulfillment gRPC endpoint.
	Address string

	// Plaintext enables gRPC without TLS.
	Plaintext bool

	// Insecure enables TLS without checking the server certificates.
	Insecure bool

	// TokenSource provides the token used for per-RPC authentication.
	// Optional, and mutually exclusive with TokenFile.
	TokenSource oauth2.TokenSource

	// TokenFile is the path of a file containing the authentication token.
	// The file is re-read whenever a token is needed.
	TokenFile string
}

// NewConn creates the gRPC connection to the fulfillment service.
func NewConn(opts ConnOptions) (*grpc.ClientConn, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("fulfillment server address is required")
	}

	// Configure use of TLS:
	var dialOpts []grpc.DialOption
	var transportCreds credentials.TransportCredentials
	if opts.Plaintext {
		transportCreds = insecurecredentials.NewCredentials()
	} else {
		tlsConfig := &tls.Config{}
		if opts.Insecure {
			tlsConfig.InsecureSkipVerify = true
		}

		// The OpenShift router doesn't seem to support ALPN, and the regular
		// credentials package requires it since version 1.67. See here for
		// details:
		//
		// https://github.com/grpc/grpc-go/issues/434
		// https://github.com/grpc/grpc-go/pull/7980
		transportCreds = experimentalcredentials.NewTLSWithALPNDisabled(tlsConfig)
	}
	dialOpts = append(dialOpts, grpc.WithTransportCredentials(transportCreds))

	// Configure use of token:
	switch {
	case opts.TokenSource != nil:
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(oauth.TokenSource{
			TokenSource: opts.TokenSource,
		}))
	case opts.TokenFile != "":
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(oauth.TokenSource{
			TokenSource: &fileTokenSource{
				tokenFile: opts.TokenFile,
			},
		}))
	}

	conn, err := grpc.NewClient(opts.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to '%s': %w", opts.Address, err)
	}
	return conn, nil
}

// fileTokenSource is a token source that reads the token from a file whenever it is needed.
type fileTokenSource struct {
	tokenFile string
}

func (s *fileTokenSource) Token() (token *oauth2.Token, err error) {
	var data []byte
	data, err = os.ReadFile(s.tokenFile)
	if err != nil {
		err = fmt.Errorf("failed to read token from file '%s': %w", s.tokenFile, err)
		return
	}
	token = &oauth2.Token{
		AccessToken: strings.TrimSpace(string(data)),
	}
	return
}

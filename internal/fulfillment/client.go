/*
Copyright (c) 2025 Red Hat Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the
License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the specific
language governing permissions and limitations under the License.
*/

package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fullstorydev/grpcurl"
	"github.com/go-logr/logr"
	"github.com/jhump/protoreflect/grpcreflect"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
)

// computeInstancesService is the fully qualified name of the service.
const computeInstancesService = "fulfillment.v1.ComputeInstances"

// Client invokes the ComputeInstances service through server reflection.
type Client struct {
	logger logr.Logger
	conn   *grpc.ClientConn
}

// NewClient creates a client on top of an existing connection. The caller
// remains the owner of the connection.
func NewClient(logger logr.Logger, conn *grpc.ClientConn) *Client {
	return &Client{
		logger: logger,
		conn:   conn,
	}
}

// Get fetches a compute instance by identifier.
func (c *Client) Get(ctx context.Context, id string) (*Instance, error) {
	response, err := c.invoke(ctx, "Get", map[string]any{
		"id": id,
	})
	if err != nil {
		return nil, err
	}
	return ParseInstanceResponse(response)
}

// Create requests a new compute instance from the given template.
func (c *Client) Create(ctx context.Context, templateID string, parameters map[string]any) (*Instance, error) {
	response, err := c.invoke(ctx, "Create", objectEnvelope{
		Object: &Instance{
			Spec: &InstanceSpec{
				TemplateID:         templateID,
				TemplateParameters: parameters,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return ParseInstanceResponse(response)
}

// RequestRestart asks the fulfillment service to restart the instance by
// setting spec.restartRequestedAt, the declarative restart signal of the
// compute instance API.
func (c *Client) RequestRestart(ctx context.Context, id string, at time.Time) error {
	_, err := c.invoke(ctx, "Update", objectEnvelope{
		Object: &Instance{
			ID: id,
			Spec: &InstanceSpec{
				RestartRequestedAt: at.UTC().Format(time.RFC3339),
			},
		},
	})
	return err
}

// Delete requests the deletion of a compute instance.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.invoke(ctx, "Delete", map[string]any{
		"id": id,
	})
	return err
}

// invoke calls a unary method of the ComputeInstances service with a JSON
// payload and returns the JSON response body.
func (c *Client) invoke(ctx context.Context, method string, payload any) (result []byte, err error) {
	name := fmt.Sprintf("%s/%s", computeInstancesService, method)

	data, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("failed to marshal request for '%s': %w", name, err)
		return
	}

	// The descriptors come from the reflection endpoint of the server, so the
	// client never needs the service protos.
	refClient := grpcreflect.NewClientAuto(ctx, c.conn)
	defer refClient.Reset()
	source := grpcurl.DescriptorSourceFromServer(ctx, refClient)

	parser, formatter, err := grpcurl.RequestParserAndFormatter(
		grpcurl.FormatJSON, source, bytes.NewReader(data), grpcurl.FormatOptions{},
	)
	if err != nil {
		err = fmt.Errorf("failed to prepare request for '%s': %w", name, err)
		return
	}

	out := &bytes.Buffer{}
	handler := &grpcurl.DefaultEventHandler{
		Out:       out,
		Formatter: formatter,
	}

	c.logger.V(1).Info(
		"Invoking fulfillment method",
		"method", name,
		"request", string(data),
	)
	err = grpcurl.InvokeRPC(ctx, source, c.conn, name, nil, handler, parser.Next)
	if err != nil {
		err = fmt.Errorf("failed to invoke '%s': %w", name, err)
		return
	}
	if handler.Status.Code() != codes.OK {
		err = fmt.Errorf(
			"method '%s' failed with code %s: %s",
			name, handler.Status.Code(), handler.Status.Message(),
		)
		return
	}

	result = out.Bytes()
	return
}

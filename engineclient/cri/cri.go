// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cri

import (
	"context"

	"github.com/pkg/errors"
	"github.com/thediveo/ecsfilter/engineclient"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	runtimev1 "k8s.io/cri-api/pkg/apis/runtime/v1"
)

// AnnotationKeyPrefix prefixes all Kubernetes annotation keys in order to avoid
// clashes between label keys and annotation keys.
const AnnotationKeyPrefix = "annotation.k8s/"

// kubeAPIVersion is the CRI API version we tell the engine we're speaking.
const kubeAPIVersion = "0.1.0"

// Type specifies this container engine's type identifier.
const Type = "k8s.io/cri-api"

// CRIClient is a CRI EngineClient for looking up container labels from
// container engines that support the CRI API. Oh, it's “CRI”, not “Cri”.
type CRIClient struct {
	client *Client // CRI API client.
}

// NewCRIClient returns a new CRIClient using the specified CRI API client;
// normally, you would want to use this lower-level constructor only in unit
// tests.
func NewCRIClient(client *Client) *CRIClient {
	return &CRIClient{
		client: client,
	}
}

// Make sure that the EngineClient interface is fully implemented
var _ (engineclient.EngineClient) = (*CRIClient)(nil)

// Type returns the type identifier for this container engine.
func (cc *CRIClient) Type() string { return Type }

// API returns the container engine API path.
func (cc *CRIClient) API() string { return cc.client.Address() }

// Close cleans up and release any engine client resources, if necessary.
func (cc *CRIClient) Close() {
	_ = cc.client.Close()
}

// Ping checks that the CRI engine is responding by querying its runtime
// version.
func (cc *CRIClient) Ping(ctx context.Context) error {
	if _, err := cc.client.rtcl.Version(ctx, &runtimev1.VersionRequest{
		Version: kubeAPIVersion,
	}); err != nil {
		return errors.Wrapf(err, "CRI engine at '%s' not responding", cc.API())
	}
	return nil
}

// Labels returns the labels of the container with the specified ID, including
// its annotations in the form of labels prefixed by AnnotationKeyPrefix.
func (cc *CRIClient) Labels(ctx context.Context, nameorid string) (map[string]string, error) {
	resp, err := cc.client.rtcl.ContainerStatus(ctx, &runtimev1.ContainerStatusRequest{
		ContainerId: nameorid,
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, engineclient.NoSuchContainer(nameorid)
		}
		return nil, errors.Wrapf(err, "cannot query status of CRI container '%s'", nameorid)
	}
	if resp.Status == nil {
		return nil, engineclient.NoSuchContainer(nameorid)
	}
	labels := make(map[string]string, len(resp.Status.Labels)+len(resp.Status.Annotations))
	for key, value := range resp.Status.Labels {
		labels[key] = value
	}
	for key, value := range resp.Status.Annotations {
		labels[AnnotationKeyPrefix+key] = value
	}
	return labels, nil
}

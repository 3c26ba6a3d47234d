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

package containerd

import (
	"context"
	"strings"

	"github.com/containerd/containerd"
	"github.com/containerd/containerd/containers"
	"github.com/containerd/containerd/errdefs"
	"github.com/containerd/containerd/namespaces"
	"github.com/pkg/errors"
	"github.com/thediveo/ecsfilter/engineclient"
)

// Type specifies this container engine's type identifier.
const Type = "containerd.io"

// DockerNamespace is the name of the containerd namespace used by Docker for
// its own containers (and tasks).
const DockerNamespace = "moby"

// nsdelemiter is the delemiter used to separate a containerd namespace from a
// containerd ID.
const nsdelemiter = "/"

// ContainerdAPIClient is the (minimal) containerd client API needed for
// looking up container labels; containerd's containerd.Client is a compatible
// implementation.
type ContainerdAPIClient interface {
	ContainerService() containers.Store
	Version(ctx context.Context) (containerd.Version, error)
	Close() error
}

// ContainerdClient is a containerd EngineClient for looking up container
// labels.
type ContainerdClient struct {
	client    ContainerdAPIClient // containerd API client.
	namespace string              // default namespace for plain IDs.
	apipath   string              // containerd API endpoint, if known.
}

// Make sure that the EngineClient interface is fully implemented
var _ (engineclient.EngineClient) = (*ContainerdClient)(nil)

// NewContainerdClient returns a new ContainerdClient using the specified
// containerd engine client; normally, you would want to use this lower-level
// constructor only in unit tests.
func NewContainerdClient(client ContainerdAPIClient, opts ...NewOption) *ContainerdClient {
	cc := &ContainerdClient{
		client:    client,
		namespace: DockerNamespace,
	}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// NewOption represents options to NewContainerdClient when creating new
// engine clients for containerd engines.
type NewOption func(*ContainerdClient)

// WithNamespace sets the containerd namespace to look up plain container IDs
// in, instead of the default "moby" namespace.
func WithNamespace(namespace string) NewOption {
	return func(cc *ContainerdClient) {
		if namespace != "" {
			cc.namespace = namespace
		}
	}
}

// WithAPIPath sets the API endpoint path reported by API.
func WithAPIPath(apipath string) NewOption {
	return func(cc *ContainerdClient) {
		cc.apipath = apipath
	}
}

// Type returns the type identifier for this container engine.
func (cc *ContainerdClient) Type() string { return Type }

// API returns the container engine API path.
func (cc *ContainerdClient) API() string { return cc.apipath }

// Namespace returns the default namespace plain container IDs are looked up in.
func (cc *ContainerdClient) Namespace() string { return cc.namespace }

// Close cleans up and release any engine client resources, if necessary.
func (cc *ContainerdClient) Close() {
	_ = cc.client.Close()
}

// Ping checks that the containerd engine is responding by querying its version.
func (cc *ContainerdClient) Ping(ctx context.Context) error {
	if _, err := cc.client.Version(ctx); err != nil {
		return errors.Wrapf(err, "containerd engine at '%s' not responding", cc.apipath)
	}
	return nil
}

// Labels returns the labels of the container with the specified (optionally
// namespaced) ID.
func (cc *ContainerdClient) Labels(ctx context.Context, nameorid string) (map[string]string, error) {
	namespace, id := cc.decodeDisplayID(nameorid)
	cntr, err := cc.client.ContainerService().Get(namespaces.WithNamespace(ctx, namespace), id)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, engineclient.NoSuchContainer(nameorid)
		}
		return nil, errors.Wrapf(err, "cannot get containerd container '%s'", nameorid)
	}
	if cntr.Labels == nil {
		return map[string]string{}, nil
	}
	return cntr.Labels, nil
}

// decodeDisplayID splits a displayable ID into its containerd namespace and
// container ID elements. Plain IDs belong to the default namespace.
func (cc *ContainerdClient) decodeDisplayID(displayid string) (namespace, id string) {
	parts := strings.SplitN(displayid, nsdelemiter, 2)
	if len(parts) < 2 || parts[0] == "" {
		return cc.namespace, strings.TrimPrefix(displayid, nsdelemiter)
	}
	return parts[0], parts[1]
}

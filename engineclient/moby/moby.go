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

package moby

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/errdefs"
	"github.com/pkg/errors"
	"github.com/thediveo/ecsfilter/engineclient"
)

// Type specifies this container engine's type identifier.
const Type = "docker.com"

// MobyAPIClient is the (minimal) Docker client API needed for looking up
// container labels. For production, Docker's client.Client is a compatible
// implementation, for unit testing our very own mockingmoby.MockingMoby.
type MobyAPIClient interface {
	ContainerInspect(ctx context.Context, container string) (types.ContainerJSON, error)
	Ping(ctx context.Context) (types.Ping, error)
	DaemonHost() string
	Close() error
}

// MobyClient is a Docker-engine EngineClient for looking up container labels.
type MobyClient struct {
	moby MobyAPIClient // (minimal) moby engine API client.
	typ  string        // engine type identifier.
}

// Make sure that the EngineClient interface is fully implemented
var _ (engineclient.EngineClient) = (*MobyClient)(nil)

// NewMobyClient returns a new MobyClient using the specified Docker engine
// client; typically, you would want to use this lower-level constructor only
// in unit tests and instead use enricher/moby.New instead in most use cases.
func NewMobyClient(moby MobyAPIClient, opts ...NewOption) *MobyClient {
	mc := &MobyClient{
		moby: moby,
		typ:  Type,
	}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

// NewOption represents options to NewMobyClient when creating new engine
// clients for moby engines.
type NewOption func(*MobyClient)

// WithDaemonType sets the engine type identifier to something other than the
// default "docker.com".
func WithDaemonType(typeid string) NewOption {
	return func(mc *MobyClient) {
		mc.typ = typeid
	}
}

// Type returns the type identifier for this container engine.
func (mc *MobyClient) Type() string { return mc.typ }

// API returns the container engine API path.
func (mc *MobyClient) API() string { return mc.moby.DaemonHost() }

// Close cleans up and release any engine client resources, if necessary.
func (mc *MobyClient) Close() {
	_ = mc.moby.Close()
}

// Ping checks that the Docker daemon is responding.
func (mc *MobyClient) Ping(ctx context.Context) error {
	if _, err := mc.moby.Ping(ctx); err != nil {
		return errors.Wrapf(err, "Docker daemon at '%s' not responding", mc.API())
	}
	return nil
}

// Labels returns the labels of the container with the specified name or ID.
// A container without any labels returns an empty label map.
func (mc *MobyClient) Labels(ctx context.Context, nameorid string) (map[string]string, error) {
	details, err := mc.moby.ContainerInspect(ctx, nameorid)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, engineclient.NoSuchContainer(nameorid)
		}
		return nil, errors.Wrapf(err, "cannot inspect Docker container '%s'", nameorid)
	}
	if details.Config == nil || details.Config.Labels == nil {
		return map[string]string{}, nil
	}
	return details.Config.Labels, nil
}

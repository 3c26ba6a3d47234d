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
	"github.com/docker/docker/client"
	"github.com/thediveo/ecsfilter/enricher"
	mobyengine "github.com/thediveo/ecsfilter/engineclient/moby"
)

// Type ID of the container engine handled by this enricher.
const Type = mobyengine.Type

// New returns an Enricher looking up the labels of containers from the Docker
// engine at the specified API endpoint.
//
// When the dockersock parameter is left empty then Docker's usual client
// defaults apply, such as trying to pick up the docker host from the
// environment or falling back to the local host's
// "unix:///var/run/docker.sock".
func New(dockersock string, opts ...enricher.Option) (*enricher.Enricher, error) {
	clientopts := []client.Opt{
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	}
	if dockersock != "" {
		clientopts = append(clientopts, client.WithHost(dockersock))
	}
	moby, err := client.NewClientWithOpts(clientopts...)
	if err != nil {
		return nil, err
	}
	engine := mobyengine.NewMobyClient(moby)
	enr, err := enricher.New(engine, opts...)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return enr, nil
}

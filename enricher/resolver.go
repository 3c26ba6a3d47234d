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

package enricher

import (
	"context"

	"github.com/pkg/errors"
	"github.com/thediveo/ecsfilter"
	"github.com/thediveo/ecsfilter/engineclient"
)

// Resolver resolves container IDs into ECS task metadata by looking up the
// container labels from a container engine.
type Resolver struct {
	engine       engineclient.EngineClient
	familyPrefix string
}

// NewResolver returns a new Resolver using the specified container engine
// client. The familyPrefix gets prepended to task families, if present.
func NewResolver(engine engineclient.EngineClient, familyPrefix string) *Resolver {
	return &Resolver{
		engine:       engine,
		familyPrefix: familyPrefix,
	}
}

// Resolve returns the task metadata for the container with the specified ID,
// querying the container engine exactly once. Unknown containers resolve to
// empty task metadata, whereas any other engine failure is returned.
func (r *Resolver) Resolve(ctx context.Context, id string) (ecsfilter.TaskMetadata, error) {
	labels, err := r.engine.Labels(ctx, id)
	if err != nil {
		if engineclient.IsNoSuchContainer(err) {
			return ecsfilter.TaskMetadata{}, nil
		}
		return ecsfilter.TaskMetadata{}, errors.Wrapf(err,
			"cannot resolve task metadata of container '%s'", id)
	}
	return ecsfilter.NewTaskMetadata(labels, r.familyPrefix), nil
}

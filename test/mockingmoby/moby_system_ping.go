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

package mockingmoby

import (
	"context"

	"github.com/docker/docker/api/types"
)

// MockedAPIVersion is the API version reported by pinging the mocked daemon.
const MockedAPIVersion = "1.44"

// Ping returns mocked daemon information, unless a ping hook fails it.
func (mm *MockingMoby) Ping(ctx context.Context) (types.Ping, error) {
	if err := isCtxCancelled(ctx); err != nil {
		return types.Ping{}, err
	}
	if err := callHook(ctx, PingPre); err != nil {
		return types.Ping{}, err
	}
	return types.Ping{
		APIVersion: MockedAPIVersion,
		OSType:     "linux",
	}, nil
}

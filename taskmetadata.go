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

package ecsfilter

import (
	"fmt"
	"strings"
)

// Container labels attached by the ECS agent to the containers of ECS tasks.
const (
	TaskFamilyLabel  = "com.amazonaws.ecs.task-definition-family"
	TaskVersionLabel = "com.amazonaws.ecs.task-definition-version"
	TaskARNLabel     = "com.amazonaws.ecs.task-arn"
)

// Record field names the task metadata gets merged into.
const (
	TaskFamilyField  = "task_family"
	TaskVersionField = "task_version"
	TaskIDField      = "task_id"
)

// TaskMetadata describes the ECS task a container belongs to. Empty fields are
// considered to be absent. TaskMetadata values are immutable and thus can be
// freely shared, such as between concurrent cache readers.
type TaskMetadata struct {
	Family  string // task definition family, optionally prefixed.
	Version string // task definition version.
	ID      string // task ID, that is, the last segment of the task ARN.
}

// NewTaskMetadata returns the task metadata found in the specified container
// labels. If the task family label is present, then the family gets the
// specified prefix prepended. Missing labels result in absent (empty) fields.
func NewTaskMetadata(labels map[string]string, familyPrefix string) TaskMetadata {
	md := TaskMetadata{
		Family:  labels[TaskFamilyLabel],
		Version: labels[TaskVersionLabel],
		ID:      TaskIDFromARN(labels[TaskARNLabel]),
	}
	if md.Family != "" {
		md.Family = familyPrefix + md.Family
	}
	return md
}

// TaskIDFromARN returns the task ID part of a task ARN, that is, the final
// "/"-separated segment, such as "fdb86b4f-b919-4a65-89eb-4b3761eb8952" for
// "arn:aws:ecs:us-east-1:123456789012:task/fdb86b4f-b919-4a65-89eb-4b3761eb8952".
func TaskIDFromARN(arn string) string {
	return arn[strings.LastIndex(arn, "/")+1:]
}

// IsZero returns true if all task metadata fields are absent.
func (md TaskMetadata) IsZero() bool {
	return md == TaskMetadata{}
}

// Fields returns the present task metadata fields, keyed by the record field
// names TaskFamilyField, TaskVersionField, and TaskIDField.
func (md TaskMetadata) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if md.Family != "" {
		fields[TaskFamilyField] = md.Family
	}
	if md.Version != "" {
		fields[TaskVersionField] = md.Version
	}
	if md.ID != "" {
		fields[TaskIDField] = md.ID
	}
	return fields
}

// String renders a textual representation of the task metadata.
func (md TaskMetadata) String() string {
	if md.IsZero() {
		return "no ECS task"
	}
	return fmt.Sprintf("ECS task %s of family '%s' version %s", md.ID, md.Family, md.Version)
}

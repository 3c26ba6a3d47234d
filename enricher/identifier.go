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
	"strings"

	"github.com/thediveo/ecsfilter"
)

// TagSeparator separates the container ID from the remaining stream tag, such
// as in "docker.5f1a2b3c4d5e".
const TagSeparator = "."

// Extractor derives the container IDs of log records. In tag mode (empty
// Field) the container ID is taken from the stream tag, otherwise it is the
// value of the record field at the path Field.
type Extractor struct {
	Field string // dotted field path to the container ID; empty for tag mode.
}

// ForBatch returns a function extracting the container ID of the individual
// records of a batch with the specified stream tag. A record without a
// container ID returns false.
func (x Extractor) ForBatch(tag string) func(ecsfilter.Record) (string, bool) {
	if x.Field == "" {
		id := IDFromTag(tag)
		return func(ecsfilter.Record) (string, bool) {
			return id, id != ""
		}
	}
	return func(r ecsfilter.Record) (string, bool) {
		return IDFromField(r, x.Field)
	}
}

// IDFromTag returns the part of the stream tag following its final
// TagSeparator, or the whole tag if it contains no separator.
func IDFromTag(tag string) string {
	return tag[strings.LastIndex(tag, TagSeparator)+1:]
}

// IDFromField returns the container ID found at the dotted field path inside a
// record. Only non-empty string values count as container IDs.
func IDFromField(r ecsfilter.Record, path string) (string, bool) {
	value, ok := ecsfilter.Lookup(r, path)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

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
	"strings"
	"time"
)

// Record is a single log record as passed along a log pipeline: a mapping of
// field names to values. Values are strings, nested mappings (either Record or
// map[string]any), or any other scalar or structured data. Records are
// considered to be owned by whoever processes them at the moment; they are not
// safe for concurrent modification.
type Record map[string]any

// Event is a timestamped log record. A batch of log records simply is a slice
// of Events.
type Event struct {
	Time   time.Time // time stamp of the log record.
	Record Record    // the log record's fields.
}

// FieldPathSeparator separates the individual field names in a path into
// nested records, such as "docker.id".
const FieldPathSeparator = "."

// Lookup returns the value found at the specified field path inside a record,
// descending into nested records as necessary. The path consists of field
// names separated by FieldPathSeparator. If the path cannot be resolved,
// because either a field is missing or an intermediate value isn't a nested
// record, then Lookup returns false.
func Lookup(r Record, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = map[string]any(r)
	for _, name := range strings.Split(path, FieldPathSeparator) {
		var fields map[string]any
		switch nested := current.(type) {
		case Record:
			fields = nested
		case map[string]any:
			fields = nested
		default:
			return nil, false
		}
		value, ok := fields[name]
		if !ok {
			return nil, false
		}
		current = value
	}
	return current, true
}

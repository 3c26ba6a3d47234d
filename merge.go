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
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// DefaultJSONLogField is the name of the record field Docker's logging drivers
// pass a container's stdout/stderr output in.
const DefaultJSONLogField = "log"

// DefaultNamespaceField is the name of the record field that, when present and
// non-empty, names the field a JSON log gets nested under.
const DefaultNamespaceField = "namespace"

// Merger merges task metadata into log records and optionally reinterprets a
// JSON object found in a record's log field, merging it too. The zero value
// merges only the task metadata; use NewMerger for the usual defaults.
type Merger struct {
	JSONLog        bool   // merge JSON objects found in the JSON log field.
	JSONLogField   string // name of the log field; defaults to DefaultJSONLogField.
	NamespaceField string // name of the namespace field; defaults to DefaultNamespaceField.
}

// NewMerger returns a Merger with JSON log merging enabled and the default
// field names.
func NewMerger() Merger {
	return Merger{
		JSONLog:        true,
		JSONLogField:   DefaultJSONLogField,
		NamespaceField: DefaultNamespaceField,
	}
}

// Merge returns a new record consisting of the fields of the specified record
// and the task metadata fields, where the task metadata fields take precedence.
// The passed record is never modified.
//
// With JSON log merging enabled, a log field text that (after trimming) is
// delimited by curly braces gets parsed as a JSON object. If the record has a
// non-empty namespace field, the JSON object gets nested under the field named
// by the namespace. Otherwise, the JSON object's fields get merged into the
// record, with the record's existing fields taking precedence. Malformed JSON
// leaves the record as it is.
func (m Merger) Merge(r Record, md TaskMetadata) Record {
	merged := maps.Clone(r)
	if merged == nil {
		merged = Record{}
	}
	for name, value := range md.Fields() {
		merged[name] = value
	}
	if m.JSONLog {
		m.mergeJSONLog(merged)
	}
	return merged
}

// mergeJSONLog merges the JSON object found in the log field into the record in
// place, if there is any such well-formed JSON object.
func (m Merger) mergeJSONLog(r Record) {
	logfield := m.JSONLogField
	if logfield == "" {
		logfield = DefaultJSONLogField
	}
	text, ok := r[logfield].(string)
	if !ok {
		return
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return
	}
	obj, err := parseJSONObject(text)
	if err != nil {
		return // not our business, so leave the log text as it is.
	}
	nsfield := m.NamespaceField
	if nsfield == "" {
		nsfield = DefaultNamespaceField
	}
	if namespace, ok := r[nsfield].(string); ok && namespace != "" {
		r[namespace] = obj
		return
	}
	for name, value := range obj {
		if _, exists := r[name]; exists {
			continue
		}
		r[name] = value
	}
}

// parseJSONObject parses the specified text as a single JSON object, returning
// its fields. Numbers are kept as json.Number so that integers survive
// re-encoding unchanged.
func parseJSONObject(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, errors.Wrap(err, "malformed JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}
	if obj == nil {
		return nil, errors.New("not a JSON object")
	}
	return obj, nil
}

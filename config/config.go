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

package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/thediveo/ecsfilter"
	"github.com/thediveo/ecsfilter/enricher"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the names of all configuration environment variables.
const EnvPrefix = "ECSFILTER_"

// Supported container engines.
const (
	EngineDocker     = "docker"
	EngineContainerd = "containerd"
	EngineCRI        = "cri"
)

// Config holds the ecsfilter runtime options.
type Config struct {
	CacheSize           int    `yaml:"cache_size"`
	CacheTTL            int    `yaml:"cache_ttl"` // seconds; <= 0 never expires.
	ContainerIDAttr     string `yaml:"container_id_attr"`
	TaskFamilyPrepend   string `yaml:"task_family_prepend"`
	MergeJSONLog        bool   `yaml:"merge_json_log"`
	JSONLogField        string `yaml:"json_log_field"`
	NamespaceField      string `yaml:"namespace_field"`
	SkipFailedLookups   bool   `yaml:"skip_failed_lookups"`
	Engine              string `yaml:"engine"` // docker, containerd, cri
	Endpoint            string `yaml:"endpoint"`
	ContainerdNamespace string `yaml:"containerd_namespace"`
	LogLevel            string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat           string `yaml:"log_format"` // text, json
	MetricsAddr         string `yaml:"metrics_addr"`
	BatchSize           int    `yaml:"batch_size"`
}

// Default returns a Config with the default settings.
func Default() Config {
	return Config{
		CacheSize:           enricher.DefaultCacheSize,
		CacheTTL:            int(enricher.DefaultCacheTTL / time.Second),
		MergeJSONLog:        true,
		JSONLogField:        ecsfilter.DefaultJSONLogField,
		NamespaceField:      ecsfilter.DefaultNamespaceField,
		Engine:              EngineDocker,
		ContainerdNamespace: "moby",
		LogLevel:            "info",
		LogFormat:           "text",
		BatchSize:           100,
	}
}

// Load returns the default configuration overlaid by the settings from the
// specified YAML file. An empty path returns the default configuration.
// Unknown settings in the file are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "cannot read configuration file")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrapf(err, "malformed configuration file '%s'", path)
	}
	return cfg, nil
}

// LoadDotEnv loads the specified .env files into the process environment,
// without overriding already existing environment variables. Without any
// filenames, ".env" in the current directory is loaded. Missing files are
// silently skipped.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, filename := range filenames {
		if _, err := os.Stat(filename); err != nil {
			continue
		}
		if err := godotenv.Load(filename); err != nil {
			return errors.Wrapf(err, "cannot load '%s'", filename)
		}
	}
	return nil
}

// FromEnv returns the specified configuration overlaid by the settings from
// environment variables, such as ECSFILTER_CACHE_SIZE for "cache_size".
func FromEnv(base Config) (Config, error) {
	cfg := base
	for name, set := range cfg.setters() {
		value, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(name))
		if !ok {
			continue
		}
		if err := set(value); err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s%s", EnvPrefix, strings.ToUpper(name))
		}
	}
	return cfg, nil
}

// Set sets the configuration setting with the specified YAML name from its
// textual representation.
func (c *Config) Set(name, value string) error {
	set, ok := c.setters()[name]
	if !ok {
		return errors.Errorf("unknown setting '%s'", name)
	}
	if err := set(value); err != nil {
		return errors.Wrapf(err, "invalid %s", name)
	}
	return nil
}

// Names returns the YAML names of all configuration settings.
func Names() []string {
	var c Config
	return maps.Keys(c.setters())
}

// setters returns functions setting the individual configuration settings from
// their textual representation, keyed by their YAML names.
func (c *Config) setters() map[string]func(string) error {
	return map[string]func(string) error{
		"cache_size":           intSetter(&c.CacheSize),
		"cache_ttl":            intSetter(&c.CacheTTL),
		"container_id_attr":    stringSetter(&c.ContainerIDAttr),
		"task_family_prepend":  stringSetter(&c.TaskFamilyPrepend),
		"merge_json_log":       boolSetter(&c.MergeJSONLog),
		"json_log_field":       stringSetter(&c.JSONLogField),
		"namespace_field":      stringSetter(&c.NamespaceField),
		"skip_failed_lookups":  boolSetter(&c.SkipFailedLookups),
		"engine":               stringSetter(&c.Engine),
		"endpoint":             stringSetter(&c.Endpoint),
		"containerd_namespace": stringSetter(&c.ContainerdNamespace),
		"log_level":            stringSetter(&c.LogLevel),
		"log_format":           stringSetter(&c.LogFormat),
		"metrics_addr":         stringSetter(&c.MetricsAddr),
		"batch_size":           intSetter(&c.BatchSize),
	}
}

func intSetter(v *int) func(string) error {
	return func(s string) error {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		*v = i
		return nil
	}
}

func boolSetter(v *bool) func(string) error {
	return func(s string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		*v = b
		return nil
	}
}

func stringSetter(v *string) func(string) error {
	return func(s string) error {
		*v = s
		return nil
	}
}

// Validate returns an error if the configuration is invalid.
func (c Config) Validate() error {
	if c.CacheSize < 1 {
		return errors.Errorf("invalid cache_size %d, must be at least 1", c.CacheSize)
	}
	switch c.Engine {
	case EngineDocker, EngineContainerd, EngineCRI:
	default:
		return errors.Errorf("unsupported engine '%s'", c.Engine)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("unsupported log_format '%s'", c.LogFormat)
	}
	if c.BatchSize < 1 {
		return errors.Errorf("invalid batch_size %d, must be at least 1", c.BatchSize)
	}
	return nil
}

// Level returns the slog level corresponding to the configured log level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Errorf("unsupported log_level '%s'", c.LogLevel)
	}
	return level, nil
}

// Options returns the enricher options corresponding to this configuration.
func (c Config) Options() []enricher.Option {
	return []enricher.Option{
		enricher.WithCacheSize(c.CacheSize),
		enricher.WithCacheTTL(time.Duration(c.CacheTTL) * time.Second),
		enricher.WithIDField(c.ContainerIDAttr),
		enricher.WithTaskFamilyPrefix(c.TaskFamilyPrepend),
		enricher.WithJSONLogMerge(c.MergeJSONLog),
		enricher.WithJSONLogField(c.JSONLogField),
		enricher.WithNamespaceField(c.NamespaceField),
		enricher.WithSkipFailedLookups(c.SkipFailedLookups),
	}
}

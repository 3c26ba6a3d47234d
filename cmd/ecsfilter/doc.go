/*
Command ecsfilter enriches container log records with ECS task metadata.

ecsfilter reads tagged log records in JSON lines format from stdin and writes
the enriched records in the same format to stdout:

	{"tag":"docker.5f1a2b3c4d5e","time":"2024-01-23T12:34:56Z","record":{"log":"hellorld"}}

Consecutive records with the same tag are filtered in batches. Diagnostic
messages go to stderr.

# Configuration

Settings are taken from (in increasing order of precedence) built-in
defaults, an optional YAML configuration file (-config or ECSFILTER_CONFIG),
ECSFILTER_* environment variables (optionally loaded from a .env file), and
command line flags. For instance, the cache_size setting can be set using
"cache_size: 42" in the configuration file, ECSFILTER_CACHE_SIZE=42, or
-cache-size=42.

When metrics_addr is set, Prometheus metrics are served at /metrics.
*/
package main

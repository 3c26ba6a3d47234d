/*
Package config provides the configuration of the ecsfilter command, layered
from defaults, an optional YAML configuration file, environment variables
prefixed with "ECSFILTER_" (optionally loaded from .env files), and finally
command line flags.
*/
package config

// Package config loads application configuration from environment variables
// with an optional YAML file overlay.
package config

// Package config defines the application configuration structures and
// loading logic. Configuration is sourced from an optional YAML file and
// from TASKS_-prefixed environment variables, with the environment taking
// precedence.
package config

// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Database credentials and paths can be overridden through environment
// variables so .env-style deployments keep working.
package config

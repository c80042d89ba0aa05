// Package config handles configuration loading and management for hitclient.
//
// It provides functionality for:
//   - Loading configuration from .hitclient.yaml or .hitclient.json files
//   - Default configuration values
//   - Environment overrides (HITCLIENT_*) with optional .env files
package config

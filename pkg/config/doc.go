// Package config loads and validates application configuration.
//
// Configuration is read from an optional YAML file first, then overridden
// by STORESRV_* environment variables, so deployments can ship a base file
// and tweak individual settings per environment.
package config

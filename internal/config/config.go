// Package config reads runtime configuration from the environment.
package config

import (
	"os"
)

// Config holds the settings the tracer needs to talk to the record store.
type Config struct {
	APIBaseURL string // record store base URL
	APIToken   string // bearer token, empty for unauthenticated stores
	BikeID     string // bike document to open on launch
	PhotoPath  string // local photo override; empty loads the stored photo path
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for a local stub store.
func Load() *Config {
	baseURL := os.Getenv("LINKAGE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &Config{
		APIBaseURL: baseURL,
		APIToken:   os.Getenv("LINKAGE_API_TOKEN"),
		BikeID:     os.Getenv("LINKAGE_BIKE_ID"),
		PhotoPath:  os.Getenv("LINKAGE_PHOTO"),
	}
}

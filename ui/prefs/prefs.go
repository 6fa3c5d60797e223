// Package prefs persists user preferences between runs.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const prefsFile = "preferences.json"

// Prefs are the settings remembered across sessions. Zero values mean
// "not set"; callers apply their own defaults.
type Prefs struct {
	WindowWidth  float64 `json:"window_width,omitempty"`
	WindowHeight float64 `json:"window_height,omitempty"`
	LastBikeID   string  `json:"last_bike_id,omitempty"`

	path string
}

// Load reads ~/.config/linkage-tracer/preferences.json, returning empty
// preferences when the file does not exist or cannot be parsed.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}

	p := &Prefs{path: filepath.Join(configDir, "linkage-tracer", prefsFile)}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, p)
	return p
}

// Save writes the preferences back to disk, creating the directory if
// needed.
func (p *Prefs) Save() error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the main configuration
type Config struct {
	Backend  string         `yaml:"backend"` // render manager backend name, e.g. Direct3D11
	Log      LogConfig      `yaml:"log"`
	Display  DisplayConfig  `yaml:"display"`
	Present  PresentConfig  `yaml:"present"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error, fatal
	File  string `yaml:"file"`  // optional log file path; empty means console only
}

// DisplayConfig describes the simulated HMD used by the software
// render manager; real backends take these values from the runtime
type DisplayConfig struct {
	EyeWidth  int     `yaml:"eye_width"`  // per-eye render target width in pixels
	EyeHeight int     `yaml:"eye_height"` // per-eye render target height in pixels
	IPD       float64 `yaml:"ipd"`        // interpupillary distance in meters
	FOV       float64 `yaml:"fov"`        // horizontal field of view in degrees
	Near      float64 `yaml:"near"`       // near clip plane distance in meters
	Far       float64 `yaml:"far"`        // far clip plane distance in meters
}

// PresentConfig contains presentation configuration
type PresentConfig struct {
	// FlipVertical forces the vertical flip normally implied by the
	// Direct3D path, where host render textures are stored bottom-up
	FlipVertical bool `yaml:"flip_vertical"`
}

// SnapshotConfig controls frame dumps from the software render manager
type SnapshotConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`   // directory for numbered PNG frames
	Every   int    `yaml:"every"` // write every Nth presented frame; 0 means 1
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: "Direct3D11",
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
		Display: DisplayConfig{
			EyeWidth:  960,
			EyeHeight: 1080,
			IPD:       0.063,
			FOV:       90.0,
			Near:      0.1,
			Far:       100.0,
		},
		Present: PresentConfig{
			FlipVertical: false,
		},
		Snapshot: SnapshotConfig{
			Enabled: false,
			Dir:     "frames",
			Every:   1,
		},
	}
}

// LoadConfig loads the configuration from a file
func LoadConfig(filePath string) (*Config, error) {
	// Create default config
	config := DefaultConfig()

	// Read file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %v", err)
	}

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return config, fmt.Errorf("error parsing config: %v", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	// Convert to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %v", err)
	}

	// Write file
	err = os.WriteFile(filePath, data, 0644)
	if err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}

	return nil
}

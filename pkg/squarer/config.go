package squarer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode selects how an image is squared.
type Mode string

const (
	// ModeTrim crops to the content bounding box and pads the result to a
	// square canvas. This is the default.
	ModeTrim Mode = "trim"

	// ModeSmart cuts the most interesting square window out of the image
	// instead of padding. Meant for fully opaque photos.
	ModeSmart Mode = "smart"
)

// Config carries every setting for a squaring run. It is passed explicitly
// into New; there is no process-wide configuration state.
type Config struct {
	SourceRoot  string `json:"source_root"`
	DestRoot    string `json:"destination_root"`
	Extension   string `json:"extension"`
	Workers     int    `json:"workers"`
	KeepGoing   bool   `json:"keep_going"`
	Mode        Mode   `json:"mode"`
	Size        int    `json:"size"`
	CascadePath string `json:"cascade_path"`
}

// DefaultConfig returns the conservative defaults: sequential processing,
// halt on first failure, trim mode, PNG files only.
func DefaultConfig() Config {
	return Config{
		SourceRoot: ".",
		Extension:  ".png",
		Workers:    1,
		Mode:       ModeTrim,
	}
}

// LoadFile loads a Config from a JSON file.
func LoadFile(filename string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given file as indented JSON,
// creating parent directories as needed.
func (c Config) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config data: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Normalize fills in derived defaults and rejects invalid settings. The
// destination root defaults to the source root, which makes the run an
// in-place overwrite.
func (c *Config) Normalize() error {
	if c.SourceRoot == "" {
		return fmt.Errorf("source root must not be empty")
	}
	if c.DestRoot == "" {
		c.DestRoot = c.SourceRoot
	}
	if c.Extension == "" {
		c.Extension = ".png"
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Size < 0 {
		return fmt.Errorf("size must not be negative, got %d", c.Size)
	}
	switch c.Mode {
	case "":
		c.Mode = ModeTrim
	case ModeTrim, ModeSmart:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

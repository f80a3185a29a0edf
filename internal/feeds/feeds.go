// Package feeds loads the configured RSS feed list.
package feeds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one configured feed. Feeds can be marked inactive between runs
// without being removed from the file.
type Source struct {
	URL    string `yaml:"url"`
	Active *bool  `yaml:"active,omitempty"`
}

// IsActive reports whether the feed should be polled; unset means active.
func (s Source) IsActive() bool {
	return s.Active == nil || *s.Active
}

// Config is the YAML structure:
//
//	feeds:
//	  - url: https://...
//	  - url: https://...
//	    active: false
type Config struct {
	Feeds []Source `yaml:"feeds"`
}

// Load reads the feed list from a YAML file.
func Load(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config: %w", err)
	}
	return cfg.Feeds, nil
}

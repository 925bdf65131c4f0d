package seeds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is one feed URL to register at startup.
type Seed struct {
	URL string `yaml:"url"`
}

type seedsFile struct {
	Feeds []Seed `yaml:"feeds"`
}

// Load reads a YAML seeds file. A missing or unset path yields an empty list,
// matching a deployment with no pre-registered feeds.
func Load(path string) ([]Seed, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read seeds file: %w", err)
	}

	var file seedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seeds file: %w", err)
	}

	for i, seed := range file.Feeds {
		if seed.URL == "" {
			return nil, fmt.Errorf("seed at index %d is missing a url", i)
		}
	}

	return file.Feeds, nil
}

package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a config file directly, without the kratos config
// machinery. Used by the cron binary.
func Load(path string) (*Bootstrap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var c Bootstrap
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &c, nil
}

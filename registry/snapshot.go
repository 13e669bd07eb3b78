package registry

import (
	"fmt"
	"os"

	"github.com/hoermto/unifi-energy/api"
	"gopkg.in/yaml.v3"
)

// Snapshot is a serialized registry
type Snapshot struct {
	Devices  []api.Device      `yaml:"devices"`
	Entities []api.Entry       `yaml:"entities"`
	States   map[string]string `yaml:"states"`
}

// LoadFile reads a registry snapshot from a YAML file
func LoadFile(path string) (Snapshot, error) {
	var snap Snapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read registry file: %w", err)
	}

	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to unmarshal registry: %w", err)
	}

	return snap, nil
}

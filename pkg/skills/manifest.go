package skills

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestEntry configures one skill by name.
type ManifestEntry struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// Manifest lists which skills are enabled. Skills absent from the manifest
// are enabled; the manifest exists to turn things off.
type Manifest struct {
	Skills []ManifestEntry `yaml:"skills"`
}

// LoadManifest reads a YAML manifest. A missing file yields an empty
// manifest, which enables everything.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("read skill manifest: %w", err)
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse skill manifest: %w", err)
	}
	return m, nil
}

// Allows reports whether the named skill is enabled under this manifest.
func (m Manifest) Allows(name string) bool {
	for _, e := range m.Skills {
		if e.Name == name {
			return e.Enabled
		}
	}
	return true
}

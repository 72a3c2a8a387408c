package importmap

import (
	"encoding/json"
	"sort"
	"strings"
)

// ManifestPath is where the workspace declares its external packages.
const ManifestPath = "/package.json"

// Manifest holds the dependency sections of a package.json.
type Manifest struct {
	Name            string
	Dependencies    map[string]string
	DevDependencies map[string]string
}

// ParseManifest decodes raw leniently. Malformed documents yield an empty
// manifest and non-string versions are ignored.
func ParseManifest(raw []byte) Manifest {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Manifest{}
	}
	m := Manifest{
		Dependencies:    section(doc["dependencies"]),
		DevDependencies: section(doc["devDependencies"]),
	}
	if name, ok := doc["name"]; ok {
		_ = json.Unmarshal(name, &m.Name)
	}
	return m
}

func section(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil
	}
	out := make(map[string]string, len(loose))
	for name, v := range loose {
		s, ok := v.(string)
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		out[name] = strings.TrimSpace(s)
	}
	return out
}

// Merged returns dependencies overlaid with devDependencies.
func (m Manifest) Merged() map[string]string {
	out := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	for k, v := range m.Dependencies {
		out[k] = v
	}
	for k, v := range m.DevDependencies {
		out[k] = v
	}
	return out
}

// Packages lists the merged package names in sorted order.
func (m Manifest) Packages() []string {
	merged := m.Merged()
	names := make([]string, 0, len(merged))
	for k := range merged {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

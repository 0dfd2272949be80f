// Package settings persists user-level preferences as JSON in the
// project state folder. Keys use dotted paths, so nested values can be
// updated without a schema.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// FileName is the settings file inside the project state folder.
const FileName = "settings.json"

// Set writes one dotted-path key into the settings file, creating the
// file when missing.
func Set(path, key string, value interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read settings %s: %w", path, err)
		}
		content = []byte("{}")
	}

	updated, err := sjson.SetBytes(content, key, value)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, pretty.Pretty(updated), 0o644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}

// Load reads the settings file into a generic map. A missing file loads
// as empty settings.
func Load(path string) (map[string]interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(content, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return settings, nil
}

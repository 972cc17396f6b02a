// SPDX-License-Identifier: BSD-3-Clause

package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lfcd/lfcd/pkg/file"
)

// Load reads and parses a profile file. A missing file is reported as
// ErrNotFound so callers (RPC handlers) can map it to -32004.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, path, err)
	}
	return &p, nil
}

// Save persists p to <profilesDir>/<name>.json using an atomic
// create-or-replace so readers never observe a partially written file.
func Save(profilesDir string, p *Profile) (string, error) {
	if p.Name == "" {
		return "", fmt.Errorf("%w: profile name is empty", ErrInvalidProfile)
	}
	if p.SchemaVersion == 0 {
		p.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	path := filepath.Join(profilesDir, p.Name+".json")
	if err := os.MkdirAll(profilesDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if err := file.AtomicReplaceFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return path, nil
}

// List returns the base names (without .json) of every profile file in dir.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".json" {
			names = append(names, e.Name()[:len(e.Name())-len(ext)])
		}
	}
	return names, nil
}

// Delete removes a profile file by name.
func Delete(profilesDir, name string) error {
	path := filepath.Join(profilesDir, name+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	}
	return nil
}

// Rename moves a profile file to a new name, updating its Name field.
func Rename(profilesDir, oldName, newName string) (string, error) {
	p, err := Load(filepath.Join(profilesDir, oldName+".json"))
	if err != nil {
		return "", err
	}
	p.Name = newName
	path, err := Save(profilesDir, p)
	if err != nil {
		return "", err
	}
	_ = os.Remove(filepath.Join(profilesDir, oldName+".json"))
	return path, nil
}

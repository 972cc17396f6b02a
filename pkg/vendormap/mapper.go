// SPDX-License-Identifier: BSD-3-Clause

package vendormap

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Mapper holds the currently active, compiled rule set and classifies chip
// names against it. Safe for concurrent use; Reload swaps the rule set
// atomically and leaves the previous mapping in effect on failure.
type Mapper struct {
	mu    sync.RWMutex
	rules []compiledRule
	path  string
}

// Load reads and compiles the rule file at path into a new Mapper.
func Load(path string) (*Mapper, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	compiled, err := compileAll(rules)
	if err != nil {
		return nil, err
	}
	return &Mapper{rules: compiled, path: path}, nil
}

func loadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return rules, nil
}

// Reload re-reads and recompiles the rule file. On any failure the
// previously active mapping is left untouched and the error is returned for
// the caller to log.
func (m *Mapper) Reload() error {
	rules, err := loadRules(m.path)
	if err != nil {
		return err
	}
	compiled, err := compileAll(rules)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.rules = compiled
	m.mu.Unlock()
	return nil
}

// Classify returns the vendor/class for a chip name, or ok=false if no rule
// matches.
func (m *Mapper) Classify(chipName string) (Match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return classify(m.rules, chipName)
}

// Path returns the rule file path this Mapper was loaded from.
func (m *Mapper) Path() string {
	return m.path
}

// RuleCount returns the number of currently active rules, for telemetry.
func (m *Mapper) RuleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

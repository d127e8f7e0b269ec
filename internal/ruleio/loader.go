// Package ruleio loads declarative rule definitions from their sources:
// YAML/JSON files in a rules directory, or rows in the rules table. It
// performs no validation beyond decoding; internal/catalog owns validation.
package ruleio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clinsight/cdsengine/internal/types"
)

// FileError reports a rule file that could not be decoded. Decoding
// failures exclude the file but never abort the load of the rest.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ruleDocument accepts the supported file layouts: a single rule object, a
// top-level list of rules, or a document with a "rules" key.
type ruleDocument struct {
	Rules []types.Rule `json:"rules" yaml:"rules"`
}

// LoadDir reads every *.yaml, *.yml and *.json file in dir and returns the
// decoded rule sequence plus per-file decode failures. A missing or
// unreadable directory is the only fatal error.
func LoadDir(dir string) ([]types.Rule, []FileError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rules directory: %w", err)
	}

	var rules []types.Rule
	var fileErrs []FileError

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			fileErrs = append(fileErrs, FileError{Path: path, Err: err})
			continue
		}

		decoded, err := decode(content, ext)
		if err != nil {
			fileErrs = append(fileErrs, FileError{Path: path, Err: err})
			continue
		}
		rules = append(rules, decoded...)
	}

	return rules, fileErrs, nil
}

// decode tries the three supported layouts in order: wrapped document,
// list, single rule.
func decode(content []byte, ext string) ([]types.Rule, error) {
	unmarshal := func(data []byte, v any) error {
		if ext == ".json" {
			return json.Unmarshal(data, v)
		}
		return yaml.Unmarshal(data, v)
	}

	var doc ruleDocument
	if err := unmarshal(content, &doc); err == nil && len(doc.Rules) > 0 {
		return doc.Rules, nil
	}

	var list []types.Rule
	if err := unmarshal(content, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var single types.Rule
	if err := unmarshal(content, &single); err != nil {
		return nil, err
	}
	if single.ID == "" && len(single.Conditions) == 0 {
		return nil, fmt.Errorf("no rules found in document")
	}
	return []types.Rule{single}, nil
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/relgraph/internal/config"
	"github.com/roach88/relgraph/internal/qerr"
	"github.com/roach88/relgraph/internal/store"
)

// Scenario defines a conformance test scenario: a dataset, and queries
// with their expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. It prefixes request ids and
	// names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Store selects the backend: memory (default), sqlite, badger or parquet.
	Store string `yaml:"store,omitempty"`

	// Dataset is a dataset YAML file, relative to the scenario file.
	Dataset string `yaml:"dataset,omitempty"`

	// Data is an inline dataset, used instead of Dataset.
	Data *store.Dataset `yaml:"data,omitempty"`

	// Queries run in order against the loaded data.
	Queries []QueryStep `yaml:"queries"`

	// Dir is the directory of the scenario file; set by LoadScenario.
	Dir string `yaml:"-"`
}

// QueryStep is one query and what it must produce.
type QueryStep struct {
	Name   string `yaml:"name"`
	Query  string `yaml:"query"`
	Expect Expect `yaml:"expect"`
}

// Expect describes a query outcome. Error excludes Docs and Count.
type Expect struct {
	// Docs must equal the result docs exactly, in order unless Unordered.
	Docs []map[string]any `yaml:"docs,omitempty"`

	Unordered bool `yaml:"unordered,omitempty"`

	// Count is the expected number of docs.
	Count *int `yaml:"count,omitempty"`

	// Error is the expected error code, e.g. PARSE_ERROR.
	Error string `yaml:"error,omitempty"`
}

var knownCodes = map[string]bool{
	string(qerr.CodeParse):       true,
	string(qerr.CodeUnsupported): true,
	string(qerr.CodeStore):       true,
	string(qerr.CodeExecution):   true,
	string(qerr.CodeUnknown):     true,
}

var knownStores = map[string]bool{
	"":                  true,
	config.StoreMemory:  true,
	config.StoreSQLite:  true,
	config.StoreBadger:  true,
	config.StoreParquet: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "querys:" vs "queries:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.Dir = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// datasetPath resolves Dataset against the scenario directory.
func (s *Scenario) datasetPath() string {
	if s.Dataset == "" || filepath.IsAbs(s.Dataset) {
		return s.Dataset
	}
	return filepath.Join(s.Dir, s.Dataset)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !knownStores[s.Store] {
		return fmt.Errorf("unknown store %q", s.Store)
	}
	if s.Dataset != "" && s.Data != nil {
		return fmt.Errorf("dataset and data are mutually exclusive")
	}
	if s.Data != nil {
		if err := s.Data.Validate(); err != nil {
			return fmt.Errorf("data: %w", err)
		}
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	names := make(map[string]bool)
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if names[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		names[q.Name] = true
		if q.Query == "" {
			return fmt.Errorf("query %q: query is required", q.Name)
		}
		if q.Expect.Error != "" {
			if !knownCodes[q.Expect.Error] {
				return fmt.Errorf("query %q: unknown error code %q", q.Name, q.Expect.Error)
			}
			if q.Expect.Docs != nil || q.Expect.Count != nil {
				return fmt.Errorf("query %q: error excludes docs and count", q.Name)
			}
		}
		if q.Expect.Count != nil && *q.Expect.Count < 0 {
			return fmt.Errorf("query %q: count must be non-negative", q.Name)
		}
	}
	return nil
}

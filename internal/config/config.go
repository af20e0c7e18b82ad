// Package config loads relgraph configuration from CUE files.
//
// A config file is unified with the #Config schema below, so omitted
// fields take their defaults and unknown fields are rejected:
//
//	listen: "0.0.0.0:7687"
//	store: {kind: "parquet", dsn: "./tables"}
//	labels: {
//		Person: kind: "node"
//		KNOWS: {kind: "relationship", table: "knows"}
//	}
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// Store kinds.
const (
	StoreSQLite  = "sqlite"
	StoreParquet = "parquet"
	StoreBadger  = "badger"
	StoreMemory  = "memory"
)

// Error codes for config loading failures.
const (
	ErrCodeNotFound    = "C001" // Config file not found
	ErrCodeLoadFailed  = "C002" // CUE load failed
	ErrCodeBuildFailed = "C003" // CUE build failed
	ErrCodeInvalid     = "C004" // Config does not match the schema
)

const schema = `
#Config: {
	listen: *"127.0.0.1:7687" | string
	store: {
		kind: *"sqlite" | "parquet" | "badger" | "memory"
		dsn:  *"relgraph.db" | string
	}
	// Loaded into the store at startup.
	dataset?: string
	labels: [Name=string]: {
		kind:  "node" | "relationship"
		table: *Name | string
	}
}
`

// Config is the decoded configuration.
type Config struct {
	Listen  string           `json:"listen"`
	Store   StoreConfig      `json:"store"`
	Dataset string           `json:"dataset,omitempty"`
	Labels  map[string]Label `json:"labels"`
}

// StoreConfig selects the table store backend. DSN is a file path for
// sqlite, a directory for parquet and badger, and unused for memory.
type StoreConfig struct {
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`
}

// Label declares the table backing a label.
type Label struct {
	Kind  string `json:"kind"`
	Table string `json:"table"`
}

// LoadError represents an error that occurred during config loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	ctx := cuecontext.New()
	return decode(ctx, ctx.CompileString("{}"))
}

// Load reads the CUE file at path and applies schema defaults.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config path is a directory: %s", path)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: filepath.Dir(path)}
	instances := load.Instances([]string{"./" + filepath.Base(path)}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, cueLoadError(ErrCodeLoadFailed, "loading config", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "building config", err)
	}
	return decode(ctx, value)
}

func decode(ctx *cue.Context, value cue.Value) (*Config, error) {
	def := ctx.CompileString(schema, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "building schema", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeInvalid, "invalid config", err)
	}

	var out Config
	if err := unified.Decode(&out); err != nil {
		return nil, cueLoadError(ErrCodeInvalid, "decoding config", err)
	}
	if out.Labels == nil {
		out.Labels = map[string]Label{}
	}
	return &out, nil
}

// cueLoadError converts a CUE error, keeping the first position it carries.
func cueLoadError(code, what string, err error) *LoadError {
	le := &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", what, err)}
	for _, pos := range cueerrors.Positions(err) {
		if pos.IsValid() {
			le.Pos = pos
			break
		}
	}
	return le
}

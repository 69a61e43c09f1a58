package config

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// schema compiles schema.cue once. A cue.Context is not safe for concurrent
// use, so every use goes through schemaMu.
var (
	schemaOnce sync.Once
	schemaMu   sync.Mutex
	cueCtx     *cue.Context
	configDef  cue.Value
)

func loadSchema() {
	cueCtx = cuecontext.New()
	v := cueCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		panic(fmt.Sprintf("config: embedded schema does not compile: %v", err))
	}
	configDef = v.LookupPath(cue.ParsePath("#Config"))
}

// parseCUE evaluates a CUE configuration file. Defaults for keys the file
// omits come from the schema.
func parseCUE(filename string, data []byte) (Config, error) {
	schemaOnce.Do(loadSchema)
	schemaMu.Lock()
	defer schemaMu.Unlock()

	v := cueCtx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("parse cue config: %w", err)
	}

	unified := configDef.Unify(v)
	if err := unified.Validate(); err != nil {
		return Config{}, validationError(err)
	}

	cfg := Default()
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, validationError(err)
	}
	return cfg, nil
}

// validateSchema encodes cfg into CUE and checks it against #Config.
func validateSchema(cfg *Config) error {
	schemaOnce.Do(loadSchema)
	schemaMu.Lock()
	defer schemaMu.Unlock()

	v := cueCtx.Encode(cfg)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := configDef.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var problems []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := e.Path(); len(path) > 0 {
			msg = strings.Join(path, ".") + ": " + msg
		}
		problems = append(problems, msg)
	}
	if len(problems) == 0 {
		problems = []string{err.Error()}
	}
	return &ValidationError{Problems: problems}
}

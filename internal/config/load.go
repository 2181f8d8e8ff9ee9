package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// Error codes reported by LoadError.
const (
	ErrCodeNotFound     = "E005" // Parameter file not found
	ErrCodeBuildFailed  = "E006" // CUE source does not compile
	ErrCodeSchema       = "E201" // Value violates the parameter schema
	ErrCodeInvalidValue = "E202" // Value out of range after decoding
)

// LoadError describes a parameter file that could not be loaded.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Schema returns the embedded CUE schema source.
func Schema() string {
	return schemaSource
}

// Load reads a CUE parameter file. Omitted fields take their defaults.
func Load(path string) (Params, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Params{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("parameter file not found: %s", path)}
		}
		return Params{}, fmt.Errorf("read parameter file: %w", err)
	}
	return Parse(src, path)
}

// Parse unifies CUE source with the parameter schema and decodes it.
// name is used for error positions.
func Parse(src []byte, name string) (Params, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The embedded schema is part of the binary.
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	def := schema.LookupPath(cue.ParsePath("#Params"))

	v := ctx.CompileBytes(src, cue.Filename(name))
	if err := v.Err(); err != nil {
		return Params{}, fromCUE(ErrCodeBuildFailed, err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Params{}, fromCUE(ErrCodeSchema, err)
	}

	var p Params
	if err := unified.Decode(&p); err != nil {
		return Params{}, fromCUE(ErrCodeSchema, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// fromCUE keeps the first CUE error and its position.
func fromCUE(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}

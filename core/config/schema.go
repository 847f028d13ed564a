package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aledsdavies/jugglec/core/diag"
)

// Custom string formats used by the configuration schema.
const (
	FormatPositiveNumber = "positive-number"
	FormatBoolean        = "boolean-word"
)

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON schema (Draft 2020-12) that configuration values
// must satisfy. Every value is a string; typed keys are constrained by
// format.
func Schema() map[string]any {
	str := func(extra map[string]any) map[string]any {
		s := map[string]any{"type": "string"}
		for k, v := range extra {
			s[k] = v
		}
		return s
	}
	return map[string]any{
		"type":     "object",
		"required": []string{KeyPattern},
		"properties": map[string]any{
			KeyPattern:  str(map[string]any{"minLength": 1}),
			KeyHSS:      str(map[string]any{"minLength": 1}),
			KeyHandspec: str(map[string]any{"minLength": 1}),
			KeyHold:     str(map[string]any{"format": FormatBoolean}),
			KeyDwellMax: str(map[string]any{"format": FormatBoolean}),
			KeyDwell:    str(map[string]any{"format": FormatPositiveNumber}),
			KeyBPS:      str(map[string]any{"format": FormatPositiveNumber}),
			KeyHands:    str(nil),
			KeyBody:     str(nil),
		},
		"additionalProperties": map[string]any{"type": "string"},
	}
}

// formatValidators extends the compiler's standard formats.
func formatValidators() map[string]func(interface{}) bool {
	return map[string]func(interface{}) bool{
		FormatPositiveNumber: func(v interface{}) bool {
			s, ok := v.(string)
			if !ok {
				return true
			}
			f, err := strconv.ParseFloat(s, 64)
			return err == nil && f > 0
		},
		FormatBoolean: func(v interface{}) bool {
			s, ok := v.(string)
			if !ok {
				return true
			}
			switch strings.ToLower(s) {
			case "true", "false", "yes", "no", "1", "0":
				return true
			}
			return false
		},
	}
}

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if compiler.Formats == nil {
			compiler.Formats = make(map[string]func(interface{}) bool)
		}
		for name, fn := range formatValidators() {
			compiler.Formats[name] = fn
		}
		compiler.LoadURL = func(url string) (io.ReadCloser, error) {
			return nil, fmt.Errorf("external $ref not allowed: %s", url)
		}

		data, err := json.Marshal(Schema())
		if err != nil {
			schemaErr = err
			return
		}
		url := "schema://config.json"
		if err := compiler.AddResource(url, strings.NewReader(string(data))); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(url)
	})
	return compiledSchema, schemaErr
}

// validateSchema checks raw values against Schema and converts the first
// failure into a UserError naming the key.
func validateSchema(values map[string]string) error {
	schema, err := compileSchema()
	if err != nil {
		return diag.Internalf(diag.StageConfig, "schema compilation failed: %v", err)
	}

	instance := make(map[string]interface{}, len(values))
	for k, v := range values {
		instance[k] = v
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return diag.Internalf(diag.StageConfig, "schema validation failed: %v", err)
	}
	return convertValidationError(ve, values)
}

func convertValidationError(ve *jsonschema.ValidationError, values map[string]string) error {
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	key := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if key == "" {
		if strings.Contains(leaf.Message, "missing properties") {
			return diag.Userf(diag.StageConfig, "missing required key %q", KeyPattern)
		}
		return diag.Userf(diag.StageConfig, "%s", leaf.Message)
	}

	e := diag.Userf(diag.StageConfig, "invalid value %q for key %q", values[key], key)
	switch key {
	case KeyHold, KeyDwellMax:
		e.WithSuggestion("use true or false")
	case KeyDwell, KeyBPS:
		e.WithSuggestion("use a number greater than 0")
	case KeyPattern, KeyHSS, KeyHandspec:
		e.WithSuggestion("%s must not be empty", key)
	}
	return e
}

// Package validation validates intercepted request bodies against JSON
// Schema rules attached to handlers.
package validation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// RequestValidation configures body validation for a handler. Validation
// runs after the handler matches and before its responder is invoked; a
// failing body short-circuits to a FailureStatus response instead of the
// responder's.
type RequestValidation struct {
	// BodySchema is an inline JSON Schema the request body must satisfy.
	BodySchema json.RawMessage `json:"bodySchema,omitempty" yaml:"bodySchema,omitempty"`

	// FailureStatus is the status code returned on validation failure.
	// 0 means 400.
	FailureStatus int `json:"failureStatus,omitempty" yaml:"failureStatus,omitempty"`

	once      sync.Once
	schema    *jsonschema.Schema
	schemaErr error
}

// Empty reports whether no rules are configured.
func (v *RequestValidation) Empty() bool {
	return v == nil || len(v.BodySchema) == 0
}

// UnmarshalYAML accepts bodySchema as either a YAML mapping or a JSON
// string, re-encoding mappings to JSON for the schema compiler.
func (v *RequestValidation) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BodySchema    any `yaml:"bodySchema"`
		FailureStatus int `yaml:"failureStatus"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	v.FailureStatus = raw.FailureStatus
	switch s := raw.BodySchema.(type) {
	case nil:
	case string:
		v.BodySchema = json.RawMessage(s)
	default:
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("validation: encode body schema: %w", err)
		}
		v.BodySchema = data
	}
	return nil
}

// Status returns the effective failure status code.
func (v *RequestValidation) Status() int {
	if v.FailureStatus == 0 {
		return http.StatusBadRequest
	}
	return v.FailureStatus
}

// Result describes the outcome of validating one request.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks the request body against the configured schema. The
// schema is compiled once and reused across dispatches.
func (v *RequestValidation) Validate(body []byte) (*Result, error) {
	if v.Empty() {
		return &Result{Valid: true}, nil
	}

	v.once.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("handler://body-schema", strings.NewReader(string(v.BodySchema))); err != nil {
			v.schemaErr = err
			return
		}
		v.schema, v.schemaErr = c.Compile("handler://body-schema")
	})
	if v.schemaErr != nil {
		return nil, fmt.Errorf("validation: compile body schema: %w", v.schemaErr)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return &Result{
			Valid:  false,
			Errors: []string{fmt.Sprintf("body is not valid JSON: %v", err)},
		}, nil
	}

	if err := v.schema.Validate(data); err != nil {
		res := &Result{Valid: false}
		var ve *jsonschema.ValidationError
		if ok := asValidationError(err, &ve); ok {
			for _, cause := range flatten(ve) {
				res.Errors = append(res.Errors, cause)
			}
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
		return res, nil
	}

	return &Result{Valid: true}, nil
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if ok {
		*target = ve
	}
	return ok
}

// flatten walks the validation error tree collecting leaf messages, which
// carry the specific failed constraints.
func flatten(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}

// Package config loads handler sets from declarative YAML or JSON files,
// typically into the base layer of a harness.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/interceptd/interceptd/pkg/handler"
	"github.com/interceptd/interceptd/pkg/validation"
)

// File is the top-level shape of a handler file.
type File struct {
	Handlers []HandlerDef `json:"handlers" yaml:"handlers"`
}

// HandlerDef declares one handler.
type HandlerDef struct {
	Method     string                        `json:"method" yaml:"method"`
	Path       string                        `json:"path" yaml:"path"`
	Match      *handler.Criteria             `json:"match,omitempty" yaml:"match,omitempty"`
	Response   *ResponseDef                  `json:"response" yaml:"response"`
	Validation *validation.RequestValidation `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// ResponseDef declares a static response. Headers are a list, not a map, so
// file order carries through to the synthesized response.
type ResponseDef struct {
	Status  int         `json:"status,omitempty" yaml:"status,omitempty"`
	Headers []HeaderDef `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    any         `json:"body,omitempty" yaml:"body,omitempty"`
	DelayMs int         `json:"delayMs,omitempty" yaml:"delayMs,omitempty"`
}

// HeaderDef is one response header field.
type HeaderDef struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Load reads a handler file and builds its handlers. The format is chosen
// by extension: .json is JSON, everything else is parsed as YAML (which
// also accepts JSON).
func Load(path string) ([]*handler.Handler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var f File
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	handlers, err := Build(&f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return handlers, nil
}

// LoadGlob loads every file matching the glob pattern, in sorted path order
// so later files shadow earlier ones deterministically. Supports ** for
// recursive directory matching.
func LoadGlob(pattern string) ([]*handler.Handler, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("config: glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("config: glob %q matched no files", pattern)
	}
	sort.Strings(matches)

	var all []*handler.Handler
	for _, path := range matches {
		hs, err := Load(path)
		if err != nil {
			return nil, err
		}
		all = append(all, hs...)
	}
	return all, nil
}

// Build converts a parsed file into handlers.
func Build(f *File) ([]*handler.Handler, error) {
	if len(f.Handlers) == 0 {
		return nil, fmt.Errorf("no handlers declared")
	}

	handlers := make([]*handler.Handler, 0, len(f.Handlers))
	for i, def := range f.Handlers {
		h, err := buildHandler(&def)
		if err != nil {
			return nil, fmt.Errorf("handler %d (%s %s): %w", i, def.Method, def.Path, err)
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

func buildHandler(def *HandlerDef) (*handler.Handler, error) {
	if def.Response == nil {
		return nil, fmt.Errorf("response is required")
	}

	resp, err := buildResponse(def.Response)
	if err != nil {
		return nil, err
	}

	h, err := handler.New(def.Method, def.Path, handler.Static(resp))
	if err != nil {
		return nil, err
	}
	if !def.Match.Empty() {
		h = h.WithCriteria(def.Match)
	}
	if !def.Validation.Empty() {
		h = h.WithValidation(def.Validation)
	}
	return h, nil
}

func buildResponse(def *ResponseDef) (*handler.Response, error) {
	resp := handler.NewResponse(def.Status)
	for _, hd := range def.Headers {
		if hd.Name == "" {
			return nil, fmt.Errorf("header with empty name")
		}
		resp.Header.Add(hd.Name, hd.Value)
	}

	body, isJSON, err := encodeBody(def.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = body
	if isJSON && resp.Header.Get("Content-Type") == "" {
		resp.Header.Set("Content-Type", "application/json")
	}

	if def.DelayMs < 0 {
		return nil, fmt.Errorf("delayMs cannot be negative")
	}
	resp.Delay = time.Duration(def.DelayMs) * time.Millisecond
	return resp, nil
}

// encodeBody accepts either a plain string body or a structured value,
// which is re-encoded as JSON. This lets files write body: {id: 1} instead
// of a quoted JSON string.
func encodeBody(v any) (body []byte, isJSON bool, err error) {
	switch b := v.(type) {
	case nil:
		return nil, false, nil
	case string:
		return []byte(b), false, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, false, fmt.Errorf("encode body: %w", err)
		}
		return data, true, nil
	}
}

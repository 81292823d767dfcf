package handler

import "strings"

type headerField struct {
	Name  string
	Value string
}

// Header is an ordered collection of response header fields. Unlike
// http.Header it preserves insertion order, while lookups remain
// case-insensitive.
type Header struct {
	fields []headerField
}

// Set replaces the first field with the given name, keeping its position,
// and drops any later duplicates. If the name is absent the field is
// appended.
func (h *Header) Set(name, value string) {
	replaced := false
	out := h.fields[:0]
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			if replaced {
				continue
			}
			f.Value = value
			replaced = true
		}
		out = append(out, f)
	}
	h.fields = out
	if !replaced {
		h.fields = append(h.fields, headerField{Name: name, Value: value})
	}
}

// Add appends a field, allowing repeated names.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, headerField{Name: name, Value: value})
}

// Get returns the value of the first field with the given name, or "".
func (h *Header) Get(name string) string {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Values returns all values recorded for the given name, in insertion order.
func (h *Header) Values(name string) []string {
	var vals []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			vals = append(vals, f.Value)
		}
	}
	return vals
}

// Len returns the number of fields.
func (h *Header) Len() int { return len(h.fields) }

// Each calls fn for every field in insertion order.
func (h *Header) Each(fn func(name, value string)) {
	for _, f := range h.fields {
		fn(f.Name, f.Value)
	}
}

// Clone returns an independent copy.
func (h *Header) Clone() *Header {
	if h == nil {
		return nil
	}
	c := &Header{fields: make([]headerField, len(h.fields))}
	copy(c.fields, h.fields)
	return c
}

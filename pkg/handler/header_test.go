package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderOrderPreserved(t *testing.T) {
	var h Header
	h.Add("X-First", "1")
	h.Add("Content-Type", "application/json")
	h.Add("X-Last", "3")

	var names []string
	h.Each(func(name, _ string) {
		names = append(names, name)
	})
	assert.Equal(t, []string{"X-First", "Content-Type", "X-Last"}, names)
}

func TestHeaderCaseInsensitiveLookup(t *testing.T) {
	var h Header
	h.Set("Content-Type", "text/plain")

	assert.Equal(t, "text/plain", h.Get("content-type"))
	assert.Equal(t, "text/plain", h.Get("CONTENT-TYPE"))
	assert.Equal(t, "", h.Get("Accept"))
}

func TestHeaderSetKeepsPosition(t *testing.T) {
	var h Header
	h.Add("A", "1")
	h.Add("B", "2")
	h.Add("C", "3")

	h.Set("b", "20")

	var got []string
	h.Each(func(name, value string) {
		got = append(got, name+"="+value)
	})
	assert.Equal(t, []string{"A=1", "B=20", "C=3"}, got)
}

func TestHeaderSetDropsDuplicates(t *testing.T) {
	var h Header
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")

	h.Set("set-cookie", "c=3")

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, []string{"c=3"}, h.Values("Set-Cookie"))
}

func TestHeaderAddAllowsRepeats(t *testing.T) {
	var h Header
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")

	assert.Equal(t, []string{"a=1", "b=2"}, h.Values("set-cookie"))
}

func TestHeaderCloneIsIndependent(t *testing.T) {
	var h Header
	h.Add("A", "1")

	c := h.Clone()
	c.Set("A", "mutated")

	assert.Equal(t, "1", h.Get("A"))
	assert.Equal(t, "mutated", c.Get("A"))
}

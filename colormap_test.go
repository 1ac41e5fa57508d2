package gvnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorMapLookupWithinWindow(t *testing.T) {
	m := &ColorMap{Offset: 10, Entries: []RGB16{{R: 1}, {R: 2}, {R: 3}}}
	entry, ok := m.Lookup(11)
	assert.True(t, ok)
	assert.Equal(t, RGB16{R: 2}, entry)
}

func TestColorMapLookupBelowWindow(t *testing.T) {
	m := &ColorMap{Offset: 10, Entries: []RGB16{{R: 1}}}
	_, ok := m.Lookup(5)
	assert.False(t, ok)
}

func TestColorMapLookupAboveWindow(t *testing.T) {
	m := &ColorMap{Offset: 10, Entries: []RGB16{{R: 1}}}
	_, ok := m.Lookup(11)
	assert.False(t, ok)
}

func TestColorMapLookupNilReceiver(t *testing.T) {
	var m *ColorMap
	_, ok := m.Lookup(0)
	assert.False(t, ok)
}

package muse_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samsarahq/muse"
)

func TestCacheLookupMiss(t *testing.T) {
	c := muse.NewCache()
	_, ok := c.Lookup(reflect.TypeOf(0), "missing")
	assert.False(t, ok)
}

func TestCacheMergeThenLookup(t *testing.T) {
	c := muse.NewCache()
	kind := reflect.TypeOf("")
	c.Merge(kind, map[interface{}]interface{}{"a": 1, "b": 2})

	v, ok := c.Lookup(kind, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = c.Lookup(kind, "b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, 2, c.Len())
}

func TestCacheMergeIsWriteOnce(t *testing.T) {
	c := muse.NewCache()
	kind := reflect.TypeOf("")
	c.Merge(kind, map[interface{}]interface{}{"a": 1})
	// A later merge for the same key must not overwrite the first value,
	// matching the write-once invariant.
	c.Merge(kind, map[interface{}]interface{}{"a": 999})

	v, ok := c.Lookup(kind, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Len())
}

func TestCacheKindsAreIndependent(t *testing.T) {
	c := muse.NewCache()
	c.Merge(reflect.TypeOf(0), map[interface{}]interface{}{"x": "int-kind"})
	c.Merge(reflect.TypeOf(""), map[interface{}]interface{}{"x": "string-kind"})

	v, ok := c.Lookup(reflect.TypeOf(0), "x")
	assert.True(t, ok)
	assert.Equal(t, "int-kind", v)

	v, ok = c.Lookup(reflect.TypeOf(""), "x")
	assert.True(t, ok)
	assert.Equal(t, "string-kind", v)
}

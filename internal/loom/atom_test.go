package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StringInterner_Intern_idempotent(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	a1 := si.Intern("foo")
	a2 := si.Intern("bar")
	a3 := si.Intern("foo")

	assert.Equal(a1, a3)
	assert.NotEqual(a1, a2)
	assert.Equal("foo", si.TextOf(a1))
	assert.Equal("bar", si.TextOf(a2))
	assert.Equal(2, si.Len())
}

func Test_StringInterner_LookupExisting(t *testing.T) {
	assert := assert.New(t)

	si := NewStringInterner()
	si.Intern("known")

	a, ok := si.LookupExisting("known")
	assert.True(ok)
	assert.Equal("known", si.TextOf(a))

	_, ok = si.LookupExisting("unknown")
	assert.False(ok)
}

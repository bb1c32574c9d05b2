package cython

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordPolicy_IsReserved(t *testing.T) {
	policy := NewKeywordPolicy("self")
	testCases := []struct {
		layer    Layer
		name     string
		reserved bool
	}{
		{LayerDynamic, "None", true},
		{LayerDynamic, "class", true},
		{LayerDynamic, "self", true},
		{LayerDynamic, "type", false},
		{LayerDynamic, "delete", false},
		{LayerNative, "delete", true},
		{LayerNative, "namespace", true},
		{LayerNative, "None", false},
		{LayerNative, "self", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.reserved, policy.IsReserved(tc.layer, tc.name), "%s in %s layer", tc.name, tc.layer)
	}
}

func TestKeywordPolicy_Escape(t *testing.T) {
	policy := NewKeywordPolicy()
	assert.Equal(t, "delete_", policy.Escape(LayerNative, "delete"))
	assert.Equal(t, "delete", policy.Escape(LayerDynamic, "delete"))
	assert.Equal(t, "None_", policy.Escape(LayerDynamic, "None"))
	assert.Equal(t, "name", policy.Escape(LayerNative, "name"))
}

func TestKeywordPolicy_Reserved(t *testing.T) {
	var nilPolicy *KeywordPolicy
	words := nilPolicy.Reserved(LayerDynamic)
	assert.Len(t, words, len(pythonKeywords))
	assert.True(t, sort.StringsAreSorted(words))
	assert.True(t, nilPolicy.IsReserved(LayerDynamic, "None"))

	// a keyword given again as an extra name is listed once
	words = NewKeywordPolicy("None", "self").Reserved(LayerDynamic)
	assert.Len(t, words, len(pythonKeywords)+1)
	assert.Contains(t, words, "self")

	assert.Len(t, NewKeywordPolicy("self").Reserved(LayerNative), len(cppKeywords))
}

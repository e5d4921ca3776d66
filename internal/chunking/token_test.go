package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenCounter_FallbackUsesWordCount(t *testing.T) {
	counter := &TokenCounter{} // no encoding loaded

	n, approx := counter.Count("three short words")
	assert.True(t, approx)
	assert.Equal(t, 3, n)
}

func TestTokenCounter_FallbackFloorsAtOne(t *testing.T) {
	counter := &TokenCounter{}

	n, approx := counter.Count("")
	assert.True(t, approx)
	assert.Equal(t, 1, n, "empty text still carries unit weight")
}

func TestTokenCounter_NonEmptyTextAlwaysPositive(t *testing.T) {
	// Holds on both the BPE path and the fallback path; which one runs
	// depends on whether the encoding data is available in the environment.
	counter := NewTokenCounter(DefaultEncoding)

	for _, text := range []string{"x", "hello world", "   ", "§"} {
		n, _ := counter.Count(text)
		assert.GreaterOrEqual(t, n, 1, "text %q", text)
	}
}

func TestNewTokenCounter_UnknownEncodingDegrades(t *testing.T) {
	counter := NewTokenCounter("no-such-encoding")

	n, approx := counter.Count("a b")
	assert.True(t, approx)
	assert.Equal(t, 2, n)
}

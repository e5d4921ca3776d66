package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_CollapsesSpacesAndTabs(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("a \t b\t\tc"))
}

func TestNormalize_RejoinsHyphenBrokenWords(t *testing.T) {
	assert.Equal(t, "development plan", Normalize("develop-\nment plan"))
	assert.Equal(t, "development", Normalize("develop- \n  ment"))
}

func TestNormalize_CollapsesNewlineRuns(t *testing.T) {
	assert.Equal(t, "para one\n\npara two", Normalize("para one\n\n\n\npara two"))
	// A plain paragraph break is left alone.
	assert.Equal(t, "para one\n\npara two", Normalize("para one\n\npara two"))
}

func TestNormalize_StripsBulletGlyphs(t *testing.T) {
	assert.Equal(t, "first\nsecond", Normalize("• first\n· second"))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   \n\n  "))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"a \t b\t\tc",
		"develop-\nment of the eval-\nuation plan",
		"• item one\n\n\n\n· item two",
		"  mixed •\tcontent- \n here \n\n\n end  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

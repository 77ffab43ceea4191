package scan

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSnippetTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "private String ssn;", snippet("    private String ssn;   "))
}

func TestSnippetShortLineUntouched(t *testing.T) {
	line := "first_name = row['first_name']"
	assert.Equal(t, line, snippet(line))
}

func TestSnippetTruncatesOnRuneBoundary(t *testing.T) {
	// the two-byte rune starts on the last byte inside the limit
	line := strings.Repeat("a", maxSnippetLen-1) + "é tail"

	got := snippet(line)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxSnippetLen-1), got)
	assert.LessOrEqual(t, len(got), maxSnippetLen)
}

func TestSnippetTruncatesLongASCIILine(t *testing.T) {
	got := snippet(strings.Repeat("x", maxSnippetLen+40))
	assert.Len(t, got, maxSnippetLen)
}

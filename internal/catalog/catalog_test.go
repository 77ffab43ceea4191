package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/pkg/shared/errors"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 39, c.Len())
	assert.Equal(t, "DEMO-001", c.Rules()[0].ID)
	assert.Equal(t, "name", c.Rules()[0].Category)
	assert.Equal(t, 0, c.Order("DEMO-001"))
	assert.Equal(t, 38, c.Order("DEMO-039"))
	assert.Equal(t, -1, c.Order("REF:customers.email"))
}

func TestLoadEmbeddedCatalogTiers(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	var exact int
	for _, r := range c.Rules() {
		if r.Tier == findings.TierExact {
			exact++
		}
	}
	// value-literal rules for ssn and email are the only exact-tier rules
	assert.Equal(t, 2, exact)
}

func TestVariantsByCategory(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	variants := c.VariantsByCategory()
	assert.Contains(t, variants["ssn"], "socialSecurityNumber")
	assert.Contains(t, variants["email"], "emailAddress")
	assert.Empty(t, variants["nonexistent"])
}

func TestLoadFileErrors(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "duplicate identifier",
			yaml: `rules:
  - id: R-1
    category: email
    pattern: 'email'
  - id: R-1
    category: phone
    pattern: 'phone'
`,
			wantErr: "duplicate rule identifier",
		},
		{
			name: "unparsable matcher",
			yaml: `rules:
  - id: R-1
    category: email
    pattern: '(unclosed'
`,
			wantErr: "unparsable matcher",
		},
		{
			name: "missing category",
			yaml: `rules:
  - id: R-1
    pattern: 'email'
`,
			wantErr: "without a category",
		},
		{
			name:    "empty catalog",
			yaml:    `rules: []`,
			wantErr: "no rules",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0644))

			_, err := LoadFile(path)
			require.Error(t, err)
			var loadErr *errors.CatalogLoadError
			assert.ErrorAs(t, err, &loadErr)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	var loadErr *errors.CatalogLoadError
	assert.ErrorAs(t, err, &loadErr)
}

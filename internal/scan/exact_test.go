package scan

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/internal/inputs"
	"github.com/zengent/codelens/internal/reference"
)

const customerClass = `public class Customers {
    @Column(name = "email")
    private String email;

    public String getEmail() { return this.email; }
}
`

func TestExactScanEmptyEntriesIsNoop(t *testing.T) {
	strategy, err := NewExactStrategy(nil, loadCatalog(t), hclog.NewNullLogger())
	require.NoError(t, err)

	result, warnings, scanErr := strategy.Scan(context.Background(), []inputs.SourceFile{
		{RelPath: "src/Customers.java", Content: customerClass},
	})
	require.NoError(t, scanErr)
	assert.Empty(t, result)
	assert.Empty(t, warnings)
}

func TestExactScanReferenceEntry(t *testing.T) {
	entries := []reference.Entry{{Table: "Customers", Field: "email"}}
	strategy, err := NewExactStrategy(entries, loadCatalog(t), hclog.NewNullLogger())
	require.NoError(t, err)

	result, _, scanErr := strategy.Scan(context.Background(), []inputs.SourceFile{
		{RelPath: "src/Customers.java", Content: customerClass},
	})
	require.NoError(t, scanErr)

	require.NotEmpty(t, result)
	for _, f := range result {
		assert.Equal(t, findings.TierExact, f.Tier)
		assert.Equal(t, "REF:customers.email", f.RuleID)
		assert.Equal(t, "email", f.Category, "reference entry should inherit the catalog category")
		assert.Equal(t, []string{findings.StrategyExact}, f.Strategies)
	}

	// declaration on line 3 and accessor on line 5 both hit, once per line each
	lines := map[int]int{}
	for _, f := range result {
		lines[f.Line]++
	}
	for line, count := range lines {
		assert.Equal(t, 1, count, "expected at most one finding on line %d", line)
	}
}

func TestExactScanQualifiedReference(t *testing.T) {
	entries := []reference.Entry{{Table: "customers", Field: "ssn"}}
	strategy, err := NewExactStrategy(entries, loadCatalog(t), hclog.NewNullLogger())
	require.NoError(t, err)

	result, _, scanErr := strategy.Scan(context.Background(), []inputs.SourceFile{
		{RelPath: "query.sql", Content: "SELECT customers.ssn FROM customers;\n"},
	})
	require.NoError(t, scanErr)

	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].Line)
	assert.Equal(t, "ssn", result[0].Category)
}

func TestExactScanCaseNormalized(t *testing.T) {
	entries := []reference.Entry{{Table: "CUSTOMERS", Field: "Email"}}
	strategy, err := NewExactStrategy(entries, loadCatalog(t), hclog.NewNullLogger())
	require.NoError(t, err)

	result, _, scanErr := strategy.Scan(context.Background(), []inputs.SourceFile{
		{RelPath: "model.py", Content: "self.email = payload['email']\n"},
	})
	require.NoError(t, scanErr)
	require.Len(t, result, 1)
	assert.Equal(t, "REF:customers.email", result[0].RuleID)
}

func TestExactScanUnknownFieldFallsBackToReferenceCategory(t *testing.T) {
	entries := []reference.Entry{{Table: "widgets", Field: "frobnication_index"}}
	strategy, err := NewExactStrategy(entries, loadCatalog(t), hclog.NewNullLogger())
	require.NoError(t, err)

	result, _, scanErr := strategy.Scan(context.Background(), []inputs.SourceFile{
		{RelPath: "w.go", Content: "frobnication_index := 3\n"},
	})
	require.NoError(t, scanErr)
	require.Len(t, result, 1)
	assert.Equal(t, "reference", result[0].Category)
}

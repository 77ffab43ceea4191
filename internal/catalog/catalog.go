package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	yaml "gopkg.in/yaml.v2"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/pkg/shared/errors"
)

//go:embed rules.yaml
var embeddedRules []byte

// PatternRule is a single detection rule. Immutable once loaded; shared
// read-only by all scan strategies and all concurrent jobs.
type PatternRule struct {
	ID          string
	Category    string
	Description string
	Tier        findings.Tier
	Matcher     *regexp.Regexp
	Variants    []string
}

// Catalog is the ordered, immutable set of detection rules.
type Catalog struct {
	rules []PatternRule
	index map[string]int
}

type ruleSpec struct {
	ID          string   `yaml:"id"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Pattern     string   `yaml:"pattern"`
	Tier        string   `yaml:"tier"`
	Variants    []string `yaml:"variants"`
}

type catalogSpec struct {
	Rules []ruleSpec `yaml:"rules"`
}

// Load parses the embedded rule catalog.
func Load() (*Catalog, error) {
	return parse(embeddedRules)
}

// LoadFile parses a rule catalog from an external YAML file, overriding the
// embedded one.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogLoadError("", fmt.Sprintf("cannot read catalog file %q", path), err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Catalog, error) {
	var spec catalogSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, errors.NewCatalogLoadError("", "malformed catalog YAML", err)
	}
	if len(spec.Rules) == 0 {
		return nil, errors.NewCatalogLoadError("", "catalog contains no rules", nil)
	}

	c := &Catalog{
		rules: make([]PatternRule, 0, len(spec.Rules)),
		index: make(map[string]int, len(spec.Rules)),
	}

	for _, rs := range spec.Rules {
		if rs.ID == "" {
			return nil, errors.NewCatalogLoadError("", "rule without an identifier", nil)
		}
		if _, dup := c.index[rs.ID]; dup {
			return nil, errors.NewCatalogLoadError(rs.ID, "duplicate rule identifier", nil)
		}
		if rs.Category == "" {
			return nil, errors.NewCatalogLoadError(rs.ID, "rule without a category", nil)
		}

		tier, err := parseTier(rs.Tier)
		if err != nil {
			return nil, errors.NewCatalogLoadError(rs.ID, "invalid confidence tier", err)
		}

		matcher, err := regexp.Compile(rs.Pattern)
		if err != nil {
			return nil, errors.NewCatalogLoadError(rs.ID, "unparsable matcher", err)
		}

		c.index[rs.ID] = len(c.rules)
		c.rules = append(c.rules, PatternRule{
			ID:          rs.ID,
			Category:    rs.Category,
			Description: rs.Description,
			Tier:        tier,
			Matcher:     matcher,
			Variants:    rs.Variants,
		})
	}

	return c, nil
}

func parseTier(s string) (findings.Tier, error) {
	switch s {
	case "exact":
		return findings.TierExact, nil
	case "heuristic", "":
		return findings.TierHeuristic, nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

// Rules returns the rules in catalog order. Callers must not mutate the slice.
func (c *Catalog) Rules() []PatternRule {
	return c.rules
}

// Len returns the number of rules in the catalog.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Order returns the catalog position of the rule, used for merge tie-breaks.
// Unknown rule identifiers (reference-entry keys) sort before catalog rules:
// caller-supplied reference data is authoritative.
func (c *Catalog) Order(ruleID string) int {
	if i, ok := c.index[ruleID]; ok {
		return i
	}
	return -1
}

// VariantsByCategory collects the known field-name variants per category,
// used by the similarity classifier as its reference vocabulary.
func (c *Catalog) VariantsByCategory() map[string][]string {
	out := make(map[string][]string)
	for _, r := range c.rules {
		if len(r.Variants) > 0 {
			out[r.Category] = append(out[r.Category], r.Variants...)
		}
	}
	return out
}

package ml

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/catalog"
	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/pkg/shared/config"
)

// SimilarityClassifier is the built-in offline model. It scores the matched
// identifier against the catalog's known field-name vocabulary for the
// finding's category with a blend of edit distance, character n-gram cosine
// similarity, and token overlap. The blend weights follow the trained
// field-matching model this replaces: 0.3 edit, 0.4 n-gram, 0.3 token.
type SimilarityClassifier struct {
	vocabulary map[string][]string
	threshold  float64
	logger     hclog.Logger
}

// NewSimilarityClassifier builds the classifier from the catalog vocabulary.
func NewSimilarityClassifier(cat *catalog.Catalog, threshold float64, logger hclog.Logger) *SimilarityClassifier {
	return &SimilarityClassifier{
		vocabulary: cat.VariantsByCategory(),
		threshold:  config.SetThen(threshold, config.DefaultMLThreshold),
		logger:     logger,
	}
}

// Backend implements Classifier.
func (c *SimilarityClassifier) Backend() string { return "local" }

// Classify implements Classifier. Pure with respect to its inputs: the same
// candidate always receives the same label and score.
func (c *SimilarityClassifier) Classify(ctx context.Context, candidates []findings.Finding) ([]findings.Finding, error) {
	labeled := make([]findings.Finding, len(candidates))
	for i, candidate := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score := c.bestScore(candidate.Category, candidate.MatchedText)
		label := findings.LabelNegative
		if score >= c.threshold {
			label = findings.LabelPositive
		}

		labeled[i] = candidate
		labeled[i].ML = &findings.Classification{
			Label:   label,
			Score:   math.Round(score*1000) / 1000,
			Backend: c.Backend(),
		}
	}

	c.logger.Debug("similarity classification finished", "candidates", len(candidates))
	return labeled, nil
}

// bestScore returns the highest similarity between the identifier and the
// category's known variants. Unknown categories score zero.
func (c *SimilarityClassifier) bestScore(category, identifier string) float64 {
	best := 0.0
	for _, variant := range c.vocabulary[category] {
		if s := Similarity(identifier, variant); s > best {
			best = s
		}
	}
	return best
}

// Similarity scores two field names in [0, 1]. Exact matches (after case
// folding) score 1.
func Similarity(a, b string) float64 {
	if strings.EqualFold(a, b) {
		return 1.0
	}

	source := preprocessFieldName(a)
	target := preprocessFieldName(b)
	if source == target {
		return 1.0
	}

	lev := levenshtein.Similarity(source, target, nil)
	cos := ngramCosine(source, target)
	overlap := tokenOverlap(source, target)

	score := 0.3*lev + 0.4*cos + 0.3*overlap
	return math.Max(0, math.Min(1, score))
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// preprocessFieldName lowers camelCase and snake_case names into
// space-separated words.
func preprocessFieldName(name string) string {
	name = camelBoundary.ReplaceAllString(name, "$1 $2")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	return strings.ToLower(name)
}

// ngramCosine computes cosine similarity over character 2-4 gram counts.
func ngramCosine(a, b string) float64 {
	va := ngramCounts(a)
	vb := ngramCounts(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for gram, countA := range va {
		normA += countA * countA
		if countB, ok := vb[gram]; ok {
			dot += countA * countB
		}
	}
	for _, countB := range vb {
		normB += countB * countB
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func ngramCounts(s string) map[string]float64 {
	counts := make(map[string]float64)
	runes := []rune(s)
	for n := 2; n <= 4; n++ {
		for i := 0; i+n <= len(runes); i++ {
			counts[string(runes[i:i+n])]++
		}
	}
	return counts
}

// tokenOverlap is the Jaccard index over whitespace-separated tokens.
func tokenOverlap(a, b string) float64 {
	tokensA := toSet(strings.Fields(a))
	tokensB := toSet(strings.Fields(b))
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 0
	}

	intersection := 0
	for token := range tokensA {
		if tokensB[token] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// Package ml implements the classification fallback for ambiguous heuristic
// findings. The default backend is a self-contained similarity model; hosted
// and self-hosted inference endpoints are supported as alternatives. A broken
// backend degrades the job (findings keep their heuristic tier), it never
// fails it.
package ml

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/catalog"
	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/pkg/shared/config"
	"github.com/zengent/codelens/pkg/shared/httpclient"
)

// Classifier attaches a label and score to candidate findings. Input identity
// and ordering are preserved; classifying the same finding with the same
// inputs yields the same label.
type Classifier interface {
	Backend() string
	Classify(ctx context.Context, candidates []findings.Finding) ([]findings.Finding, error)
}

// NewFromConfig builds the classifier selected by the ml configuration block.
func NewFromConfig(cfg *config.Config, cat *catalog.Catalog, logger hclog.Logger) (Classifier, error) {
	backend := config.SetThen(cfg.ML.Backend, "local")
	switch backend {
	case "local":
		return NewSimilarityClassifier(cat, cfg.ML.Threshold, logger), nil
	case "hosted", "selfhosted":
		client := httpclient.InitializeRestyClient(logger, cfg)
		return NewRemoteClassifier(cfg, client, logger)
	default:
		return nil, fmt.Errorf("unknown ml backend %q", backend)
	}
}

// NeedsReview reports whether a finding qualifies for the classification
// fallback: heuristic tier, not yet labeled, and a category configured as
// ambiguous.
func NeedsReview(f findings.Finding, ambiguous map[string]bool) bool {
	return f.Tier == findings.TierHeuristic && f.ML == nil && ambiguous[f.Category]
}

// Partition splits findings into classification candidates and the rest,
// preserving relative order in both halves.
func Partition(items []findings.Finding, ambiguous map[string]bool) (candidates, rest []findings.Finding) {
	for _, f := range items {
		if NeedsReview(f, ambiguous) {
			candidates = append(candidates, f)
		} else {
			rest = append(rest, f)
		}
	}
	return candidates, rest
}

// AmbiguousSet converts the configured category list into a lookup set.
func AmbiguousSet(categories []string) map[string]bool {
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[c] = true
	}
	return set
}

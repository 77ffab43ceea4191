package ml

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/internal/findings"
	"github.com/zengent/codelens/pkg/shared/config"
	"github.com/zengent/codelens/pkg/shared/errors"
)

// RemoteClassifier sends candidate findings to an inference backend: either a
// hosted provider authenticated with a credential, or a self-hosted endpoint
// identified by host and model name. The provider selection has no bearing on
// the scan strategies; it only changes where this one batch call goes.
type RemoteClassifier struct {
	client  *resty.Client
	backend string
	baseURL string
	model   string
	logger  hclog.Logger
}

type classifyRequestItem struct {
	Category   string `json:"category"`
	Identifier string `json:"identifier"`
	Snippet    string `json:"snippet,omitempty"`
}

type classifyRequest struct {
	Model string                `json:"model,omitempty"`
	Items []classifyRequestItem `json:"items"`
}

type classifyResponseItem struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type classifyResponse struct {
	Results []classifyResponseItem `json:"results"`
}

// NewRemoteClassifier builds a remote classifier from the ml configuration.
func NewRemoteClassifier(cfg *config.Config, client *resty.Client, logger hclog.Logger) (*RemoteClassifier, error) {
	switch cfg.ML.Backend {
	case "hosted":
		credential := cfg.ML.Hosted.Credential
		if credential == "" {
			credential = os.Getenv("CODELENS_ML_CREDENTIAL")
		}
		if credential == "" {
			return nil, fmt.Errorf("hosted ml backend requires a credential")
		}
		client.SetAuthToken(credential)
		return &RemoteClassifier{
			client:  client,
			backend: "hosted",
			baseURL: strings.TrimRight(cfg.ML.Hosted.BaseURL, "/"),
			model:   cfg.ML.Hosted.Model,
			logger:  logger,
		}, nil
	case "selfhosted":
		host := cfg.ML.SelfHosted.Host
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		return &RemoteClassifier{
			client:  client,
			backend: "selfhosted",
			baseURL: strings.TrimRight(host, "/"),
			model:   cfg.ML.SelfHosted.Model,
			logger:  logger,
		}, nil
	default:
		return nil, fmt.Errorf("remote classifier requires hosted or selfhosted backend, got %q", cfg.ML.Backend)
	}
}

// Backend implements Classifier.
func (c *RemoteClassifier) Backend() string { return c.backend }

// Classify implements Classifier. Any transport or protocol problem is
// reported as a ClassifierUnavailableError so the caller can degrade instead
// of failing the job.
func (c *RemoteClassifier) Classify(ctx context.Context, candidates []findings.Finding) ([]findings.Finding, error) {
	request := classifyRequest{Model: c.model, Items: make([]classifyRequestItem, len(candidates))}
	for i, candidate := range candidates {
		request.Items[i] = classifyRequestItem{
			Category:   candidate.Category,
			Identifier: candidate.MatchedText,
			Snippet:    candidate.Snippet,
		}
	}

	var response classifyResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post(c.baseURL + "/v1/classify")
	if err != nil {
		return nil, errors.NewClassifierUnavailableError(c.backend, err)
	}
	if resp.IsError() {
		return nil, errors.NewClassifierUnavailableError(c.backend, fmt.Errorf("inference endpoint returned %s", resp.Status()))
	}
	if len(response.Results) != len(candidates) {
		return nil, errors.NewClassifierUnavailableError(c.backend,
			fmt.Errorf("inference endpoint returned %d results for %d candidates", len(response.Results), len(candidates)))
	}

	labeled := make([]findings.Finding, len(candidates))
	for i, candidate := range candidates {
		label := findings.LabelNegative
		if strings.EqualFold(response.Results[i].Label, string(findings.LabelPositive)) {
			label = findings.LabelPositive
		}
		labeled[i] = candidate
		labeled[i].ML = &findings.Classification{
			Label:   label,
			Score:   response.Results[i].Score,
			Backend: c.backend,
		}
	}

	c.logger.Debug("remote classification finished", "backend", c.backend, "candidates", len(candidates))
	return labeled, nil
}

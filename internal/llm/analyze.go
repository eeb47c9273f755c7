package llm

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/careerstack/internal/prompts"
	"github.com/jonathan/careerstack/internal/retry"
	"github.com/jonathan/careerstack/internal/types"
)

// MaxInputLength is the number of characters of the resume and of the description sent to the model.
const MaxInputLength = 10000

// Analyzer scores job descriptions against a resume.
type Analyzer struct {
	client Client
	policy retry.Policy
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer. A nil client makes every Analyze call fail with ErrMissingAPIKey.
func NewAnalyzer(client Client, policy retry.Policy, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.Logger == nil {
		policy.Logger = logger
	}
	return &Analyzer{client: client, policy: policy, logger: logger}
}

// Analyze asks the model for a recruiter email, a 0-100 match score and a one-sentence summary.
func (a *Analyzer) Analyze(ctx context.Context, resume, description string) (*types.AnalysisResult, error) {
	if a.client == nil {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(resume) == "" {
		return nil, ErrMissingResume
	}

	prompt, err := BuildAnalysisPrompt(resume, description)
	if err != nil {
		return nil, err
	}

	model := a.client.GetModel(TierStandard)
	a.logger.Debug("requesting match analysis",
		zap.String("provider", string(a.client.Provider())),
		zap.String("model", model),
		zap.Int("prompt_length", len(prompt)))

	raw, err := retry.Do(ctx, a.policy, func(ctx context.Context) (string, error) {
		return a.client.GenerateJSON(ctx, prompt, TierStandard)
	})
	if err != nil {
		return nil, err
	}

	result, err := ParseAnalysis(a.client.Provider(), raw)
	if err != nil {
		return nil, err
	}
	a.logger.Info("match analysis complete", zap.Int("score", result.Score))
	return result, nil
}

// BuildAnalysisPrompt renders the analysis prompt with both inputs cut to MaxInputLength characters.
func BuildAnalysisPrompt(resume, description string) (string, error) {
	return prompts.Render(prompts.MatchAnalysis, map[string]string{
		"Resume":         truncateRunes(resume, MaxInputLength),
		"JobDescription": truncateRunes(description, MaxInputLength),
	})
}

// ParseAnalysis decodes a model answer into an AnalysisResult.
// Fractional scores are rounded, and an empty or "null" email becomes nil.
func ParseAnalysis(provider Provider, raw string) (*types.AnalysisResult, error) {
	var payload struct {
		Email   *string `json:"email"`
		Score   float64 `json:"score"`
		Summary string  `json:"summary"`
	}
	cleaned := CleanJSONBlock(raw)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &ParseError{Provider: provider, Raw: raw, Cause: err}
	}

	result := &types.AnalysisResult{
		Email:   payload.Email,
		Score:   int(math.Round(payload.Score)),
		Summary: strings.TrimSpace(payload.Summary),
	}
	if result.Email != nil {
		email := strings.TrimSpace(*result.Email)
		if email == "" || strings.EqualFold(email, "null") {
			result.Email = nil
		} else {
			result.Email = &email
		}
	}
	if err := result.Validate(); err != nil {
		return nil, &ParseError{Provider: provider, Raw: raw, Cause: err}
	}
	return result, nil
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

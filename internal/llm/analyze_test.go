package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns queued answers in order and records the prompts it receives.
type scriptedClient struct {
	answers []string
	errs    []error
	prompts []string
}

func (c *scriptedClient) GenerateJSON(_ context.Context, prompt string, _ ModelTier) (string, error) {
	i := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.answers) {
		return c.answers[i], nil
	}
	return "", errors.New("no scripted answer")
}

func (c *scriptedClient) GetModel(ModelTier) string { return "test-model" }
func (c *scriptedClient) Provider() Provider        { return ProviderGemini }
func (c *scriptedClient) Close() error              { return nil }

func TestAnalyzer_Analyze(t *testing.T) {
	tests := []struct {
		name      string
		client    *scriptedClient
		resume    string
		wantScore int
		wantEmail string
		wantErr   error
		wantCalls int
	}{
		{
			name:      "fenced answer",
			client:    &scriptedClient{answers: []string{"```json\n{\"email\": \"jane@acme.io\", \"score\": 88, \"summary\": \"Good fit.\"}\n```"}},
			resume:    "Go developer",
			wantScore: 88,
			wantEmail: "jane@acme.io",
			wantCalls: 1,
		},
		{
			name: "rate limit retried",
			client: &scriptedClient{
				errs:    []error{&APICallError{Provider: ProviderGemini, Status: 429}},
				answers: []string{"", `{"email": null, "score": 40.6, "summary": "Partial fit."}`},
			},
			resume:    "Go developer",
			wantScore: 41,
			wantCalls: 2,
		},
		{
			name:      "invalid key not retried",
			client:    &scriptedClient{errs: []error{&APICallError{Provider: ProviderGemini, Status: 401}}},
			resume:    "Go developer",
			wantCalls: 1,
		},
		{
			name:      "missing resume",
			client:    &scriptedClient{},
			resume:    "  ",
			wantErr:   ErrMissingResume,
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzer(tt.client, noSleepPolicy(), nil)
			result, err := analyzer.Analyze(context.Background(), tt.resume, "Senior Go engineer")

			assert.Len(t, tt.client.prompts, tt.wantCalls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.wantScore == 0 {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantEmail, result.EmailOrEmpty())
		})
	}
}

func TestAnalyzer_NilClient(t *testing.T) {
	_, err := NewAnalyzer(nil, noSleepPolicy(), nil).Analyze(context.Background(), "resume", "job")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAnalyzer_ParseFailureNotRetried(t *testing.T) {
	client := &scriptedClient{answers: []string{"I think this is a good match."}}
	_, err := NewAnalyzer(client, noSleepPolicy(), nil).Analyze(context.Background(), "resume", "job")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "I think this is a good match.", parseErr.Raw)
	assert.Contains(t, err.Error(), "failed to parse Gemini response")
	assert.Len(t, client.prompts, 1)
}

func TestBuildAnalysisPrompt_Truncates(t *testing.T) {
	resume := strings.Repeat("r", MaxInputLength+500)
	description := strings.Repeat("é", MaxInputLength+1)

	prompt, err := BuildAnalysisPrompt(resume, description)
	require.NoError(t, err)

	assert.Contains(t, prompt, strings.Repeat("r", MaxInputLength))
	assert.NotContains(t, prompt, strings.Repeat("r", MaxInputLength+1))
	assert.Contains(t, prompt, strings.Repeat("é", MaxInputLength))
	assert.NotContains(t, prompt, strings.Repeat("é", MaxInputLength+1))
	assert.Contains(t, prompt, `{"email": "string or null", "score": number, "summary": "string"}`)
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantEmail *string
		wantScore int
		wantErr   bool
	}{
		{name: "plain", raw: `{"email": "a@b.co", "score": 90, "summary": "Fit."}`, wantEmail: strPtr("a@b.co"), wantScore: 90},
		{name: "null string email", raw: `{"email": "null", "score": 10, "summary": "No."}`, wantScore: 10},
		{name: "empty email", raw: `{"email": " ", "score": 10, "summary": "No."}`, wantScore: 10},
		{name: "preamble", raw: `Here you go: {"email": null, "score": 55, "summary": "Maybe."}`, wantScore: 55},
		{name: "score out of range", raw: `{"email": null, "score": 140, "summary": "Wow."}`, wantErr: true},
		{name: "missing summary", raw: `{"email": null, "score": 50}`, wantErr: true},
		{name: "not json", raw: `no`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnalysis(ProviderOpenAI, tt.raw)
			if tt.wantErr {
				var parseErr *ParseError
				assert.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantEmail, got.Email)
		})
	}
}

func strPtr(s string) *string { return &s }

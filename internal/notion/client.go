package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/careerstack/internal/retry"
	"github.com/jonathan/careerstack/internal/types"
	"go.uber.org/zap"
)

// DefaultBaseURL is the Notion REST endpoint.
const DefaultBaseURL = "https://api.notion.com/v1"

// APIVersion is sent as the Notion-Version header.
const APIVersion = "2022-06-28"

// Config configures a Client.
type Config struct {
	Secret     string
	DatabaseID string
	BaseURL    string
	HTTPClient *http.Client
	Retry      *retry.Policy
	Logger     *zap.Logger
	// Now is overridable for tests.
	Now func() time.Time
}

// Client talks to one Notion job tracker database.
type Client struct {
	secret     string
	databaseID string
	baseURL    string
	http       *http.Client
	policy     retry.Policy
	logger     *zap.Logger
	now        func() time.Time
}

// DuplicateResult reports whether a job URL is already in the database.
type DuplicateResult struct {
	IsDuplicate bool   `json:"is_duplicate"`
	ExistingURL string `json:"existing_url,omitempty"`
}

type pageRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type queryResponse struct {
	Results []pageRef `json:"results"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient returns a Client, or ErrMissingSettings when secret or database id is empty.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Secret) == "" || strings.TrimSpace(cfg.DatabaseID) == "" {
		return nil, ErrMissingSettings
	}
	c := &Client{
		secret:     cfg.Secret,
		databaseID: cfg.DatabaseID,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       cfg.HTTPClient,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Retry != nil {
		c.policy = *cfg.Retry
	} else {
		c.policy = retry.DefaultPolicy()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.policy.Logger == nil {
		c.policy.Logger = c.logger
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// CheckDuplicate looks the job URL up by its Source URL property. A failed lookup is logged and
// reported as not a duplicate so it never blocks saving.
func (c *Client) CheckDuplicate(ctx context.Context, jobURL string) DuplicateResult {
	body := map[string]interface{}{
		"filter": map[string]interface{}{
			"property": PropSourceURL,
			"url":      map[string]string{"equals": jobURL},
		},
		"page_size": 1,
	}

	var out queryResponse
	if err := c.post(ctx, fmt.Sprintf("/databases/%s/query", c.databaseID), body, &out); err != nil {
		c.logger.Warn("Duplicate check failed", zap.String("url", jobURL), zap.Error(err))
		return DuplicateResult{}
	}
	if len(out.Results) == 0 {
		return DuplicateResult{}
	}
	existing := out.Results[0]
	return DuplicateResult{IsDuplicate: true, ExistingURL: PageURL(existing.URL, existing.ID)}
}

// Save creates a page for req and returns its URL.
func (c *Client) Save(ctx context.Context, req *types.SaveRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid save request: %w", err)
	}

	page := BuildPage(c.databaseID, req, c.now())

	var out pageRef
	if err := c.post(ctx, "/pages", page, &out); err != nil {
		return "", err
	}

	pageURL := PageURL(out.URL, out.ID)
	c.logger.Info("Saved job to Notion", zap.String("page", pageURL), zap.Int("blocks", len(page.Children)))
	return pageURL, nil
}

// post sends body as JSON and decodes a 2xx response into out. Non-2xx responses become *APIError.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := retry.DoHTTP(ctx, c.policy, c.http, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.secret)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Notion-Version", APIVersion)
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("notion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{Message: "failed to read Notion response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		return &APIError{Status: resp.StatusCode, Code: e.Code, Message: e.Message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{Message: "failed to parse Notion response", Cause: err}
	}
	return nil
}

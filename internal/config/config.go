// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/careerstack/internal/secrets"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CAREERSTACK_"

// DefaultSelectorTTL is how long a fetched selector document is served without a refresh.
const DefaultSelectorTTL = 6 * time.Hour

// DefaultServerAddr is where the companion API listens unless configured otherwise.
const DefaultServerAddr = "127.0.0.1:7420"

// DefaultTokenTTL is the lifetime of companion API tokens.
const DefaultTokenTTL = 30 * 24 * time.Hour

// DefaultSelectorSources are the remote selector documents, tried in order.
var DefaultSelectorSources = []string{
	"https://cdn.jsdelivr.net/gh/musavirchukkan/CareerStack-AI@main/src/config/selectors.json",
	"https://gist.github.com/musavirchukkan/018a11ff4c1c779a157377c1ca2c6bcb/raw/selectors.json",
	"https://raw.githubusercontent.com/musavirchukkan/CareerStack-AI/main/src/config/selectors.json",
}

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults, environment overrides or CLI flags.
type Config struct {
	Notion    NotionConfig    `json:"notion" yaml:"notion"`
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Selectors SelectorsConfig `json:"selectors" yaml:"selectors"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Server    ServerConfig    `json:"server" yaml:"server"`

	ResumePath  string `json:"resume_path,omitempty" yaml:"resume_path,omitempty"`   // Path to the master resume (plain text)
	CacheDir    string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`       // Directory for the on-disk selector cache
	RedisAddr   string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" validate:"omitempty,hostname_port"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty" validate:"omitempty,url"` // PostgreSQL connection URL for save history
	KeyFile     string `json:"key_file,omitempty" yaml:"key_file,omitempty"`         // Local key used to decrypt enc:: secrets

	UseBrowser  bool `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Render pages in headless Chrome
	Concurrency int  `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=0,lte=32"`
}

// NotionConfig holds the workspace integration settings.
type NotionConfig struct {
	Secret     string `json:"secret,omitempty" yaml:"secret,omitempty"`
	DatabaseID string `json:"database_id,omitempty" yaml:"database_id,omitempty"`
}

// AIConfig selects the analysis provider.
type AIConfig struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
}

// SelectorsConfig controls where remote selector documents come from.
type SelectorsConfig struct {
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty" validate:"dive,url"`
	TTL     Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=console json"`
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// ServerConfig configures the companion HTTP API used by the browser front-end.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
	// TokenSecret signs bearer tokens. It may be stored enc:: encrypted.
	TokenSecret string   `json:"token_secret,omitempty" yaml:"token_secret,omitempty"`
	TokenTTL    Duration `json:"token_ttl,omitempty" yaml:"token_ttl,omitempty"`
	// AllowedOrigins lists CORS origins, e.g. chrome-extension://<id>.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	// RateLimit is requests per minute per client; a negative value disables limiting.
	RateLimit int `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		AI: AIConfig{Provider: "gemini"},
		Selectors: SelectorsConfig{
			Sources: append([]string(nil), DefaultSelectorSources...),
			TTL:     Duration(DefaultSelectorTTL),
		},
		Log:         LogConfig{Level: "info", Format: "console"},
		Server: ServerConfig{
			Addr:      DefaultServerAddr,
			TokenTTL:  Duration(DefaultTokenTTL),
			RateLimit: 60,
		},
		CacheDir:    userDir(os.UserCacheDir),
		KeyFile:     filepath.Join(userDir(os.UserConfigDir), "key"),
		Concurrency: 4,
	}
}

func userDir(base func() (string, error)) string {
	dir, err := base()
	if err != nil || dir == "" {
		return ".careerstack"
	}
	return filepath.Join(dir, "careerstack")
}

// Load builds the effective configuration: defaults, then the file at path when path is not
// empty, then CAREERSTACK_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		cfg = &merged
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from CAREERSTACK_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"NOTION_SECRET":       &c.Notion.Secret,
		"NOTION_DATABASE_ID":  &c.Notion.DatabaseID,
		"AI_PROVIDER":         &c.AI.Provider,
		"AI_API_KEY":          &c.AI.APIKey,
		"AI_MODEL":            &c.AI.Model,
		"AI_BASE_URL":         &c.AI.BaseURL,
		"RESUME_PATH":         &c.ResumePath,
		"CACHE_DIR":           &c.CacheDir,
		"REDIS_ADDR":          &c.RedisAddr,
		"DATABASE_URL":        &c.DatabaseURL,
		"KEY_FILE":            &c.KeyFile,
		"LOG_LEVEL":           &c.Log.Level,
		"LOG_FORMAT":          &c.Log.Format,
		"LOG_FILE":            &c.Log.File,
		"SERVER_ADDR":         &c.Server.Addr,
		"SERVER_TOKEN_SECRET": &c.Server.TokenSecret,
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup(EnvPrefix + "USE_BROWSER"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: %sUSE_BROWSER: %w", EnvPrefix, err)
		}
		c.UseBrowser = b
	}
	if v, ok := lookup(EnvPrefix + "CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %sCONCURRENCY: %w", EnvPrefix, err)
		}
		c.Concurrency = n
	}
	if v, ok := lookup(EnvPrefix + "SELECTOR_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config error: %sSELECTOR_TTL: %w", EnvPrefix, err)
		}
		c.Selectors.TTL = Duration(d)
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check that Notion or AI credentials are present; commands that need
// them check at use.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Selectors.TTL < 0 {
		return fmt.Errorf("config error: 'selectors.ttl' must be non-negative")
	}
	if c.Server.TokenTTL < 0 {
		return fmt.Errorf("config error: 'server.token_ttl' must be non-negative")
	}
	if c.Notion.DatabaseID != "" && c.Notion.Secret == "" {
		return fmt.Errorf("config error: 'notion.database_id' is set but 'notion.secret' is empty")
	}

	if c.ResumePath != "" {
		if _, err := os.Stat(c.ResumePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.ResumePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer a config file over Default() and CLI flags over the result.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.Notion.Secret, defaults.Notion.Secret)
	fill(&result.Notion.DatabaseID, defaults.Notion.DatabaseID)
	fill(&result.AI.Provider, defaults.AI.Provider)
	fill(&result.AI.APIKey, defaults.AI.APIKey)
	fill(&result.AI.Model, defaults.AI.Model)
	fill(&result.AI.BaseURL, defaults.AI.BaseURL)
	fill(&result.Log.Level, defaults.Log.Level)
	fill(&result.Log.Format, defaults.Log.Format)
	fill(&result.Log.File, defaults.Log.File)
	fill(&result.ResumePath, defaults.ResumePath)
	fill(&result.CacheDir, defaults.CacheDir)
	fill(&result.RedisAddr, defaults.RedisAddr)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.KeyFile, defaults.KeyFile)
	fill(&result.Server.Addr, defaults.Server.Addr)
	fill(&result.Server.TokenSecret, defaults.Server.TokenSecret)
	if result.Server.TokenTTL == 0 {
		result.Server.TokenTTL = defaults.Server.TokenTTL
	}
	if len(result.Server.AllowedOrigins) == 0 {
		result.Server.AllowedOrigins = append([]string(nil), defaults.Server.AllowedOrigins...)
	}
	if result.Server.RateLimit == 0 {
		result.Server.RateLimit = defaults.Server.RateLimit
	}

	if len(result.Selectors.Sources) == 0 {
		result.Selectors.Sources = append([]string(nil), defaults.Selectors.Sources...)
	}
	if result.Selectors.TTL == 0 {
		result.Selectors.TTL = defaults.Selectors.TTL
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// DecryptSecrets replaces enc:: values of the Notion secret and AI key with their plaintext.
// box may be nil when no value is encrypted.
func (c *Config) DecryptSecrets(box *secrets.Box) error {
	for name, field := range map[string]*string{
		"notion.secret":       &c.Notion.Secret,
		"ai.api_key":          &c.AI.APIKey,
		"server.token_secret": &c.Server.TokenSecret,
	} {
		if !secrets.IsEncrypted(*field) {
			continue
		}
		if box == nil {
			return fmt.Errorf("config error: %s is encrypted but no key is available", name)
		}
		plain, err := box.Decrypt(*field)
		if err != nil {
			return fmt.Errorf("config error: %s: %w", name, err)
		}
		*field = plain
	}
	return nil
}

// HasEncryptedSecrets reports whether any secret needs a key to be read.
func (c *Config) HasEncryptedSecrets() bool {
	return secrets.IsEncrypted(c.Notion.Secret) || secrets.IsEncrypted(c.AI.APIKey) ||
		secrets.IsEncrypted(c.Server.TokenSecret)
}

// NotionConfigured reports whether pages can be saved.
func (c *Config) NotionConfigured() bool {
	return c.Notion.Secret != "" && c.Notion.DatabaseID != ""
}

// ReadResume returns the master resume text, or "" when no path is configured.
func (c *Config) ReadResume() (string, error) {
	if c.ResumePath == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.ResumePath)
	if err != nil {
		return "", fmt.Errorf("failed to read resume %s: %w", c.ResumePath, err)
	}
	return string(data), nil
}

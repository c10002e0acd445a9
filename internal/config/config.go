package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName  = ".config/notion-gist"
	configFileName = "config.json"

	DefaultNotionBaseURL = "https://api.notion.com/v1"
	DefaultNotionVersion = "2022-06-28"
	DefaultGistBaseURL   = "https://api.github.com"
	DefaultGistFilename  = "notion.md"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

type Config struct {
	API    APIConfig    `json:"api,omitempty"`
	Gist   GistConfig   `json:"gist,omitempty"`
	Source SourceConfig `json:"source,omitempty"`
	Log    LogConfig    `json:"log,omitempty"`
}

type APIConfig struct {
	BaseURL       string `json:"base_url,omitempty"`
	NotionVersion string `json:"notion_version,omitempty"`
	Token         string `json:"token,omitempty"`
}

type GistConfig struct {
	BaseURL  string `json:"base_url,omitempty"`
	Token    string `json:"token,omitempty"`
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// SourceConfig names the Notion page mirrored when no page is given on the
// command line.
type SourceConfig struct {
	PageID string `json:"page_id,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:       DefaultNotionBaseURL,
			NotionVersion: DefaultNotionVersion,
		},
		Gist: GistConfig{
			BaseURL:  DefaultGistBaseURL,
			Filename: DefaultGistFilename,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load resolves configuration with precedence defaults < file < env.
func Load() (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return cfg, err
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

// LoadFile resolves configuration from defaults and the config file only.
func LoadFile() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, err
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	normalize(&cfg)
	return cfg, nil
}

// Save writes cfg to the config file, keeping keys it does not know about.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	normalize(&cfg)

	merged := map[string]any{}
	if existing, err := os.ReadFile(path); err == nil {
		if len(existing) > 0 {
			if err := json.Unmarshal(existing, &merged); err != nil {
				return err
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	apiMap := section(merged, "api")
	apiMap["base_url"] = cfg.API.BaseURL
	apiMap["notion_version"] = cfg.API.NotionVersion
	setOrDelete(apiMap, "token", cfg.API.Token)
	merged["api"] = apiMap

	gistMap := section(merged, "gist")
	gistMap["base_url"] = cfg.Gist.BaseURL
	gistMap["filename"] = cfg.Gist.Filename
	setOrDelete(gistMap, "token", cfg.Gist.Token)
	setOrDelete(gistMap, "id", cfg.Gist.ID)
	merged["gist"] = gistMap

	sourceMap := section(merged, "source")
	setOrDelete(sourceMap, "page_id", cfg.Source.PageID)
	merged["source"] = sourceMap

	logMap := section(merged, "log")
	logMap["level"] = cfg.Log.Level
	logMap["format"] = cfg.Log.Format
	merged["log"] = logMap

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// NotionTokenFromEnv reports the Notion token set in the environment, if any.
func NotionTokenFromEnv() string {
	if s := strings.TrimSpace(os.Getenv("NOTION_API_TOKEN")); s != "" {
		return s
	}
	return strings.TrimSpace(os.Getenv("NOTION_API_KEY"))
}

func GistTokenFromEnv() string {
	return strings.TrimSpace(os.Getenv("GIST_TOKEN"))
}

func section(m map[string]any, key string) map[string]any {
	out := map[string]any{}
	if existing, ok := m[key].(map[string]any); ok {
		for k, v := range existing {
			out[k] = v
		}
	}
	return out
}

func setOrDelete(m map[string]any, key, value string) {
	if value == "" {
		delete(m, key)
		return
	}
	m[key] = value
}

func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if s := os.Getenv("NOTION_API_BASE_URL"); s != "" {
		cfg.API.BaseURL = s
	}
	if s := os.Getenv("NOTION_API_NOTION_VERSION"); s != "" {
		cfg.API.NotionVersion = s
	}
	if s := NotionTokenFromEnv(); s != "" {
		cfg.API.Token = s
	}
	if s := os.Getenv("NOTION_PAGE_ID"); s != "" {
		cfg.Source.PageID = s
	}
	if s := os.Getenv("GIST_API_BASE_URL"); s != "" {
		cfg.Gist.BaseURL = s
	}
	if s := GistTokenFromEnv(); s != "" {
		cfg.Gist.Token = s
	}
	if s := os.Getenv("GIST_ID"); s != "" {
		cfg.Gist.ID = s
	}
	if s := os.Getenv("GIST_FILENAME"); s != "" {
		cfg.Gist.Filename = s
	}
	if s := os.Getenv("NOTION_GIST_LOG_LEVEL"); s != "" {
		cfg.Log.Level = s
	}
	if s := os.Getenv("NOTION_GIST_LOG_FORMAT"); s != "" {
		cfg.Log.Format = s
	}
}

func normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.API.BaseURL = trimURL(cfg.API.BaseURL, DefaultNotionBaseURL)
	cfg.API.NotionVersion = orDefault(cfg.API.NotionVersion, DefaultNotionVersion)
	cfg.API.Token = strings.TrimSpace(cfg.API.Token)

	cfg.Gist.BaseURL = trimURL(cfg.Gist.BaseURL, DefaultGistBaseURL)
	cfg.Gist.Filename = orDefault(cfg.Gist.Filename, DefaultGistFilename)
	cfg.Gist.Token = strings.TrimSpace(cfg.Gist.Token)
	cfg.Gist.ID = strings.TrimSpace(cfg.Gist.ID)

	cfg.Source.PageID = strings.TrimSpace(cfg.Source.PageID)

	cfg.Log.Level = strings.ToLower(orDefault(cfg.Log.Level, DefaultLogLevel))
	cfg.Log.Format = strings.ToLower(orDefault(cfg.Log.Format, DefaultLogFormat))
}

func trimURL(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = fallback
	}
	return strings.TrimRight(s, "/")
}

func orDefault(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// Package config reads and writes tsucho.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tsucho-dev/tsucho/internal/analysis"
	"github.com/tsucho-dev/tsucho/internal/classify"
	"github.com/tsucho-dev/tsucho/internal/store"
)

// FileName is the config file name in the data root.
const FileName = "tsucho.yaml"

// Config represents the top-level tsucho.yaml configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Classify   ClassifyConfig   `yaml:"classify"`
	Generative GenerativeConfig `yaml:"generative"`
	Git        GitConfig        `yaml:"git"`
}

// StorageConfig selects the case store.
type StorageConfig struct {
	Backend string `yaml:"backend"` // csv or sqlite
}

// AnalysisConfig controls large-amount and transfer detection.
type AnalysisConfig struct {
	LargeAmountThreshold int64 `yaml:"large_amount_threshold"`
	TransferWindowDays   int   `yaml:"transfer_window_days"`
	TransferTolerance    int64 `yaml:"transfer_tolerance"`
}

// ClassifyConfig controls the classification pipeline.
type ClassifyConfig struct {
	Mode          string            `yaml:"mode"` // auto, rules or generative
	GiftThreshold int64             `yaml:"gift_threshold"`
	Workers       int               `yaml:"workers"`
	Keywords      classify.Keywords `yaml:"keywords"`
}

// GenerativeConfig selects and configures the generative backend.
type GenerativeConfig struct {
	Provider     string        `yaml:"provider"` // ollama or gemini
	Model        string        `yaml:"model"`
	Endpoint     string        `yaml:"endpoint"`
	Timeout      time.Duration `yaml:"timeout"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	APIKeyEnv    string        `yaml:"api_key_env"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Provider names.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Default returns a Config with the built-in settings.
func Default() *Config {
	transfer := analysis.DefaultTransferOptions()
	return &Config{
		Storage: StorageConfig{Backend: store.BackendCSV},
		Analysis: AnalysisConfig{
			LargeAmountThreshold: analysis.DefaultLargeAmountThreshold,
			TransferWindowDays:   transfer.WindowDays,
			TransferTolerance:    transfer.Tolerance,
		},
		Classify: ClassifyConfig{
			Mode:          string(classify.ModeAuto),
			GiftThreshold: classify.DefaultGiftThreshold,
			Workers:       classify.DefaultWorkers,
			Keywords:      classify.DefaultKeywords(),
		},
		Generative: GenerativeConfig{
			Provider:     ProviderOllama,
			Model:        "llama3",
			Endpoint:     classify.DefaultOllamaEndpoint,
			Timeout:      30 * time.Second,
			ProbeTimeout: 2 * time.Second,
			APIKeyEnv:    "GEMINI_API_KEY",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "tsucho",
			AuthorEmail: "tsucho@localhost",
		},
	}
}

// Load reads a tsucho.yaml file from disk. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// TransferOptions returns the matcher options.
func (c *Config) TransferOptions() analysis.TransferOptions {
	return analysis.TransferOptions{
		WindowDays: c.Analysis.TransferWindowDays,
		Tolerance:  c.Analysis.TransferTolerance,
	}
}

// Validate checks value bounds.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case store.BackendCSV, store.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if c.Analysis.LargeAmountThreshold <= 0 {
		errs = append(errs, errors.New("analysis.large_amount_threshold must be positive"))
	}
	if c.Analysis.TransferWindowDays < 0 || c.Analysis.TransferWindowDays > 30 {
		errs = append(errs, errors.New("analysis.transfer_window_days must be between 0 and 30"))
	}
	if c.Analysis.TransferTolerance < 0 {
		errs = append(errs, errors.New("analysis.transfer_tolerance must not be negative"))
	}
	if _, err := classify.ParseMode(c.Classify.Mode); err != nil {
		errs = append(errs, fmt.Errorf("classify.mode: %w", err))
	}
	if c.Classify.GiftThreshold <= 0 {
		errs = append(errs, errors.New("classify.gift_threshold must be positive"))
	}
	if c.Classify.Workers < 1 || c.Classify.Workers > 64 {
		errs = append(errs, errors.New("classify.workers must be between 1 and 64"))
	}
	switch c.Generative.Provider {
	case ProviderOllama, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("generative.provider: unknown provider %q", c.Generative.Provider))
	}
	if c.Generative.Timeout <= 0 || c.Generative.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("generative timeouts must be positive"))
	}
	return errors.Join(errs...)
}

// envOverrides maps environment variables to config keys.
var envOverrides = []struct{ env, key string }{
	{"LARGE_AMOUNT_THRESHOLD", "analysis.large_amount_threshold"},
	{"TRANSFER_DAYS_WINDOW", "analysis.transfer_window_days"},
	{"TRANSFER_AMOUNT_TOLERANCE", "analysis.transfer_tolerance"},
	{"OLLAMA_MODEL", "generative.model"},
	{"OLLAMA_BASE_URL", "generative.endpoint"},
	{"TSUCHO_CLASSIFY_MODE", "classify.mode"},
}

// ApplyEnv overrides settings from environment variables read with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	for _, o := range envOverrides {
		v := getenv(o.env)
		if v == "" {
			continue
		}
		if err := c.Set(o.key, v); err != nil {
			return fmt.Errorf("%s: %w", o.env, err)
		}
	}
	return nil
}

type setter func(c *Config, v string) error

var setters = map[string]setter{
	"storage.backend":                   setString(func(c *Config) *string { return &c.Storage.Backend }),
	"analysis.large_amount_threshold":   setInt64(func(c *Config) *int64 { return &c.Analysis.LargeAmountThreshold }),
	"analysis.transfer_window_days":     setInt(func(c *Config) *int { return &c.Analysis.TransferWindowDays }),
	"analysis.transfer_tolerance":       setInt64(func(c *Config) *int64 { return &c.Analysis.TransferTolerance }),
	"classify.mode":                     setString(func(c *Config) *string { return &c.Classify.Mode }),
	"classify.gift_threshold":           setInt64(func(c *Config) *int64 { return &c.Classify.GiftThreshold }),
	"classify.workers":                  setInt(func(c *Config) *int { return &c.Classify.Workers }),
	"classify.keywords.living_expense":  setList(func(c *Config) *[]string { return &c.Classify.Keywords.LivingExpense }),
	"classify.keywords.asset_formation": setList(func(c *Config) *[]string { return &c.Classify.Keywords.AssetFormation }),
	"classify.keywords.transfer":        setList(func(c *Config) *[]string { return &c.Classify.Keywords.Transfer }),
	"classify.keywords.other":           setList(func(c *Config) *[]string { return &c.Classify.Keywords.Other }),
	"generative.provider":               setString(func(c *Config) *string { return &c.Generative.Provider }),
	"generative.model":                  setString(func(c *Config) *string { return &c.Generative.Model }),
	"generative.endpoint":               setString(func(c *Config) *string { return &c.Generative.Endpoint }),
	"generative.timeout":                setDuration(func(c *Config) *time.Duration { return &c.Generative.Timeout }),
	"generative.probe_timeout":          setDuration(func(c *Config) *time.Duration { return &c.Generative.ProbeTimeout }),
	"generative.api_key_env":            setString(func(c *Config) *string { return &c.Generative.APIKeyEnv }),
	"git.auto_commit":                   setBool(func(c *Config) *bool { return &c.Git.AutoCommit }),
	"git.author_name":                   setString(func(c *Config) *string { return &c.Git.AuthorName }),
	"git.author_email":                  setString(func(c *Config) *string { return &c.Git.AuthorEmail }),
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a value by dotted key, e.g. "analysis.transfer_tolerance".
// Keyword lists take comma-separated values.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func setString(field func(*Config) *string) setter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.ReplaceAll(v, ",", ""))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func setInt64(field func(*Config) *int64) setter {
	return func(c *Config, v string) error {
		n, err := strconv.ParseInt(strings.ReplaceAll(v, ",", ""), 10, 64)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func setBool(field func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func setDuration(field func(*Config) *time.Duration) setter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func setList(field func(*Config) *[]string) setter {
	return func(c *Config, v string) error {
		var items []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		*field(c) = items
		return nil
	}
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig        `yaml:"http"`
	Deadline  float64           `yaml:"deadline_seconds"`
	Cache     CacheConfig       `yaml:"cache"`
	Adapters  AdaptersConfig    `yaml:"adapters"`
	Score     ScoreConfig       `yaml:"score"`
	Owner     OwnerConfig       `yaml:"owner"`
	Overrides string            `yaml:"signal_overrides_path"`
	Domains   DomainListsConfig `yaml:"domain_lists"`
}

type HTTPConfig struct {
	TimeoutSeconds     float64 `yaml:"timeout_seconds"`
	MaxRetries         int     `yaml:"max_retries"`
	BackoffBaseSeconds float64 `yaml:"backoff_base_seconds"`
	BackoffMaxSeconds  float64 `yaml:"backoff_max_seconds"`
	RatePerHost        float64 `yaml:"rate_limit_per_host_per_second"`
	UserAgent          string  `yaml:"user_agent"`
}

type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Driver     string `yaml:"driver"`
	Path       string `yaml:"path"`
	DSN        string `yaml:"dsn"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type AdaptersConfig struct {
	Default    []string         `yaml:"default"`
	ScamDB     ScamDBConfig     `yaml:"scam_db"`
	DuckDuckGo ToggleConfig     `yaml:"duckduckgo"`
	Google     GoogleConfig     `yaml:"google"`
	Truecaller TruecallerConfig `yaml:"truecaller"`
}

type ToggleConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ScamDBConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DatasetPath string `yaml:"dataset_path"`
}

type GoogleConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	CX      string `yaml:"cx"`
}

type TruecallerConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

type ScoreConfig struct {
	Weights map[string]float64 `yaml:"weights"`
	Floor   float64            `yaml:"floor"`
	Ceiling float64            `yaml:"ceiling"`
}

type OwnerConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

// DomainListsConfig holds the marker lists for the domain heuristics.
// Matching is exact or suffix only, so behavior stays auditable.
type DomainListsConfig struct {
	Classifieds []string `yaml:"classifieds"`
	Business    []string `yaml:"business"`
}

// DefaultConfig returns the documented defaults. Unconfigured values fall
// back to these; configured-but-malformed values fail Load instead.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			TimeoutSeconds:     10,
			MaxRetries:         2,
			BackoffBaseSeconds: 0.5,
			BackoffMaxSeconds:  8,
			RatePerHost:        1,
			UserAgent:          "phonescope/0.1 (+https://example.invalid; lawful OSINT only)",
		},
		Deadline: 30,
		Cache: CacheConfig{
			Enabled:    true,
			Driver:     "sqlite",
			Path:       ".cache/phonescope.sqlite3",
			TTLSeconds: 3600,
		},
		Adapters: AdaptersConfig{
			Default:    []string{"scam_db", "duckduckgo"},
			ScamDB:     ScamDBConfig{Enabled: true},
			DuckDuckGo: ToggleConfig{Enabled: true},
		},
		Score: ScoreConfig{
			Weights: DefaultScoreWeights(),
			Floor:   0,
			Ceiling: 100,
		},
		Owner: OwnerConfig{Weights: DefaultOwnerWeights()},
		Domains: DomainListsConfig{
			Classifieds: []string{
				"craigslist.org",
				"gumtree.com",
				"olx.com",
				"kijiji.ca",
				"marktplaats.nl",
				"facebook.com/marketplace",
			},
			Business: []string{
				"yelp.com",
				"yellowpages.com",
				"bbb.org",
				"google.com/maps",
				"linkedin.com/company",
			},
		},
	}
}

// DefaultScoreWeights are conservative: positive raises risk, negative lowers
// it. The age term is weight per capped year since first mention.
func DefaultScoreWeights() map[string]float64 {
	return map[string]float64{
		"found_in_scam_db":              60,
		"voip":                          15,
		"found_in_classifieds":          15,
		"business_listing":              -10,
		"age_of_first_mention_per_year": -2,
	}
}

func DefaultOwnerWeights() map[string]float64 {
	return map[string]float64{
		"voip":             25,
		"business_listing": 15,
		"classified_ad":    10,
		"scam_report":      5,
		"pii_confirmed":    50,
		"multiple_sources": 10,
		"evidence_any":     5,
	}
}

// Load reads a YAML config over the defaults, expanding ${VAR} references so
// credentials stay out of the file. Validation is eager: a malformed
// configured value is fatal here, before any lookup runs.
func Load(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be positive")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.RatePerHost < 0 {
		return fmt.Errorf("http.rate_limit_per_host_per_second must be >= 0")
	}
	if c.Deadline <= 0 {
		return fmt.Errorf("deadline_seconds must be positive")
	}
	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case "sqlite":
			if c.Cache.Path == "" {
				return fmt.Errorf("cache.path is required when cache.driver is sqlite")
			}
		case "postgres":
			if c.Cache.DSN == "" {
				return fmt.Errorf("cache.dsn is required when cache.driver is postgres")
			}
		default:
			return fmt.Errorf("cache.driver must be sqlite or postgres, got %q", c.Cache.Driver)
		}
		if c.Cache.TTLSeconds <= 0 {
			return fmt.Errorf("cache.ttl_seconds must be positive when cache is enabled")
		}
	}
	if c.Adapters.Google.Enabled && (c.Adapters.Google.APIKey == "" || c.Adapters.Google.CX == "") {
		return fmt.Errorf("adapters.google.api_key and cx are required when google is enabled")
	}
	if c.Score.Ceiling <= c.Score.Floor {
		return fmt.Errorf("score.ceiling must be greater than score.floor")
	}
	for name := range c.Score.Weights {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("score.weights contains an empty signal name")
		}
	}
	return nil
}

// OverridesPath resolves the signal-override file, honoring the
// PHONESCOPE_SIGNAL_OVERRIDES redirect. An empty result means no overrides.
func (c Config) OverridesPath() string {
	if env := os.Getenv("PHONESCOPE_SIGNAL_OVERRIDES"); env != "" {
		return env
	}
	return c.Overrides
}

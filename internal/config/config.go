package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"phishscan/internal/reference"
)

type Config struct {
	SampleDir      string          `yaml:"sample_dir"`
	ReferenceDir   string          `yaml:"reference_dir"`
	Reference      reference.Paths `yaml:"reference"`
	TrustedDomains []string        `yaml:"trusted_domains"`
	ScoringProfile string          `yaml:"scoring_profile"`
	LogLevel       string          `yaml:"log_level"`
	LogFormat      string          `yaml:"log_format"`
	Output         string          `yaml:"output"`
	MoveFiles      bool            `yaml:"move_files"`
	QuarantineDir  string          `yaml:"quarantine_dir"`
	SpamDir        string          `yaml:"spam_dir"`
	CleanDir       string          `yaml:"clean_dir"`
}

// Load builds the configuration from defaults and environment variables.
func Load() Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFromFile reads a YAML file as the base layer; environment variables
// still take precedence.
func LoadFromFile(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadEnvFile exports the variables of a .env file that are not already
// set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ReferencePaths resolves every reference list file: the per-file setting
// when present, else the default name inside ReferenceDir.
func (c Config) ReferencePaths() reference.Paths {
	p := reference.DirPaths(c.ReferenceDir)
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&p.TrustedDomains, c.Reference.TrustedDomains)
	override(&p.SuspiciousPhrases, c.Reference.SuspiciousPhrases)
	override(&p.GenericLabels, c.Reference.GenericLabels)
	override(&p.BrandVariants, c.Reference.BrandVariants)
	override(&p.RiskyTLDs, c.Reference.RiskyTLDs)
	override(&p.DangerousExtensions, c.Reference.DangerousExtensions)
	return p
}

func defaults() Config {
	return Config{
		SampleDir:      "samples",
		ReferenceDir:   "reference",
		ScoringProfile: "strict",
		LogLevel:       "info",
		LogFormat:      "console",
		Output:         "text",
		QuarantineDir:  "quarantine",
		SpamDir:        "spam",
		CleanDir:       "clean",
	}
}

func (c *Config) applyEnv() {
	c.SampleDir = getEnv("SAMPLE_DIR", c.SampleDir)
	c.ReferenceDir = getEnv("REFERENCE_DIR", c.ReferenceDir)
	c.Reference.TrustedDomains = getEnv("TRUSTED_DOMAINS_FILE", c.Reference.TrustedDomains)
	c.Reference.SuspiciousPhrases = getEnv("SUSPICIOUS_PHRASES_FILE", c.Reference.SuspiciousPhrases)
	c.Reference.GenericLabels = getEnv("GENERIC_LABELS_FILE", c.Reference.GenericLabels)
	c.Reference.BrandVariants = getEnv("BRAND_VARIANTS_FILE", c.Reference.BrandVariants)
	c.Reference.RiskyTLDs = getEnv("RISKY_TLDS_FILE", c.Reference.RiskyTLDs)
	c.Reference.DangerousExtensions = getEnv("DANGEROUS_EXTENSIONS_FILE", c.Reference.DangerousExtensions)
	c.TrustedDomains = getList("TRUSTED_DOMAINS", c.TrustedDomains)
	c.ScoringProfile = strings.ToLower(getEnv("SCORING_PROFILE", c.ScoringProfile))
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", c.LogFormat))
	c.Output = strings.ToLower(getEnv("OUTPUT", c.Output))
	c.MoveFiles = getBool("MOVE_FILES", c.MoveFiles)
	c.QuarantineDir = getEnv("QUARANTINE_DIR", c.QuarantineDir)
	c.SpamDir = getEnv("SPAM_DIR", c.SpamDir)
	c.CleanDir = getEnv("CLEAN_DIR", c.CleanDir)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, strings.ToLower(p))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"SAMPLE_DIR", "REFERENCE_DIR", "SCORING_PROFILE", "OUTPUT", "MOVE_FILES", "TRUSTED_DOMAINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.SampleDir != "samples" || cfg.ReferenceDir != "reference" || cfg.ScoringProfile != "strict" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.MoveFiles {
		t.Error("files must not move by default")
	}
	if got := cfg.ReferencePaths().TrustedDomains; got != filepath.Join("reference", "trusted_domains.txt") {
		t.Errorf("trusted domains path: %q", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SAMPLE_DIR", "/var/mail/in")
	t.Setenv("SCORING_PROFILE", "LEGACY")
	t.Setenv("MOVE_FILES", "true")
	t.Setenv("TRUSTED_DOMAINS", " Example.ORG, ,corp.test ")
	t.Setenv("RISKY_TLDS_FILE", "/etc/phishscan/tlds.txt")

	cfg := Load()
	if cfg.SampleDir != "/var/mail/in" || cfg.ScoringProfile != "legacy" || !cfg.MoveFiles {
		t.Errorf("env not applied: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"example.org", "corp.test"}, cfg.TrustedDomains); diff != "" {
		t.Errorf("trusted domains mismatch (-want +got):\n%s", diff)
	}
	paths := cfg.ReferencePaths()
	if paths.RiskyTLDs != "/etc/phishscan/tlds.txt" {
		t.Errorf("per-file override ignored: %q", paths.RiskyTLDs)
	}
	if paths.BrandVariants != filepath.Join("reference", "impersonated_brand_keywords.txt") {
		t.Errorf("other paths should keep defaults: %q", paths.BrandVariants)
	}
}

func TestLoadBadBoolKeepsFallback(t *testing.T) {
	t.Setenv("MOVE_FILES", "sometimes")
	if Load().MoveFiles {
		t.Error("unparseable bool should keep the default")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("OUTPUT", "")
	t.Setenv("LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "phishscan.yaml")
	data := []byte(`
sample_dir: inbox
reference_dir: /opt/lists
output: json
log_level: warn
trusted_domains: [corp.test]
reference:
  dangerous_extensions: /opt/ext.txt
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.SampleDir != "inbox" || cfg.Output != "json" || cfg.CleanDir != "clean" {
		t.Errorf("yaml not applied over defaults: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("env should override yaml, got %q", cfg.LogLevel)
	}
	paths := cfg.ReferencePaths()
	if paths.DangerousExtensions != "/opt/ext.txt" || paths.TrustedDomains != filepath.Join("/opt/lists", "trusted_domains.txt") {
		t.Errorf("reference paths: %+v", paths)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sample_dir: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("PHISHSCAN_TEST_VALUE", "")
	os.Unsetenv("PHISHSCAN_TEST_VALUE")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PHISHSCAN_TEST_VALUE=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("PHISHSCAN_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("got %q", got)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}

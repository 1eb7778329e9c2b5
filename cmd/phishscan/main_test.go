package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"phishscan/internal/analyzer"
	"phishscan/internal/config"
	"phishscan/internal/email"
	"phishscan/internal/reference"
	"phishscan/internal/scoring"
)

func newAnalyzer(t *testing.T) *analyzer.Analyzer {
	t.Helper()
	lists, _ := reference.Load(reference.DirPaths("../../reference"), nil)
	return analyzer.New(analyzer.Options{Lists: lists})
}

func loadSamples(t *testing.T) map[string]email.Email {
	t.Helper()
	emails, err := email.LoadEmailsFromDir("../../samples")
	if err != nil {
		t.Fatalf("load samples: %v", err)
	}
	out := make(map[string]email.Email, len(emails))
	for _, em := range emails {
		out[em.ID] = em
	}
	return out
}

func TestSummarizeScorecard(t *testing.T) {
	a := newAnalyzer(t)
	samples := loadSamples(t)
	cfg := config.Config{Output: "text"}

	cases := []struct {
		id, decision string
	}{
		{"phish.eml", "FINAL DECISION: malicious"},
		{"ham.eml", "FINAL DECISION: safe"},
	}
	for _, tc := range cases {
		em, ok := samples[tc.id]
		if !ok {
			t.Fatalf("sample %s missing", tc.id)
		}
		var buf bytes.Buffer
		summarize(&buf, &em, cfg, a, zap.NewNop())
		out := buf.String()
		if !strings.Contains(out, tc.decision) {
			t.Errorf("%s: expected %q in output:\n%s", tc.id, tc.decision, out)
		}
		for _, want := range []string{"Email: " + tc.id, "----- EMAIL SCORECARD -----", "Detailed Breakdown:", "Reasons:"} {
			if !strings.Contains(out, want) {
				t.Errorf("%s: missing %q", tc.id, want)
			}
		}
		if _, err := os.Stat(em.Path); err != nil {
			t.Errorf("%s: sample should stay in place with moving off: %v", tc.id, err)
		}
	}
}

func TestSummarizeJSON(t *testing.T) {
	a := newAnalyzer(t)
	em := loadSamples(t)["phish.eml"]

	var buf bytes.Buffer
	summarize(&buf, &em, config.Config{Output: "json"}, a, zap.NewNop())

	var out struct {
		ID     string          `json:"id"`
		Status scoring.Status  `json:"status"`
		Report json.RawMessage `json:"report"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if out.ID != "phish.eml" || out.Status != scoring.StatusMalicious || len(out.Report) == 0 {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestSummarizeMovesByStatus(t *testing.T) {
	a := newAnalyzer(t)
	src := loadSamples(t)["phish.eml"]

	dir := t.TempDir()
	path := filepath.Join(dir, "phish.eml")
	if err := os.WriteFile(path, src.Raw, 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	em := email.Email{ID: "phish.eml", Path: path, Raw: src.Raw}
	cfg := config.Config{
		Output:        "text",
		MoveFiles:     true,
		CleanDir:      filepath.Join(dir, "clean"),
		QuarantineDir: filepath.Join(dir, "quarantine"),
		SpamDir:       filepath.Join(dir, "spam"),
	}

	var buf bytes.Buffer
	summarize(&buf, &em, cfg, a, zap.NewNop())

	if _, err := os.Stat(filepath.Join(cfg.SpamDir, "phish.eml")); err != nil {
		t.Errorf("expected message in spam dir: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected source to be moved, stat err = %v", err)
	}
}

package analyzer

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"phishscan/internal/email"
	"phishscan/internal/reference"
	"phishscan/internal/scoring"
)

func newAnalyzer(t *testing.T, opts Options) *Analyzer {
	t.Helper()
	lists, results := reference.Load(reference.DirPaths("../../reference"), nil)
	for _, r := range results {
		if r.Fallback() {
			t.Fatalf("reference list %s: %v", r.Path, r.Err)
		}
	}
	opts.Lists = lists
	return New(opts)
}

func TestAnalyzePhishSample(t *testing.T) {
	a := newAnalyzer(t, Options{})

	rep, err := a.Analyze(email.Path("../../samples/phish.eml"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	score := rep.Detection.Score
	if score.Verdict != scoring.VerdictMalicious || score.Score != scoring.OverrideScore || !score.Override {
		t.Errorf("phish sample score: %+v", score)
	}
	if score.Degraded {
		t.Errorf("unexpected degraded score: %s", score.Error)
	}
	if len(rep.Detection.ExtraFlags.DoubleExtension) != 1 {
		t.Errorf("double extension: %+v", rep.Detection.ExtraFlags.DoubleExtension)
	}
	if rep.Parsing.Headers.FromDomain != "paypa1-secure.xyz" {
		t.Errorf("from domain: %q", rep.Parsing.Headers.FromDomain)
	}
	if len(rep.Extraction.Attachments) != 1 || rep.Extraction.Attachments[0].Filename != "invoice.pdf.exe" {
		t.Errorf("extraction attachments: %+v", rep.Extraction.Attachments)
	}
	for _, l := range rep.Parsing.Body.Links {
		if strings.HasPrefix(l.Href, "#") || strings.HasPrefix(strings.ToLower(l.Href), "javascript:") {
			t.Errorf("pseudo link survived parsing: %+v", l)
		}
	}
}

func TestAnalyzeHamSample(t *testing.T) {
	a := newAnalyzer(t, Options{})

	raw, err := os.ReadFile("../../samples/ham.eml")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	rep, err := a.Analyze(raw)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if s := rep.Detection.Score; s.Score != 0 || s.Verdict != scoring.VerdictLow {
		t.Errorf("ham score: %+v", s)
	}
	if scoring.StatusFor(rep.Detection.Score.Verdict) != scoring.StatusSafe {
		t.Errorf("ham should be filed as safe")
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	a := newAnalyzer(t, Options{})
	raw, err := os.ReadFile("../../samples/phish.eml")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	first, err := a.Analyze(raw)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := a.Analyze(string(raw))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reports differ (-first +second):\n%s", diff)
	}
}

func TestAnalyzeConcurrent(t *testing.T) {
	a := newAnalyzer(t, Options{})
	raw, err := os.ReadFile("../../samples/phish.eml")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	want, _ := json.Marshal(a.AnalyzeBytes(raw))

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := json.Marshal(a.AnalyzeBytes(raw))
			if string(got) != string(want) {
				errs <- string(got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent report differs: %s", got)
	}
}

func TestAnalyzeUnsupportedSource(t *testing.T) {
	a := New(Options{})
	_, err := a.Analyze(42)
	if !errors.Is(err, email.ErrUnsupportedSourceType) {
		t.Fatalf("expected ErrUnsupportedSourceType, got %v", err)
	}
}

func TestAnalyzeMissingPath(t *testing.T) {
	a := New(Options{})
	if _, err := a.Analyze(email.Path("../../samples/missing.eml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestAnalyzeGarbageDegradesGracefully(t *testing.T) {
	a := New(Options{})
	rep, err := a.Analyze([]byte("\x00\x01 not an email \xff"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Detection.Score.Degraded {
		t.Errorf("garbage input should still score: %+v", rep.Detection.Score)
	}
	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("report should not contain null collections: %s", data)
	}
}

func TestAnalyzeScoringFailureIsVisible(t *testing.T) {
	a := New(Options{Profile: &scoring.Profile{Name: "broken"}})
	rep, err := a.Analyze("Subject: hi\r\n\r\nhello")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	s := rep.Detection.Score
	if !s.Degraded || s.Error == "" {
		t.Errorf("expected degraded score with cause, got %+v", s)
	}
	if s.Score != 0 || s.Verdict != scoring.VerdictLow || s.Detail.Len() != 0 {
		t.Errorf("fallback should be neutral: %+v", s)
	}
}

func TestReportJSONShape(t *testing.T) {
	a := newAnalyzer(t, Options{})
	rep, err := a.Analyze(email.Path("../../samples/phish.eml"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var shape map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"suspicious_links", "header_issues", "risky_attachments", "extra_flags", "score"} {
		if _, ok := shape["detection"][key]; !ok {
			t.Errorf("detection.%s missing", key)
		}
	}
	for _, key := range []string{"text_parts", "html_parts", "attachments", "raw_links", "raw_emails", "raw_ips"} {
		if _, ok := shape["extraction"][key]; !ok {
			t.Errorf("extraction.%s missing", key)
		}
	}
}

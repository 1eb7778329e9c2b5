package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestReadList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "list.txt", "# comment\n\n  Example.COM  \n   # indented comment\nother.test\n")

	res := ReadList(filepath.Join(dir, "list.txt"))
	if res.Fallback() {
		t.Fatalf("unexpected fallback: %v", res.Err)
	}
	if diff := cmp.Diff([]string{"example.com", "other.test"}, res.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestReadListMissing(t *testing.T) {
	res := ReadList(filepath.Join(t.TempDir(), "missing.txt"))
	if !res.Fallback() {
		t.Fatal("expected fallback for missing file")
	}
	if res.Entries == nil || len(res.Entries) != 0 {
		t.Errorf("expected empty entries, got %v", res.Entries)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, TrustedDomainsFile, "example.org\nEXAMPLE.org\n")
	writeFile(t, dir, RiskyTLDsFile, "xyz\n.top\n.XYZ\n")
	writeFile(t, dir, DangerousExtensionsFile, "exe\n.js\n")

	lists, results := Load(DirPaths(dir), nil)

	if diff := cmp.Diff([]string{"example.org"}, lists.TrustedDomains); diff != "" {
		t.Errorf("trusted mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{".xyz", ".top"}, lists.RiskyTLDs); diff != "" {
		t.Errorf("tlds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{".exe", ".js"}, lists.DangerousExtensions); diff != "" {
		t.Errorf("extensions mismatch (-want +got):\n%s", diff)
	}
	if len(lists.SuspiciousPhrases) != 0 || lists.SuspiciousPhrases == nil {
		t.Errorf("missing file should give empty list, got %v", lists.SuspiciousPhrases)
	}

	fallbacks := 0
	for _, r := range results {
		if r.Fallback() {
			fallbacks++
		}
	}
	if fallbacks != 3 {
		t.Errorf("expected 3 fallbacks, got %d", fallbacks)
	}
}

func TestLoadShippedLists(t *testing.T) {
	lists, results := Load(DirPaths("../../reference"), nil)
	for _, r := range results {
		if r.Fallback() {
			t.Errorf("shipped list %s failed to load: %v", r.Path, r.Err)
		}
	}
	if len(lists.TrustedDomains) == 0 || len(lists.DangerousExtensions) == 0 {
		t.Errorf("shipped lists unexpectedly empty: %+v", lists)
	}
}

func TestWithTrustedDomains(t *testing.T) {
	base := Lists{TrustedDomains: []string{"a.test"}}
	got := base.WithTrustedDomains(" B.test ", "a.test", "")
	if diff := cmp.Diff([]string{"a.test", "b.test"}, got.TrustedDomains); diff != "" {
		t.Errorf("merged mismatch (-want +got):\n%s", diff)
	}
	if len(base.TrustedDomains) != 1 {
		t.Errorf("base list mutated: %v", base.TrustedDomains)
	}
}

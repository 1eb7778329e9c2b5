// Package reference loads the static allow and deny lists the detectors
// consult. Missing or unreadable files degrade to empty lists.
package reference

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Default file names inside a reference directory.
const (
	TrustedDomainsFile      = "trusted_domains.txt"
	SuspiciousPhrasesFile   = "social_engineering_phrases.txt"
	GenericLabelsFile       = "anchor_phrases.txt"
	BrandVariantsFile       = "impersonated_brand_keywords.txt"
	RiskyTLDsFile           = "risky_top_level_domains.txt"
	DangerousExtensionsFile = "malicious_attachment_extensions.txt"
)

// Paths names the file backing each list. An empty path yields an empty list.
type Paths struct {
	TrustedDomains      string `yaml:"trusted_domains"`
	SuspiciousPhrases   string `yaml:"suspicious_phrases"`
	GenericLabels       string `yaml:"generic_labels"`
	BrandVariants       string `yaml:"brand_variants"`
	RiskyTLDs           string `yaml:"risky_tlds"`
	DangerousExtensions string `yaml:"dangerous_extensions"`
}

// DirPaths returns the default file layout under dir.
func DirPaths(dir string) Paths {
	return Paths{
		TrustedDomains:      filepath.Join(dir, TrustedDomainsFile),
		SuspiciousPhrases:   filepath.Join(dir, SuspiciousPhrasesFile),
		GenericLabels:       filepath.Join(dir, GenericLabelsFile),
		BrandVariants:       filepath.Join(dir, BrandVariantsFile),
		RiskyTLDs:           filepath.Join(dir, RiskyTLDsFile),
		DangerousExtensions: filepath.Join(dir, DangerousExtensionsFile),
	}
}

// Lists is the loaded reference data. All entries are lowercased; TLDs and
// extensions carry a leading dot. Treat the slices as read-only: one Lists
// value is shared by every analysis.
type Lists struct {
	TrustedDomains      []string
	SuspiciousPhrases   []string
	GenericLabels       []string
	BrandVariants       []string
	RiskyTLDs           []string
	DangerousExtensions []string
}

// Result is the outcome of reading one list file. Err is set when the file
// could not be read; Entries is then empty.
type Result struct {
	Path    string
	Entries []string
	Err     error
}

// Fallback reports whether the list degraded to empty because of an error.
func (r Result) Fallback() bool { return r.Err != nil }

// ReadList reads a newline-delimited list, skipping blank and "#" lines.
func ReadList(path string) Result {
	res := Result{Path: path, Entries: []string{}}
	if path == "" {
		res.Err = fmt.Errorf("no path configured")
		return res
	}
	f, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		entry := strings.TrimSpace(sc.Text())
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		res.Entries = append(res.Entries, strings.ToLower(entry))
	}
	if err := sc.Err(); err != nil {
		return Result{Path: path, Entries: []string{}, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return res
}

// Load reads every list. It never fails; the per-file results tell which
// lists fell back to empty, and each fallback is logged at warn level.
func Load(p Paths, logger *zap.Logger) (Lists, []Result) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := []Result{
		ReadList(p.TrustedDomains),
		ReadList(p.SuspiciousPhrases),
		ReadList(p.GenericLabels),
		ReadList(p.BrandVariants),
		ReadList(p.RiskyTLDs),
		ReadList(p.DangerousExtensions),
	}
	for _, r := range results {
		if r.Fallback() {
			logger.Warn("reference list could not be loaded; continuing with empty list",
				zap.String("path", r.Path), zap.Error(r.Err))
		}
	}
	lists := Lists{
		TrustedDomains:      dedupe(results[0].Entries),
		SuspiciousPhrases:   dedupe(results[1].Entries),
		GenericLabels:       dedupe(results[2].Entries),
		BrandVariants:       dedupe(results[3].Entries),
		RiskyTLDs:           dedupe(withLeadingDot(results[4].Entries)),
		DangerousExtensions: dedupe(withLeadingDot(results[5].Entries)),
	}
	return lists, results
}

// WithTrustedDomains returns a copy of l with extra trusted domains appended.
func (l Lists) WithTrustedDomains(domains ...string) Lists {
	merged := make([]string, 0, len(l.TrustedDomains)+len(domains))
	merged = append(merged, l.TrustedDomains...)
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			merged = append(merged, d)
		}
	}
	l.TrustedDomains = dedupe(merged)
	return l
}

func withLeadingDot(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func dedupe(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

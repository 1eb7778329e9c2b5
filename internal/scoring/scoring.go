// Package scoring reduces detection findings to a normalized 0-100 score and
// a verdict. Scoring is a pure function of its input.
package scoring

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"phishscan/internal/detection"
)

type Verdict string

const (
	VerdictLow       Verdict = "low"
	VerdictMedium    Verdict = "medium"
	VerdictHighRisk  Verdict = "high-risk"
	VerdictMalicious Verdict = "malicious"
)

// Status is the coarse label used to file a message.
type Status string

const (
	StatusSafe       Status = "safe"
	StatusSuspicious Status = "suspicious"
	StatusMalicious  Status = "malicious"
)

// OverrideScore is the score forced by the override rule.
const OverrideScore = 99.0

// Entry is one row of the score breakdown.
type Entry struct {
	Count    int `json:"count"`
	Weight   int `json:"weight"`
	Subtotal int `json:"subtotal"`
}

// Detail is the per-category breakdown in profile order. It marshals as a
// JSON object whose keys keep that order.
type Detail struct {
	keys    []string
	entries map[string]Entry
}

func (d *Detail) set(key string, e Entry) {
	if d.entries == nil {
		d.entries = map[string]Entry{}
	}
	if _, ok := d.entries[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.entries[key] = e
}

func (d Detail) Get(key string) (Entry, bool) {
	e, ok := d.entries[key]
	return e, ok
}

func (d Detail) Keys() []string { return append([]string(nil), d.keys...) }

func (d Detail) Len() int { return len(d.keys) }

// Equal reports whether both details hold the same entries in the same order.
func (d Detail) Equal(o Detail) bool {
	if len(d.keys) != len(o.keys) {
		return false
	}
	for i, k := range d.keys {
		if o.keys[i] != k || d.entries[k] != o.entries[k] {
			return false
		}
	}
	return true
}

func (d Detail) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Report is the score section of an analysis. Degraded marks a fallback
// report produced because scoring failed; Error then holds the cause.
type Report struct {
	Score    float64 `json:"score"`
	Verdict  Verdict `json:"verdict"`
	Detail   Detail  `json:"detail"`
	RawScore int     `json:"raw_score"`
	Profile  string  `json:"profile"`
	Override bool    `json:"override"`
	Degraded bool    `json:"degraded"`
	Error    string  `json:"error,omitempty"`
}

// Fallback is the neutral report used when scoring fails.
func Fallback(profile string, err error) Report {
	r := Report{Verdict: VerdictLow, Profile: profile, Degraded: true}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Score weighs every category of det under profile p.
func Score(det detection.Result, p Profile) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}

	counts := Counts(det, p)
	rep := Report{Profile: p.Name}
	for _, w := range p.Weights {
		n := counts[w.Key]
		sub := n * w.Weight
		rep.RawScore += sub
		rep.Detail.set(w.Key, Entry{Count: n, Weight: w.Weight, Subtotal: sub})
	}

	normalized := math.Min(100, float64(rep.RawScore)/p.MaxScore*100)
	if p.Override && HighRiskOverride(det, counts) {
		rep.Override = true
		rep.Score = OverrideScore
		rep.Verdict = VerdictMalicious
		return rep, nil
	}
	rep.Score = math.Round(normalized*100) / 100
	rep.Verdict = VerdictFor(normalized, p.Thresholds)
	return rep, nil
}

// Counts returns the finding count behind each score key, after the
// profile's filters.
func Counts(det detection.Result, p Profile) map[string]int {
	flags := det.ExtraFlags
	typos := flags.Typosquatting
	forgery := flags.HeaderForgery
	if p.Filter {
		typos = FilterTyposquats(typos, p.TrustedSuffixes)
		forgery = FilterAuthFailures(forgery)
	}
	return map[string]int{
		KeySuspiciousLinks:    len(det.SuspiciousLinks),
		KeyHeaderIssues:       len(det.HeaderIssues),
		KeyRiskyAttachments:   len(det.RiskyAttachments),
		KeyAnchorRedirect:     len(flags.AnchorRedirect),
		KeyTyposquatting:      len(typos),
		KeyDisplaySpoof:       len(flags.DisplaySpoof),
		KeyHeaderForgerySPF:   countMethod(forgery, detection.MethodSPF),
		KeyHeaderForgeryDKIM:  countMethod(forgery, detection.MethodDKIM),
		KeyHeaderForgeryDMARC: countMethod(forgery, detection.MethodDMARC),
		KeyDoubleExtension:    len(flags.DoubleExtension),
		KeyHTMLForms:          len(flags.HTMLForms),
		KeyClickableImages:    len(flags.ClickableImages),
		KeySocialEngineering:  len(flags.SocialEngineering),
		KeyBrandImpersonation: len(flags.BrandImpersonationVariants),
	}
}

// VerdictFor maps a normalized score to a verdict. Bounds are inclusive.
func VerdictFor(score float64, t Thresholds) Verdict {
	switch {
	case score >= t.Malicious:
		return VerdictMalicious
	case score >= t.HighRisk:
		return VerdictHighRisk
	case score >= t.Medium:
		return VerdictMedium
	}
	return VerdictLow
}

// StatusFor maps a verdict to a filing status. Unrecognized verdicts are
// treated as suspicious.
func StatusFor(v Verdict) Status {
	switch v {
	case VerdictLow:
		return StatusSafe
	case VerdictMedium, VerdictHighRisk:
		return StatusSuspicious
	case VerdictMalicious:
		return StatusMalicious
	}
	return StatusSuspicious
}

var (
	authFailTerms   = []string{"fail", "softfail", "permerror", "temperror"}
	authIgnoreTerms = []string{"none", "neutral"}
	execExtensions  = []string{".exe", ".js", ".scr", ".bat", ".cmd"}
)

// FilterAuthFailures keeps findings whose reason names a real failure and
// drops "none" and "neutral" results.
func FilterAuthFailures(in []detection.AuthFailure) []detection.AuthFailure {
	out := []detection.AuthFailure{}
	for _, f := range in {
		reason := strings.ToLower(f.Reason)
		if f.Method == "" || containsAny(reason, authIgnoreTerms) || !containsAny(reason, authFailTerms) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FilterTyposquats drops hits on .ms domains and on domains ending in one of
// the trusted suffixes.
func FilterTyposquats(in []detection.Typosquat, trusted []string) []detection.Typosquat {
	out := []detection.Typosquat{}
	for _, f := range in {
		domain := strings.ToLower(f.Domain)
		if domain == "" || domain == "ms" || strings.HasSuffix(domain, ".ms") || hasAnySuffix(domain, trusted) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// HighRiskOverride reports whether at least two strong signals co-occur.
func HighRiskOverride(det detection.Result, counts map[string]int) bool {
	failures := FilterAuthFailures(det.ExtraFlags.HeaderForgery)
	signals := []bool{
		counts[KeyDoubleExtension] > 0,
		hasExecutableAttachment(det.RiskyAttachments),
		counts[KeyHTMLForms] > 0,
		counts[KeyAnchorRedirect] > 0,
		countMethod(failures, detection.MethodSPF) > 0 && countMethod(failures, detection.MethodDKIM) > 0,
		counts[KeySuspiciousLinks] >= 4 && counts[KeySocialEngineering] >= 1,
	}
	n := 0
	for _, s := range signals {
		if s {
			n++
		}
	}
	return n >= 2
}

func hasExecutableAttachment(atts []detection.RiskyAttachment) bool {
	for _, a := range atts {
		if hasAnySuffix(strings.ToLower(a.Filename), execExtensions) {
			return true
		}
	}
	return false
}

func countMethod(fs []detection.AuthFailure, method string) int {
	n := 0
	for _, f := range fs {
		if f.Method == method {
			n++
		}
	}
	return n
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if suf != "" && strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

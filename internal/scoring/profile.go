package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Score table keys. Header forgery is split per protocol.
const (
	KeySuspiciousLinks    = "suspicious_links"
	KeyHeaderIssues       = "header_issues"
	KeyRiskyAttachments   = "risky_attachments"
	KeyAnchorRedirect     = "anchor_redirect"
	KeyTyposquatting      = "typosquatting"
	KeyDisplaySpoof       = "display_spoof"
	KeyHeaderForgerySPF   = "header_forgery_spf"
	KeyHeaderForgeryDKIM  = "header_forgery_dkim"
	KeyHeaderForgeryDMARC = "header_forgery_dmarc"
	KeyDoubleExtension    = "double_extension"
	KeyHTMLForms          = "html_forms"
	KeyClickableImages    = "clickable_images"
	KeySocialEngineering  = "social_engineering"
	KeyBrandImpersonation = "brand_impersonation_variants"
)

const (
	ProfileStrict = "strict"
	ProfileLegacy = "legacy"
)

var ErrUnknownProfile = errors.New("unknown scoring profile")

// Weight is one row of a score table.
type Weight struct {
	Key    string
	Weight int
}

// Thresholds are the low-inclusive lower bounds of each verdict.
type Thresholds struct {
	Malicious float64
	HighRisk  float64
	Medium    float64
}

// Profile is a named score table with its normalization and policies.
type Profile struct {
	Name       string
	Weights    []Weight
	MaxScore   float64
	Thresholds Thresholds
	// Filter drops non-failing auth results and trusted typosquat suffixes
	// before counting. Raw findings are left untouched.
	Filter bool
	// TrustedSuffixes exempt domains from typosquat counting when Filter is set.
	TrustedSuffixes []string
	// Override forces a malicious verdict when strong signals co-occur.
	Override bool
}

// Strict is the default profile: heavier weights for executable content,
// scoring-time filters and the override rule.
func Strict() Profile {
	weights := []Weight{
		{KeySuspiciousLinks, 2},
		{KeyHeaderIssues, 3},
		{KeyRiskyAttachments, 12},
		{KeyAnchorRedirect, 8},
		{KeyTyposquatting, 3},
		{KeyDisplaySpoof, 8},
		{KeyHeaderForgerySPF, 3},
		{KeyHeaderForgeryDKIM, 4},
		{KeyHeaderForgeryDMARC, 3},
		{KeyDoubleExtension, 12},
		{KeyHTMLForms, 8},
		{KeyClickableImages, 5},
		{KeySocialEngineering, 7},
		{KeyBrandImpersonation, 9},
	}
	return Profile{
		Name:            ProfileStrict,
		Weights:         weights,
		MaxScore:        float64(sumWeights(weights)) * 1.2,
		Thresholds:      Thresholds{Malicious: 60, HighRisk: 40, Medium: 20},
		Filter:          true,
		TrustedSuffixes: []string{"outlook.com", "office.com", "microsoft.com"},
		Override:        true,
	}
}

// Legacy is the earlier table: lighter weights, a larger normalization
// constant and no filters or override.
func Legacy() Profile {
	weights := []Weight{
		{KeySuspiciousLinks, 3},
		{KeyHeaderIssues, 2},
		{KeyRiskyAttachments, 5},
		{KeyAnchorRedirect, 4},
		{KeyTyposquatting, 4},
		{KeyDisplaySpoof, 5},
		{KeyHeaderForgerySPF, 3},
		{KeyHeaderForgeryDKIM, 4},
		{KeyHeaderForgeryDMARC, 2},
		{KeyDoubleExtension, 6},
		{KeyHTMLForms, 4},
		{KeyClickableImages, 3},
		{KeySocialEngineering, 4},
	}
	return Profile{
		Name:       ProfileLegacy,
		Weights:    weights,
		MaxScore:   float64(sumWeights(weights)*5) + 10,
		Thresholds: Thresholds{Malicious: 75, HighRisk: 55, Medium: 30},
	}
}

// ProfileByName resolves a profile name; empty means strict.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileStrict:
		return Strict(), nil
	case ProfileLegacy:
		return Legacy(), nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Validate reports whether p can score.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile has no name")
	}
	if len(p.Weights) == 0 {
		return fmt.Errorf("profile %s has no weights", p.Name)
	}
	if p.MaxScore <= 0 {
		return fmt.Errorf("profile %s: max score must be positive, got %v", p.Name, p.MaxScore)
	}
	t := p.Thresholds
	if !(t.Medium <= t.HighRisk && t.HighRisk <= t.Malicious) {
		return fmt.Errorf("profile %s: thresholds not monotonic: %+v", p.Name, t)
	}
	seen := map[string]bool{}
	for _, w := range p.Weights {
		if seen[w.Key] {
			return fmt.Errorf("profile %s: duplicate weight %q", p.Name, w.Key)
		}
		seen[w.Key] = true
	}
	return nil
}

func sumWeights(ws []Weight) int {
	total := 0
	for _, w := range ws {
		total += w.Weight
	}
	return total
}

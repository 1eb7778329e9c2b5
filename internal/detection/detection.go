// Package detection runs the heuristic detectors over a parsed message.
//
// Every detector is a pure function of the message and the reference lists.
// Detectors share no state, so the Battery runs them concurrently and then
// assembles their findings in a fixed category order.
package detection

import (
	"slices"

	"phishscan/internal/adversarial"
	"phishscan/internal/parsing"
	"phishscan/internal/reference"
)

// Category names a detection bucket. The values double as JSON keys.
type Category string

const (
	CategorySuspiciousLinks    Category = "suspicious_links"
	CategoryHeaderIssues       Category = "header_issues"
	CategoryRiskyAttachments   Category = "risky_attachments"
	CategoryAnchorRedirect     Category = "anchor_redirect"
	CategoryTyposquatting      Category = "typosquatting"
	CategoryDisplaySpoof       Category = "display_spoof"
	CategoryHeaderForgery      Category = "header_forgery"
	CategoryDoubleExtension    Category = "double_extension"
	CategoryHTMLForms          Category = "html_forms"
	CategoryClickableImages    Category = "clickable_images"
	CategorySocialEngineering  Category = "social_engineering"
	CategoryBrandImpersonation Category = "brand_impersonation_variants"
	CategoryRiskyTLDs          Category = "risky_tlds"
	CategoryObfuscation        Category = "obfuscation"
)

// Finding is one hit from one detector.
type Finding interface {
	Category() Category
	// Code is the machine-readable reason, e.g. "double_extension".
	Code() string
}

// Message is the detector input: the parser output plus the raw addresses the
// extractor found anywhere in the message.
type Message struct {
	Parsed    parsing.Result
	RawEmails []string
}

// Detector is implemented by every variant in the battery.
type Detector interface {
	Name() string
	Detect(msg *Message, lists *reference.Lists) []Finding
}

// Rules are the fixed tables detectors consult alongside the reference lists.
// Build them with DefaultRules; the battery keeps its own copy.
type Rules struct {
	// BrandKeywords trigger display-name spoofing when the sender domain
	// lacks all of them.
	BrandKeywords []string
	// Homoglyphs are Cyrillic and Greek look-alikes of Latin letters.
	Homoglyphs []rune
	// NumericDigits are digits commonly swapped in for letters.
	NumericDigits []rune
	// DoubleExtensions are final extensions, without dot, that are dangerous
	// behind an innocuous one.
	DoubleExtensions []string
	// DangerousExtensions apply when the reference list is empty.
	DangerousExtensions []string
	// MaxAttachmentSize in bytes; larger attachments are risky.
	MaxAttachmentSize int
	// SnippetLength bounds social-engineering snippets, in runes.
	SnippetLength int
	// MaxInvisibleRatio is the obfuscation threshold.
	MaxInvisibleRatio float64
}

func DefaultRules() Rules {
	return Rules{
		BrandKeywords: []string{"paypal", "apple", "microsoft"},
		Homoglyphs: []rune{
			'\u0430', // Cyrillic a
			'\u0435', // Cyrillic e
			'\u0456', // Cyrillic i
			'\u03BF', // Greek omicron
			'\u0440', // Cyrillic p
			'\u0455', // Cyrillic s
			'\u0443', // Cyrillic y
		},
		NumericDigits:       []rune{'0', '1', '3', '5'},
		DoubleExtensions:    []string{"exe", "scr", "js", "bat", "cmd"},
		DangerousExtensions: []string{".exe", ".scr", ".js", ".vbs", ".bat", ".cmd", ".com", ".apk", ".jar"},
		MaxAttachmentSize:   10 * 1024 * 1024,
		SnippetLength:       120,
		MaxInvisibleRatio:   adversarial.DefaultMaxInvisibleRatio,
	}
}

func (r Rules) clone() Rules {
	r.BrandKeywords = slices.Clone(r.BrandKeywords)
	r.Homoglyphs = slices.Clone(r.Homoglyphs)
	r.NumericDigits = slices.Clone(r.NumericDigits)
	r.DoubleExtensions = slices.Clone(r.DoubleExtensions)
	r.DangerousExtensions = slices.Clone(r.DangerousExtensions)
	return r
}

// Detectors returns the closed set of detectors in report order.
func Detectors(rules Rules) []Detector {
	return []Detector{
		suspiciousLinks{},
		headerInconsistency{},
		attachmentRisk{rules: rules},
		anchorRedirect{},
		typosquatting{rules: rules},
		displaySpoof{rules: rules},
		headerForgery{},
		doubleExtension{rules: rules},
		htmlForms{},
		clickableImages{},
		socialEngineering{rules: rules},
		brandImpersonation{},
		riskyTLDs{},
		obfuscation{rules: rules},
	}
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

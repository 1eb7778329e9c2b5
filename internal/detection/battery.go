package detection

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"phishscan/internal/reference"
)

// Result is the detection section of a report. Every slice is non-nil so the
// JSON form always carries each key.
type Result struct {
	SuspiciousLinks  []SuspiciousLink  `json:"suspicious_links"`
	HeaderIssues     []HeaderIssue     `json:"header_issues"`
	RiskyAttachments []RiskyAttachment `json:"risky_attachments"`
	ExtraFlags       ExtraFlags        `json:"extra_flags"`
}

type ExtraFlags struct {
	AnchorRedirect             []AnchorRedirect     `json:"anchor_redirect"`
	Typosquatting              []Typosquat          `json:"typosquatting"`
	DisplaySpoof               []DisplaySpoof       `json:"display_spoof"`
	HeaderForgery              []AuthFailure        `json:"header_forgery"`
	DoubleExtension            []DoubleExtension    `json:"double_extension"`
	HTMLForms                  []HTMLForm           `json:"html_forms"`
	ClickableImages            []ClickableImage     `json:"clickable_images"`
	SocialEngineering          []SocialEngineering  `json:"social_engineering"`
	BrandImpersonationVariants []BrandImpersonation `json:"brand_impersonation_variants"`
	RiskyTLDs                  []RiskyTLD           `json:"risky_tlds"`
	Obfuscation                []Obfuscation        `json:"obfuscation"`
}

// NewResult returns a Result with every collection empty.
func NewResult() Result {
	return Result{
		SuspiciousLinks:  []SuspiciousLink{},
		HeaderIssues:     []HeaderIssue{},
		RiskyAttachments: []RiskyAttachment{},
		ExtraFlags: ExtraFlags{
			AnchorRedirect:             []AnchorRedirect{},
			Typosquatting:              []Typosquat{},
			DisplaySpoof:               []DisplaySpoof{},
			HeaderForgery:              []AuthFailure{},
			DoubleExtension:            []DoubleExtension{},
			HTMLForms:                  []HTMLForm{},
			ClickableImages:            []ClickableImage{},
			SocialEngineering:          []SocialEngineering{},
			BrandImpersonationVariants: []BrandImpersonation{},
			RiskyTLDs:                  []RiskyTLD{},
			Obfuscation:                []Obfuscation{},
		},
	}
}

// Add files f under its category.
func (r *Result) Add(f Finding) {
	switch f := f.(type) {
	case SuspiciousLink:
		r.SuspiciousLinks = append(r.SuspiciousLinks, f)
	case HeaderIssue:
		r.HeaderIssues = append(r.HeaderIssues, f)
	case RiskyAttachment:
		r.RiskyAttachments = append(r.RiskyAttachments, f)
	case AnchorRedirect:
		r.ExtraFlags.AnchorRedirect = append(r.ExtraFlags.AnchorRedirect, f)
	case Typosquat:
		r.ExtraFlags.Typosquatting = append(r.ExtraFlags.Typosquatting, f)
	case DisplaySpoof:
		r.ExtraFlags.DisplaySpoof = append(r.ExtraFlags.DisplaySpoof, f)
	case AuthFailure:
		r.ExtraFlags.HeaderForgery = append(r.ExtraFlags.HeaderForgery, f)
	case DoubleExtension:
		r.ExtraFlags.DoubleExtension = append(r.ExtraFlags.DoubleExtension, f)
	case HTMLForm:
		r.ExtraFlags.HTMLForms = append(r.ExtraFlags.HTMLForms, f)
	case ClickableImage:
		r.ExtraFlags.ClickableImages = append(r.ExtraFlags.ClickableImages, f)
	case SocialEngineering:
		r.ExtraFlags.SocialEngineering = append(r.ExtraFlags.SocialEngineering, f)
	case BrandImpersonation:
		r.ExtraFlags.BrandImpersonationVariants = append(r.ExtraFlags.BrandImpersonationVariants, f)
	case RiskyTLD:
		r.ExtraFlags.RiskyTLDs = append(r.ExtraFlags.RiskyTLDs, f)
	case Obfuscation:
		r.ExtraFlags.Obfuscation = append(r.ExtraFlags.Obfuscation, f)
	}
}

// Count returns the number of findings in cat.
func (r Result) Count(cat Category) int {
	switch cat {
	case CategorySuspiciousLinks:
		return len(r.SuspiciousLinks)
	case CategoryHeaderIssues:
		return len(r.HeaderIssues)
	case CategoryRiskyAttachments:
		return len(r.RiskyAttachments)
	case CategoryAnchorRedirect:
		return len(r.ExtraFlags.AnchorRedirect)
	case CategoryTyposquatting:
		return len(r.ExtraFlags.Typosquatting)
	case CategoryDisplaySpoof:
		return len(r.ExtraFlags.DisplaySpoof)
	case CategoryHeaderForgery:
		return len(r.ExtraFlags.HeaderForgery)
	case CategoryDoubleExtension:
		return len(r.ExtraFlags.DoubleExtension)
	case CategoryHTMLForms:
		return len(r.ExtraFlags.HTMLForms)
	case CategoryClickableImages:
		return len(r.ExtraFlags.ClickableImages)
	case CategorySocialEngineering:
		return len(r.ExtraFlags.SocialEngineering)
	case CategoryBrandImpersonation:
		return len(r.ExtraFlags.BrandImpersonationVariants)
	case CategoryRiskyTLDs:
		return len(r.ExtraFlags.RiskyTLDs)
	case CategoryObfuscation:
		return len(r.ExtraFlags.Obfuscation)
	}
	return 0
}

// Battery runs a fixed set of detectors. It is safe for concurrent use.
type Battery struct {
	detectors []Detector
	logger    *zap.Logger
}

func New(rules Rules, logger *zap.Logger) *Battery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Battery{detectors: Detectors(rules.clone()), logger: logger}
}

// Detectors returns the battery's detectors in report order.
func (b *Battery) Detectors() []Detector {
	return append([]Detector(nil), b.detectors...)
}

// Run executes every detector concurrently. Findings are assembled in
// detector order whatever the completion order. A detector that panics
// contributes nothing; the returned error names it while the Result still
// holds every other detector's findings.
func (b *Battery) Run(msg *Message, lists *reference.Lists) (Result, error) {
	if lists == nil {
		lists = &reference.Lists{}
	}
	slots := make([][]Finding, len(b.detectors))

	var g errgroup.Group
	for i, d := range b.detectors {
		i, d := i, d
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("detector %s panicked: %v", d.Name(), r)
				}
			}()
			slots[i] = d.Detect(msg, lists)
			return nil
		})
	}
	err := g.Wait()

	res := NewResult()
	for i, findings := range slots {
		for _, f := range findings {
			res.Add(f)
		}
		if len(findings) > 0 {
			b.logger.Debug("detector fired", zap.String("detector", b.detectors[i].Name()), zap.Int("findings", len(findings)))
		}
	}
	return res, err
}

package recommendation

import (
	"fmt"
	"strings"

	"phishscan/internal/detection"
	"phishscan/internal/parsing"
	"phishscan/internal/scoring"
)

type Scorecard struct {
	Status        scoring.Status
	Verdict       scoring.Verdict
	DecisionScore float64 // 0 (clean) - 100 (phishing)
	Details       ResultDetails
	Reasons       []string
}

type ResultDetails struct {
	SPF        string
	DKIM       string
	DMARC      string
	FromDomain string
	Profile    string
	Degraded   bool
}

// Build compiles a scorecard from the analysis stages of one message.
func Build(parsed parsing.Result, det detection.Result, score scoring.Report) Scorecard {
	sc := Scorecard{
		Status:        scoring.StatusFor(score.Verdict),
		Verdict:       score.Verdict,
		DecisionScore: score.Score,
		Details: ResultDetails{
			SPF:        authSummary(parsed.Auth, "spf"),
			DKIM:       authSummary(parsed.Auth, "dkim"),
			DMARC:      authSummary(parsed.Auth, "dmarc"),
			FromDomain: parsed.Headers.FromDomain,
			Profile:    score.Profile,
			Degraded:   score.Degraded,
		},
		Reasons: []string{},
	}

	if score.Degraded {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Scoring unavailable, verdict defaulted: %s", score.Error))
	}
	if score.Override {
		sc.Reasons = append(sc.Reasons, "SECURITY ALERT: several high-confidence phishing signals co-occur")
	}

	flags := det.ExtraFlags
	for _, f := range flags.DoubleExtension {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Executable disguised behind a second extension: %s", f.Filename))
	}
	for _, f := range det.RiskyAttachments {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Risky attachment: %s", f.Filename))
	}
	for _, f := range flags.AnchorRedirect {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Link text shows %s but points to %s", f.DisplayDomain, f.URLDomain))
	}
	for _, f := range flags.HeaderForgery {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("%s check failed", strings.ToUpper(f.Method)))
	}
	for _, f := range flags.DisplaySpoof {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Display name %q impersonates a brand not sent from %s", f.DisplayName, f.Domain))
	}
	for _, f := range flags.BrandImpersonationVariants {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Brand look-alike %q in display name", f.Variant))
	}
	if n := len(flags.HTMLForms); n > 0 {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("HTML form embedded in message (%d)", n))
	}
	if n := len(det.SuspiciousLinks); n > 0 {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Links to untrusted domains (%d)", n))
	}
	if len(det.HeaderIssues) > 0 {
		sc.Reasons = append(sc.Reasons, "From, Return-Path and Reply-To domains disagree")
	}
	for _, f := range flags.Typosquatting {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Look-alike domain %s (%s)", f.Domain, f.Reason))
	}
	for _, f := range flags.RiskyTLDs {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Link on risky TLD .%s: %s", f.TLD, f.Domain))
	}
	if n := len(flags.ClickableImages); n > 0 {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Clickable images (%d)", n))
	}
	for _, f := range flags.SocialEngineering {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("Pressure language: %q", f.Phrase))
	}
	if len(flags.Obfuscation) > 0 {
		sc.Reasons = append(sc.Reasons, "High obfuscation detected (invisible characters)")
	}

	if len(sc.Reasons) == 0 {
		sc.Reasons = append(sc.Reasons, "No negative indicators found")
	}
	return sc
}

// authSummary returns the first recorded result for method, uppercased, or
// NONE when the receiving server recorded nothing.
func authSummary(auth parsing.AuthResult, method string) string {
	for _, r := range auth.Results {
		if r.Method == method && r.Value != "" {
			return strings.ToUpper(r.Value)
		}
	}
	return "NONE"
}

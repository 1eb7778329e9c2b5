package detection

import (
	"strings"

	"golang.org/x/net/idna"

	"phishscan/internal/parsing"
	"phishscan/internal/reference"
)

// headerInconsistency flags messages whose From, Return-Path and Reply-To
// domains disagree.
type headerInconsistency struct{}

func (headerInconsistency) Name() string { return "header_issues" }

func (headerInconsistency) Detect(msg *Message, _ *reference.Lists) []Finding {
	if len(stringSet(msg.Parsed.Headers.Domains())) > 1 {
		return []Finding{HeaderIssue(ReasonHeaderDomainMismatch)}
	}
	return nil
}

// Failure vocabularies per protocol. DKIM has no soft or neutral states, and
// a DMARC policy of "none" is not a failure.
var (
	spfFailures   = []string{"fail", "softfail", "none", "neutral", "permerror", "temperror"}
	dkimFailures  = []string{"fail", "permerror", "temperror"}
	dmarcFailures = []string{"fail"}
)

const absentAuth = "none"

// headerForgery reads the raw authentication header text. An absent header
// reads as "none", which only SPF treats as a failure. At most one finding per
// protocol.
type headerForgery struct{}

func (headerForgery) Name() string { return "header_forgery" }

func (headerForgery) Detect(msg *Message, _ *reference.Lists) []Finding {
	auth := msg.Parsed.Auth
	var out []Finding
	for _, c := range []struct {
		method, header string
		failures       []string
	}{
		{MethodSPF, auth.SPF, spfFailures},
		{MethodDKIM, auth.DKIM, dkimFailures},
		{MethodDMARC, auth.DMARC, dmarcFailures},
	} {
		v := strings.ToLower(c.header)
		if v == "" {
			v = absentAuth
		}
		if containsAny(v, c.failures) {
			out = append(out, AuthFailure{Method: c.method, Result: "failure", Reason: v})
		}
	}
	return out
}

// displaySpoof flags a display name that invokes a brand the sender domain
// does not carry.
type displaySpoof struct{ rules Rules }

func (displaySpoof) Name() string { return "display_spoof" }

func (d displaySpoof) Detect(msg *Message, _ *reference.Lists) []Finding {
	id := msg.Parsed.Headers
	name := displayName(id)
	domain := strings.ToLower(id.FromDomain)
	if name == "" || domain == "" {
		return nil
	}
	if containsAny(strings.ToLower(name), d.rules.BrandKeywords) && !containsAny(domain, d.rules.BrandKeywords) {
		return []Finding{DisplaySpoof{DisplayName: name, Domain: domain, Reason: ReasonDisplayNameSpoofing}}
	}
	return nil
}

// brandImpersonation emits one finding per lookalike variant present in the
// display name but absent from the sender domain.
type brandImpersonation struct{}

func (brandImpersonation) Name() string { return "brand_impersonation_variants" }

func (brandImpersonation) Detect(msg *Message, lists *reference.Lists) []Finding {
	id := msg.Parsed.Headers
	name := strings.ToLower(displayName(id))
	domain := strings.ToLower(id.FromDomain)
	if name == "" {
		return nil
	}

	var out []Finding
	seen := map[string]struct{}{}
	for _, v := range lists.BrandVariants {
		v = strings.ToLower(v)
		if _, dup := seen[v]; dup || v == "" {
			continue
		}
		seen[v] = struct{}{}
		if strings.Contains(name, v) && !strings.Contains(domain, v) {
			out = append(out, BrandImpersonation{DisplayName: name, Domain: domain, Variant: v, Reason: ReasonBrandImpersonation})
		}
	}
	return out
}

// typosquatting checks every domain seen in the message for look-alike
// glyphs and for digits standing in for letters. Both checks may fire.
type typosquatting struct{ rules Rules }

func (typosquatting) Name() string { return "typosquatting" }

func (d typosquatting) Detect(msg *Message, _ *reference.Lists) []Finding {
	var out []Finding
	for _, domain := range TyposquatCandidates(msg) {
		if d.hasHomoglyph(domain) || d.hasHomoglyph(decodePunycode(domain)) {
			out = append(out, Typosquat{Domain: domain, Reason: ReasonUnicodeHomograph})
		}
		if strings.ContainsAny(domain, string(d.rules.NumericDigits)) {
			out = append(out, Typosquat{Domain: domain, Reason: ReasonNumericTyposquat})
		}
	}
	return out
}

func (d typosquatting) hasHomoglyph(domain string) bool {
	return strings.ContainsAny(domain, string(d.rules.Homoglyphs))
}

// TyposquatCandidates returns the lowercased domains of every extracted
// address followed by the sender domains, without duplicates.
func TyposquatCandidates(msg *Message) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(d string) {
		if d == "" {
			return
		}
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	for _, addr := range msg.RawEmails {
		if _, domain, ok := strings.Cut(addr, "@"); ok {
			add(strings.ToLower(domain))
		}
	}
	for _, d := range msg.Parsed.Headers.Domains() {
		add(d)
	}
	return out
}

// decodePunycode renders xn-- labels as Unicode. Undecodable input is
// returned as is.
func decodePunycode(domain string) string {
	if !strings.Contains(domain, "xn--") {
		return domain
	}
	decoded, err := idna.ToUnicode(domain)
	if err != nil {
		return domain
	}
	return decoded
}

// displayName prefers the From display name and falls back to the address.
func displayName(id parsing.Identity) string {
	if name := strings.TrimSpace(id.FromName); name != "" {
		return name
	}
	return id.From
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

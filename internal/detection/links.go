package detection

import (
	"strings"

	"phishscan/internal/parsing"
	"phishscan/internal/reference"
)

// suspiciousLinks flags links whose host is neither trusted nor one of the
// message's own sender domains.
type suspiciousLinks struct{}

func (suspiciousLinks) Name() string { return "suspicious_links" }

func (suspiciousLinks) Detect(msg *Message, lists *reference.Lists) []Finding {
	allowed := stringSet(lists.TrustedDomains)
	for _, d := range msg.Parsed.Headers.Domains() {
		allowed[strings.ToLower(d)] = struct{}{}
	}

	var out []Finding
	for _, link := range msg.Parsed.Body.Links {
		domain := strings.ToLower(strings.TrimSpace(link.AbsoluteDomain))
		if domain == "" {
			continue
		}
		if _, ok := allowed[domain]; ok {
			continue
		}
		out = append(out, SuspiciousLink{Link: linkTarget(link), Text: link.Text, Reason: ReasonDomainNotAllowed})
	}
	return out
}

// anchorRedirect flags anchors whose visible text names one domain while the
// href points at another. Generic call-to-action labels are skipped.
type anchorRedirect struct{}

func (anchorRedirect) Name() string { return "anchor_redirect" }

func (anchorRedirect) Detect(msg *Message, lists *reference.Lists) []Finding {
	generic := stringSet(lists.GenericLabels)

	var out []Finding
	for _, link := range msg.Parsed.Body.Links {
		text := strings.TrimSpace(link.Text)
		url := strings.TrimSpace(link.Absolute)
		if text == "" || url == "" {
			continue
		}
		if _, ok := generic[strings.ToLower(text)]; ok {
			continue
		}
		textDomain := strings.ToLower(strings.TrimSpace(link.TextDomain))
		urlDomain := strings.ToLower(strings.TrimSpace(link.AbsoluteDomain))
		if textDomain == "" || urlDomain == "" || textDomain == urlDomain {
			continue
		}
		out = append(out, AnchorRedirect{
			DisplayText:   text,
			URL:           url,
			DisplayDomain: textDomain,
			URLDomain:     urlDomain,
			Reason:        ReasonAnchorRedirect,
		})
	}
	return out
}

// riskyTLDs flags links whose final host label is on the risky TLD list.
type riskyTLDs struct{}

func (riskyTLDs) Name() string { return "risky_tlds" }

func (riskyTLDs) Detect(msg *Message, lists *reference.Lists) []Finding {
	risky := make(map[string]struct{}, len(lists.RiskyTLDs))
	for _, tld := range lists.RiskyTLDs {
		if tld = strings.TrimLeft(tld, "."); tld != "" {
			risky[tld] = struct{}{}
		}
	}
	if len(risky) == 0 {
		return nil
	}

	var out []Finding
	for _, link := range msg.Parsed.Body.Links {
		domain := strings.ToLower(link.AbsoluteDomain)
		i := strings.LastIndex(domain, ".")
		if i < 0 {
			continue
		}
		tld := domain[i+1:]
		if _, ok := risky[tld]; ok {
			out = append(out, RiskyTLD{Link: linkTarget(link), Domain: domain, TLD: tld, Reason: ReasonRiskyTLD})
		}
	}
	return out
}

func linkTarget(link parsing.Link) string {
	if link.Absolute != "" {
		return link.Absolute
	}
	return link.Href
}

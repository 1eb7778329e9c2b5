package parsing

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"phishscan/internal/email"
	"phishscan/internal/htmltext"
)

// Link is a canonicalized anchor. Only anchors with a scheme or a host
// survive canonicalization.
type Link struct {
	Href           string `json:"href"`
	Absolute       string `json:"absolute"`
	Text           string `json:"text"`
	AbsoluteDomain string `json:"absolute_domain"`
	TextDomain     string `json:"text_domain"`
}

// Body holds trimmed text bodies, raw html markup and the canonical links
// found in that markup.
type Body struct {
	Text  []string `json:"text"`
	HTML  []string `json:"html"`
	Links []Link   `json:"links"`
}

var (
	textDomainPattern = regexp.MustCompile(`[a-z0-9.-]+\.[a-z]{2,}`)
	schemePattern     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)
)

func ParseBody(parts []email.Part) Body {
	body := Body{Text: []string{}, HTML: []string{}, Links: []Link{}}
	for _, p := range parts {
		switch p.Kind {
		case email.KindText:
			body.Text = append(body.Text, strings.TrimSpace(p.Text))
		case email.KindHTML:
			body.HTML = append(body.HTML, p.HTML)
			htmltext.Document(p.HTML).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				if link, ok := CanonicalLink(href, htmltext.Selection(a)); ok {
					body.Links = append(body.Links, link)
				}
			})
		}
	}
	return body
}

// CanonicalLink resolves an anchor into a Link. It reports false for empty
// hrefs, fragments, javascript: pseudo-links and relative references that
// name neither a scheme nor a host.
func CanonicalLink(href, text string) (Link, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return Link{}, false
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "#") || strings.HasPrefix(lower, "javascript:") {
		return Link{}, false
	}
	scheme, netloc, _ := splitURL(href)
	if scheme == "" && netloc == "" {
		return Link{}, false
	}

	absolute := Unquote(href)
	_, _, hostname := splitURL(absolute)
	return Link{
		Href:           href,
		Absolute:       absolute,
		Text:           text,
		AbsoluteDomain: hostname,
		TextDomain:     TextDomain(text),
	}, true
}

// TextDomain returns the first domain-shaped token of visible text.
func TextDomain(text string) string {
	return textDomainPattern.FindString(strings.ToLower(text))
}

// splitURL returns scheme, network location and lowercased hostname. Strings
// net/url rejects are split by hand so that a malformed host still yields
// something to compare.
func splitURL(s string) (scheme, netloc, hostname string) {
	if u, err := url.Parse(s); err == nil {
		netloc = u.Host
		if u.User != nil {
			netloc = u.User.String() + "@" + u.Host
		}
		return u.Scheme, netloc, strings.ToLower(u.Hostname())
	}

	rest := s
	if m := schemePattern.FindString(s); m != "" {
		scheme = strings.ToLower(strings.TrimSuffix(m, ":"))
		rest = s[len(m):]
	}
	if !strings.HasPrefix(rest, "//") {
		return scheme, "", ""
	}
	rest = rest[2:]
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	netloc = rest
	host := rest
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if strings.HasPrefix(host, "[") {
		if i := strings.Index(host, "]"); i > 0 {
			host = host[1:i]
		}
	} else if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return scheme, netloc, strings.ToLower(host)
}

// Unquote percent-decodes s, leaving malformed escapes as they are.
func Unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// Package extract pulls raw artifacts (links, addresses, IPs) out of a
// decomposed message.
package extract

import (
	"regexp"

	"phishscan/internal/email"
	"phishscan/internal/htmltext"
)

var (
	URLPattern   = regexp.MustCompile(`(?i)https?://[^\s<>'"()]+`)
	EmailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	IPPattern    = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// AttachmentRef is what extraction records about an attachment. The payload
// is never scanned.
type AttachmentRef struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// Artifacts is the raw extraction output for one message.
type Artifacts struct {
	TextParts   []string        `json:"text_parts"`
	HTMLParts   []string        `json:"html_parts"`
	Attachments []AttachmentRef `json:"attachments"`
	RawLinks    []string        `json:"raw_links"`
	RawEmails   []string        `json:"raw_emails"`
	RawIPs      []string        `json:"raw_ips"`
}

func Links(text string) []string  { return findAll(URLPattern, text) }
func Emails(text string) []string { return findAll(EmailPattern, text) }
func IPs(text string) []string    { return findAll(IPPattern, text) }

func findAll(re *regexp.Regexp, text string) []string {
	if text == "" {
		return nil
	}
	return re.FindAllString(text, -1)
}

// Extract scans header values, text bodies and the visible text of html
// bodies. Hits are deduplicated in first-seen order.
func Extract(msg email.RawMessage) Artifacts {
	out := Artifacts{
		TextParts:   []string{},
		HTMLParts:   []string{},
		Attachments: []AttachmentRef{},
	}
	links := newOrderedSet()
	emails := newOrderedSet()
	ips := newOrderedSet()

	scan := func(text string) {
		links.add(Links(text)...)
		emails.add(Emails(text)...)
		ips.add(IPs(text)...)
	}

	for _, v := range msg.Headers.Values() {
		scan(v)
	}

	for _, p := range msg.Parts {
		switch p.Kind {
		case email.KindText:
			out.TextParts = append(out.TextParts, p.Text)
			scan(p.Text)
		case email.KindHTML:
			out.HTMLParts = append(out.HTMLParts, p.HTML)
			scan(htmltext.Visible(p.HTML))
		case email.KindAttachment:
			out.Attachments = append(out.Attachments, AttachmentRef{
				Filename:    p.Filename,
				ContentType: p.ContentType,
			})
		}
	}

	out.RawLinks = links.items
	out.RawEmails = emails.items
	out.RawIPs = ips.items
	return out
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(values ...string) {
	for _, v := range values {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

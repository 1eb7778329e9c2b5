package email

import (
	"bufio"
	"bytes"
	"mime"
	"net/textproto"
	"sort"
	"strings"

	"github.com/jhillyerd/enmime"
)

// Kind tags the variant held by a Part.
type Kind string

const (
	KindText       Kind = "text"
	KindHTML       Kind = "html"
	KindAttachment Kind = "attachment"
)

// Part is one leaf of the MIME tree. Only the fields that belong to its Kind
// are set: Text for text, HTML for html, the rest for attachments.
type Part struct {
	Kind        Kind
	Text        string
	HTML        string
	Filename    string
	ContentType string
	Payload     []byte
}

// Headers maps canonical header names to their last value while remembering
// the order in which names first appeared.
type Headers struct {
	keys   []string
	values map[string]string
}

// NewHeaders builds Headers from alternating name, value pairs. It is meant
// for callers and tests that assemble headers by hand.
func NewHeaders(pairs ...string) Headers {
	h := Headers{values: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.set(pairs[i], pairs[i+1])
	}
	return h
}

func (h *Headers) set(name, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	key := textproto.CanonicalMIMEHeaderKey(name)
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value of name, or "" when absent.
func (h Headers) Get(name string) string {
	return h.values[textproto.CanonicalMIMEHeaderKey(name)]
}

// Lookup reports whether name is present.
func (h Headers) Lookup(name string) (string, bool) {
	v, ok := h.values[textproto.CanonicalMIMEHeaderKey(name)]
	return v, ok
}

// Keys returns header names in first-seen order.
func (h Headers) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Values returns header values in first-seen key order.
func (h Headers) Values() []string {
	out := make([]string, 0, len(h.keys))
	for _, k := range h.keys {
		out = append(out, h.values[k])
	}
	return out
}

func (h Headers) Len() int { return len(h.keys) }

// RawMessage is a decomposed message: its headers and its content leaves.
type RawMessage struct {
	Headers Headers
	Parts   []Part
}

var wordDecoder = new(mime.WordDecoder)

// Decompose splits raw message bytes into headers and typed parts. It never
// fails: input that does not open with a header field, or that enmime cannot
// read, becomes a single text part holding the whole input.
func Decompose(raw []byte) (msg RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			msg = headerless(raw)
		}
	}()

	if len(raw) == 0 {
		return RawMessage{Headers: NewHeaders()}
	}
	if !startsWithField(raw) {
		return headerless(raw)
	}
	root, err := enmime.ReadParts(bytes.NewReader(raw))
	if err != nil || root == nil {
		return headerless(raw)
	}

	msg.Headers = collectHeaders(raw, root.Header)
	if root.FirstChild == nil {
		msg.Parts = singlePart(root, raw)
		return msg
	}
	walkLeaves(root, func(p *enmime.Part) {
		if part, ok := classifyLeaf(p); ok {
			msg.Parts = append(msg.Parts, part)
		}
	})
	return msg
}

// headerless keeps the whole input as a text/plain body with no headers.
func headerless(raw []byte) RawMessage {
	msg := RawMessage{Headers: NewHeaders()}
	if len(raw) > 0 {
		msg.Parts = []Part{{Kind: KindText, Text: string(raw)}}
	}
	return msg
}

// startsWithField reports whether the first line is a header field: a name of
// printable ASCII other than ":" and space, then a colon. A blank first line
// is an empty header block and also counts.
func startsWithField(raw []byte) bool {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return true
	}
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return false
	}
	for _, c := range line[:colon] {
		if c < 33 || c > 126 {
			return false
		}
	}
	return true
}

// rawBody returns the bytes after the first blank line.
func rawBody(raw []byte) []byte {
	crlf := bytes.Index(raw, []byte("\r\n\r\n"))
	lf := bytes.Index(raw, []byte("\n\n"))
	switch {
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return raw[crlf+4:]
	case lf >= 0:
		return raw[lf+2:]
	}
	return nil
}

// collectHeaders orders header names by their first line in the raw header
// block. Names the scan missed are appended sorted.
func collectHeaders(raw []byte, header textproto.MIMEHeader) Headers {
	h := NewHeaders()
	seen := make(map[string]bool)
	for _, name := range headerOrder(raw) {
		if seen[name] {
			continue
		}
		seen[name] = true
		vals := header[name]
		if len(vals) == 0 {
			continue
		}
		h.set(name, decodeHeader(vals[len(vals)-1]))
	}
	var rest []string
	for name := range header {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		vals := header[name]
		if len(vals) == 0 {
			continue
		}
		h.set(name, decodeHeader(vals[len(vals)-1]))
	}
	return h
}

func headerOrder(raw []byte) []string {
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			continue
		}
		names = append(names, textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(line[:i])))
	}
	return names
}

func decodeHeader(v string) string {
	decoded, err := wordDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

func walkLeaves(p *enmime.Part, fn func(*enmime.Part)) {
	for ; p != nil; p = p.NextSibling {
		if p.FirstChild == nil {
			fn(p)
			continue
		}
		walkLeaves(p.FirstChild, fn)
	}
}

func contentType(p *enmime.Part) string {
	ct := strings.ToLower(strings.TrimSpace(p.ContentType))
	if ct == "" {
		return "text/plain"
	}
	return ct
}

func classifyLeaf(p *enmime.Part) (Part, bool) {
	ct := contentType(p)
	if strings.EqualFold(p.Disposition, "attachment") || p.FileName != "" {
		return attachmentPart(p, ct), true
	}
	switch ct {
	case "text/plain":
		return Part{Kind: KindText, Text: string(p.Content)}, true
	case "text/html":
		return Part{Kind: KindHTML, HTML: string(p.Content)}, true
	}
	return Part{}, false
}

// singlePart keeps the body of a non-multipart message whatever its type.
// When enmime left the content empty, as for a multipart type without a
// boundary, the undecoded body is used.
func singlePart(p *enmime.Part, raw []byte) []Part {
	if len(p.Content) == 0 {
		if body := rawBody(raw); len(body) > 0 {
			p.Content = body
		}
	}
	switch ct := contentType(p); ct {
	case "text/plain":
		return []Part{{Kind: KindText, Text: string(p.Content)}}
	case "text/html":
		return []Part{{Kind: KindHTML, HTML: string(p.Content)}}
	default:
		return []Part{attachmentPart(p, ct)}
	}
}

func attachmentPart(p *enmime.Part, ct string) Part {
	payload := p.Content
	if payload == nil {
		payload = []byte{}
	}
	return Part{
		Kind:        KindAttachment,
		Filename:    p.FileName,
		ContentType: ct,
		Payload:     payload,
	}
}

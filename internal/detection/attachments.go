package detection

import (
	"strings"

	"phishscan/internal/reference"
)

type attachmentRisk struct{ rules Rules }

func (attachmentRisk) Name() string { return "risky_attachments" }

func (d attachmentRisk) Detect(msg *Message, lists *reference.Lists) []Finding {
	exts := lists.DangerousExtensions
	if len(exts) == 0 {
		exts = d.rules.DangerousExtensions
	}
	bad := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		bad[strings.ToLower(e)] = struct{}{}
	}

	var out []Finding
	for _, att := range msg.Parsed.Attachments {
		_, risky := bad[Ext(strings.ToLower(att.Filename))]
		if risky || att.Size > d.rules.MaxAttachmentSize {
			out = append(out, RiskyAttachment{Filename: att.Filename, Size: att.Size, Reason: ReasonRiskyAttachment})
		}
	}
	return out
}

// doubleExtension flags names like "invoice.pdf.exe": a dangerous final
// extension behind an innocuous one.
type doubleExtension struct{ rules Rules }

func (doubleExtension) Name() string { return "double_extension" }

func (d doubleExtension) Detect(msg *Message, _ *reference.Lists) []Finding {
	dangerous := stringSet(d.rules.DoubleExtensions)

	var out []Finding
	for _, att := range msg.Parsed.Attachments {
		name := strings.ToLower(att.Filename)
		segments := strings.Split(name, ".")
		if len(segments) < 3 {
			continue
		}
		last, prev := segments[len(segments)-1], segments[len(segments)-2]
		_, lastBad := dangerous[last]
		_, prevBad := dangerous[prev]
		if lastBad && !prevBad {
			out = append(out, DoubleExtension{Filename: name, Reason: ReasonDoubleExtension})
		}
	}
	return out
}

// Ext returns the extension of the final path element, including the dot.
// Leading dots do not start an extension, so ".profile" has none.
func Ext(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.TrimLeft(name[:i], ".") == "" {
		return ""
	}
	return name[i:]
}

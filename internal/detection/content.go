package detection

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"phishscan/internal/adversarial"
	"phishscan/internal/htmltext"
	"phishscan/internal/reference"
)

// htmlForms emits one finding per html part that contains a form.
type htmlForms struct{}

func (htmlForms) Name() string { return "html_forms" }

func (htmlForms) Detect(msg *Message, _ *reference.Lists) []Finding {
	var out []Finding
	for _, markup := range msg.Parsed.Body.HTML {
		forms := htmltext.Document(markup).Find("form")
		if forms.Length() == 0 {
			continue
		}
		action, _ := forms.First().Attr("action")
		out = append(out, HTMLForm{Action: strings.TrimSpace(action), Reason: ReasonHTMLForm})
	}
	return out
}

// clickableImages emits one finding per anchor wrapping an image.
type clickableImages struct{}

func (clickableImages) Name() string { return "clickable_images" }

func (clickableImages) Detect(msg *Message, _ *reference.Lists) []Finding {
	var out []Finding
	for _, markup := range msg.Parsed.Body.HTML {
		htmltext.Document(markup).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			if a.Find("img").Length() == 0 {
				return
			}
			href, _ := a.Attr("href")
			out = append(out, ClickableImage{Link: href, Reason: ReasonClickableImage})
		})
	}
	return out
}

// socialEngineering matches the phrase list against each text body.
type socialEngineering struct{ rules Rules }

func (socialEngineering) Name() string { return "social_engineering" }

func (d socialEngineering) Detect(msg *Message, lists *reference.Lists) []Finding {
	var out []Finding
	for _, text := range msg.Parsed.Body.Text {
		lowered := strings.ToLower(text)
		for _, phrase := range lists.SuspiciousPhrases {
			if phrase == "" || !strings.Contains(lowered, strings.ToLower(phrase)) {
				continue
			}
			out = append(out, SocialEngineering{
				Phrase:  phrase,
				Snippet: truncateRunes(text, d.rules.SnippetLength),
				Reason:  ReasonSocialEngineering,
			})
			break
		}
	}
	return out
}

// obfuscation flags text bodies and rendered html padded with invisible
// characters. It carries no scoring weight.
type obfuscation struct{ rules Rules }

func (obfuscation) Name() string { return "obfuscation" }

func (d obfuscation) Detect(msg *Message, _ *reference.Lists) []Finding {
	var out []Finding
	check := func(part string, i int, text string) {
		res := adversarial.Check(text, d.rules.MaxInvisibleRatio)
		if res.IsAdversarial {
			out = append(out, Obfuscation{Part: part, Index: i, Invisible: res.Invisible, Total: res.Total, Reason: ReasonInvisibleCharacters})
		}
	}
	for i, text := range msg.Parsed.Body.Text {
		check("text", i, text)
	}
	for i, markup := range msg.Parsed.Body.HTML {
		check("html", i, htmltext.Visible(markup))
	}
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Package htmltext renders the human-visible text of HTML fragments.
package htmltext

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document parses markup leniently. x/net/html never rejects input, so the
// error path only triggers on reader failures; an empty document is returned
// then so callers can query it unconditionally.
func Document(markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

// Visible returns the visible text of markup: tags stripped, entities
// decoded, text runs joined by a single space. A non-breaking space inside a
// run is kept; at either end of a run it is trimmed like other whitespace.
func Visible(markup string) string {
	doc := Document(markup)
	return Nodes(doc.Nodes...)
}

// Selection returns the visible text below every node in sel.
func Selection(sel *goquery.Selection) string {
	return Nodes(sel.Nodes...)
}

// Nodes returns the visible text below the given nodes.
func Nodes(nodes ...*html.Node) string {
	var chunks []string
	for _, n := range nodes {
		collect(n, &chunks)
	}
	return strings.Join(chunks, " ")
}

func collect(n *html.Node, chunks *[]string) {
	switch n.Type {
	case html.TextNode:
		if s := collapse(n.Data); s != "" {
			*chunks = append(*chunks, s)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template, atom.Noscript:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, chunks)
	}
}

// collapse squeezes HTML whitespace runs to one space and trims the ends.
func collapse(s string) string {
	s = strings.Join(strings.FieldsFunc(s, isHTMLSpace), " ")
	return strings.TrimFunc(s, unicode.IsSpace)
}

func isHTMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

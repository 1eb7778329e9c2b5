package parsing

import (
	"net/mail"
	"strings"

	"phishscan/internal/email"
)

// Identity holds the sender addresses and their domains. Empty strings mean
// absent; a domain is only set when both sides of the "@" are non-empty.
type Identity struct {
	From         string `json:"from"`
	FromName     string `json:"from_name"`
	FromDomain   string `json:"from_domain"`
	ReturnPath   string `json:"return_path"`
	ReturnDomain string `json:"return_domain"`
	ReplyTo      string `json:"reply_to"`
	ReplyDomain  string `json:"reply_domain"`
}

// Domains returns the non-empty sender domains in From, Return-Path,
// Reply-To order.
func (id Identity) Domains() []string {
	var out []string
	for _, d := range []string{id.FromDomain, id.ReturnDomain, id.ReplyDomain} {
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

func ParseIdentity(h email.Headers) Identity {
	fromName, from := splitAddress(h.Get("From"))
	_, returnPath := splitAddress(h.Get("Return-Path"))
	_, replyTo := splitAddress(h.Get("Reply-To"))
	return Identity{
		From:         from,
		FromName:     fromName,
		FromDomain:   Domain(from),
		ReturnPath:   returnPath,
		ReturnDomain: Domain(returnPath),
		ReplyTo:      replyTo,
		ReplyDomain:  Domain(replyTo),
	}
}

// Domain returns the lowercased part after the first "@", or "" when either
// side is empty.
func Domain(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" || domain == "" {
		return ""
	}
	return strings.ToLower(domain)
}

// splitAddress separates display name and address. Headers net/mail rejects
// fall back to the text inside angle brackets, or the first token holding "@".
func splitAddress(raw string) (name, addr string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if a, err := mail.ParseAddress(raw); err == nil {
		return a.Name, a.Address
	}
	if list, err := mail.ParseAddressList(raw); err == nil && len(list) > 0 {
		return list[0].Name, list[0].Address
	}
	if open := strings.LastIndex(raw, "<"); open >= 0 {
		if end := strings.Index(raw[open:], ">"); end > 0 {
			name = strings.Trim(strings.TrimSpace(raw[:open]), `"`)
			return name, strings.TrimSpace(raw[open+1 : open+end])
		}
	}
	for _, tok := range strings.Fields(raw) {
		if strings.Contains(tok, "@") {
			return "", strings.Trim(tok, `<>"',;`)
		}
	}
	return "", ""
}

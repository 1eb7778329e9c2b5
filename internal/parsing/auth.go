package parsing

import (
	"strings"

	"github.com/emersion/go-msgauth/authres"

	"phishscan/internal/email"
)

// AuthResult is the unverified authentication header text. Nothing here is
// checked cryptographically or against DNS.
type AuthResult struct {
	SPF       string `json:"spf"`
	DKIM      string `json:"dkim"`
	DMARC     string `json:"dmarc"`
	MessageID string `json:"message_id"`
	Subject   string `json:"subject"`
	Date      string `json:"date"`

	// Results are the method=value pairs recorded by receiving servers in
	// Authentication-Results. Informational only.
	Results []MethodResult `json:"results"`
}

// MethodResult is one entry of an Authentication-Results header.
type MethodResult struct {
	Method string `json:"method"`
	Value  string `json:"value"`
	Reason string `json:"reason,omitempty"`
}

// Each protocol reads the first non-empty header of its chain.
var (
	spfHeaders   = []string{"Received-SPF", "Authentication-Results"}
	dkimHeaders  = []string{"DKIM-Signature", "X-DKIM-Result"}
	dmarcHeaders = []string{"DMARC-Filter", "Authentication-Results"}
)

func ParseAuth(h email.Headers) AuthResult {
	return AuthResult{
		SPF:       firstHeader(h, spfHeaders),
		DKIM:      firstHeader(h, dkimHeaders),
		DMARC:     firstHeader(h, dmarcHeaders),
		MessageID: h.Get("Message-ID"),
		Subject:   h.Get("Subject"),
		Date:      h.Get("Date"),
		Results:   parseResults(h.Get("Authentication-Results")),
	}
}

func firstHeader(h email.Headers, names []string) string {
	for _, n := range names {
		if v := h.Get(n); v != "" {
			return v
		}
	}
	return ""
}

func parseResults(v string) []MethodResult {
	out := []MethodResult{}
	if strings.TrimSpace(v) == "" {
		return out
	}
	_, results, err := authres.Parse(v)
	if err != nil {
		return out
	}
	for _, r := range results {
		switch r := r.(type) {
		case *authres.SPFResult:
			out = append(out, MethodResult{Method: "spf", Value: string(r.Value), Reason: r.Reason})
		case *authres.DKIMResult:
			out = append(out, MethodResult{Method: "dkim", Value: string(r.Value), Reason: r.Reason})
		case *authres.DMARCResult:
			out = append(out, MethodResult{Method: "dmarc", Value: string(r.Value), Reason: r.Reason})
		case *authres.AuthResult:
			out = append(out, MethodResult{Method: "auth", Value: string(r.Value), Reason: r.Reason})
		case *authres.IPRevResult:
			out = append(out, MethodResult{Method: "iprev", Value: string(r.Value), Reason: r.Reason})
		case *authres.GenericResult:
			out = append(out, MethodResult{Method: r.Method, Value: string(r.Value)})
		}
	}
	return out
}

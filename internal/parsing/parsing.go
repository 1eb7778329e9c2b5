// Package parsing normalizes a decomposed message into the structured
// records the detectors consume.
package parsing

import "phishscan/internal/email"

// Result groups the four parser outputs for one message.
type Result struct {
	Headers     Identity     `json:"headers"`
	Auth        AuthResult   `json:"auth"`
	Body        Body         `json:"body"`
	Attachments []Attachment `json:"attachments"`
}

// Parse runs the identity, auth, body and attachment parsers. The parsers are
// independent of each other and never fail.
func Parse(msg email.RawMessage) Result {
	return Result{
		Headers:     ParseIdentity(msg.Headers),
		Auth:        ParseAuth(msg.Headers),
		Body:        ParseBody(msg.Parts),
		Attachments: ParseAttachments(msg.Parts),
	}
}

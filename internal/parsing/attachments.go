package parsing

import (
	"crypto/sha256"
	"encoding/hex"

	"phishscan/internal/email"
)

// Attachment is the content-addressed metadata of one attachment.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	SHA256      string `json:"sha256"`
}

func ParseAttachments(parts []email.Part) []Attachment {
	out := []Attachment{}
	for _, p := range parts {
		if p.Kind != email.KindAttachment {
			continue
		}
		out = append(out, Attachment{
			Filename:    p.Filename,
			ContentType: p.ContentType,
			Size:        len(p.Payload),
			SHA256:      SHA256Hex(p.Payload),
		})
	}
	return out
}

// SHA256Hex returns the lowercase hex digest of data. Empty input hashes to
// the well-known empty digest.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package email

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jaytaylor/html2text"
)

// ErrUnsupportedSourceType is returned by Load for inputs it cannot turn into bytes.
var ErrUnsupportedSourceType = errors.New("unsupported email source type")

// UnsupportedSourceError names the Go type that Load rejected.
type UnsupportedSourceError struct {
	Type string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedSourceType, e.Type)
}

func (e *UnsupportedSourceError) Is(target error) bool {
	return target == ErrUnsupportedSourceType
}

// Path is a filesystem location that is always read from disk.
type Path string

// Email is one message picked up from a sample directory.
type Email struct {
	ID   string
	Path string
	Raw  []byte
}

// Load normalizes a message source into raw bytes.
//
// A []byte passes through. A string naming an existing regular file is read
// from disk, any other string is the literal message. A Path is always read.
// An io.Reader is drained.
func Load(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		if info, err := os.Stat(v); err == nil && info.Mode().IsRegular() {
			return os.ReadFile(v)
		}
		return []byte(v), nil
	case Path:
		raw, err := os.ReadFile(string(v))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", v, err)
		}
		return raw, nil
	case io.Reader:
		raw, err := io.ReadAll(v)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		if raw == nil {
			raw = []byte{}
		}
		return raw, nil
	default:
		return nil, &UnsupportedSourceError{Type: fmt.Sprintf("%T", src)}
	}
}

func LoadEmailsFromDir(dir string) ([]Email, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var emails []Email
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".eml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		emails = append(emails, Email{ID: entry.Name(), Path: path, Raw: raw})
	}
	return emails, nil
}

// BodyPreview returns the first text body, or the first html body rendered to
// plain text, cut to max runes.
func BodyPreview(msg RawMessage, max int) string {
	var text string
	for _, p := range msg.Parts {
		if p.Kind == KindText && strings.TrimSpace(p.Text) != "" {
			text = p.Text
			break
		}
	}
	if text == "" {
		for _, p := range msg.Parts {
			if p.Kind != KindHTML {
				continue
			}
			rendered, err := html2text.FromString(p.HTML, html2text.Options{OmitLinks: true})
			if err == nil {
				text = rendered
				break
			}
		}
	}
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > max {
		return string(r[:max]) + "…"
	}
	return text
}

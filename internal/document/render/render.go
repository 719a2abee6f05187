// Package render turns the editable source of an internal document into the
// immutable bytes that get hashed, signed and served. The rendition is
// deterministic: the same source and signature block always produce the same
// bytes, which is what makes integrity verification possible at all.
package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	dErrors "tramita/pkg/domain-errors"
)

// SignatureBlock is the attestation appended to a document at signing time.
// It deliberately excludes the verification code: the code is derived from
// the final bytes, so it cannot appear inside them.
type SignatureBlock struct {
	SignerName string
	SignerRole string
	SignedAt   time.Time
	VerifyURL  string
}

// Renderer produces the final byte rendition of an internal document.
type Renderer interface {
	Render(source string) ([]byte, error)
	RenderSigned(source string, block SignatureBlock) ([]byte, error)
}

// TextRenderer renders HTML source to plain text: tags stripped, entities
// left alone, whitespace collapsed per line. Good enough for hashing and for
// the verification page; a future PDF renderer can replace it behind the
// same interface.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer { return &TextRenderer{} }

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func (r *TextRenderer) Render(source string) ([]byte, error) {
	if strings.TrimSpace(source) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document source is empty")
	}
	text := tagPattern.ReplaceAllString(source, "")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	out := strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
	return []byte(out), nil
}

func (r *TextRenderer) RenderSigned(source string, block SignatureBlock) ([]byte, error) {
	body, err := r.Render(source)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.Write(body)
	b.WriteString("\n----------------------------------------\n")
	fmt.Fprintf(&b, "Digitally signed by %s", block.SignerName)
	if block.SignerRole != "" {
		fmt.Fprintf(&b, " (%s)", block.SignerRole)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Signed at %s\n", block.SignedAt.UTC().Format(time.RFC3339))
	if block.VerifyURL != "" {
		fmt.Fprintf(&b, "Verify authenticity at %s\n", block.VerifyURL)
	}
	return []byte(b.String()), nil
}

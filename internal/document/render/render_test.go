package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "tramita/pkg/domain-errors"
)

type RenderSuite struct {
	suite.Suite
	renderer *TextRenderer
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderSuite))
}

func (s *RenderSuite) SetupTest() {
	s.renderer = NewTextRenderer()
}

func (s *RenderSuite) TestRender() {
	s.Run("strips tags and normalizes trailing whitespace", func() {
		out, err := s.renderer.Render("<h1>Title</h1>\n<p>Body text.  </p>\n")
		s.Require().NoError(err)
		s.Equal("Title\nBody text.\n", string(out))
	})

	s.Run("is deterministic", func() {
		first, err := s.renderer.Render("<p>same input</p>")
		s.Require().NoError(err)
		second, err := s.renderer.Render("<p>same input</p>")
		s.Require().NoError(err)
		s.Equal(first, second)
	})

	s.Run("rejects empty source", func() {
		_, err := s.renderer.Render("   ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RenderSuite) TestRenderSigned() {
	signedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	s.Run("appends the attestation block", func() {
		out, err := s.renderer.RenderSigned("<p>Approved.</p>", SignatureBlock{
			SignerName: "Ana Souza",
			SignerRole: "director",
			SignedAt:   signedAt,
			VerifyURL:  "https://tramita.example.org/verify",
		})
		s.Require().NoError(err)
		s.Contains(string(out), "Approved.")
		s.Contains(string(out), "Digitally signed by Ana Souza (director)")
		s.Contains(string(out), "2026-03-10T12:00:00Z")
		s.Contains(string(out), "https://tramita.example.org/verify")
	})

	s.Run("differs from the unsigned rendition", func() {
		unsigned, err := s.renderer.Render("<p>Approved.</p>")
		s.Require().NoError(err)
		signed, err := s.renderer.RenderSigned("<p>Approved.</p>", SignatureBlock{
			SignerName: "Ana Souza",
			SignedAt:   signedAt,
		})
		s.Require().NoError(err)
		s.NotEqual(unsigned, signed)
	})
}

// Package markdown renders AI output (which the models emit as markdown) to
// sanitized HTML and cuts the teaser shown before an account is created.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/unicode/norm"
)

type Service interface {
	ToHTMLSanitized(markdown string) (string, error)
	Teaser(markdown string, maxRunes int) string
}

type service struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewService() Service {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span", "pre")

	return &service{md: md, policy: policy}
}

func (s *service) ToHTMLSanitized(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return s.policy.Sanitize(buf.String()), nil
}

// Teaser returns at most maxRunes runes of content, preferring to cut at the
// last paragraph break, then the last line break, before the limit. Content
// is NFC-normalised first so the cut never splits a combining sequence.
func (s *service) Teaser(content string, maxRunes int) string {
	content = strings.TrimSpace(norm.NFC.String(content))
	if maxRunes <= 0 || content == "" {
		return ""
	}
	if utf8.RuneCountInString(content) <= maxRunes {
		return content
	}

	cut := string([]rune(content)[:maxRunes])
	for _, sep := range []string{"\n\n", "\n"} {
		if i := strings.LastIndex(cut, sep); i > len(cut)/2 {
			return strings.TrimSpace(cut[:i])
		}
	}
	return strings.TrimSpace(cut) + "…"
}

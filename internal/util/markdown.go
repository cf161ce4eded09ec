package util

import (
	"bytes"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer renders user-authored markdown. Raw HTML in the source is
// dropped because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts an event description to HTML
func RenderMarkdown(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

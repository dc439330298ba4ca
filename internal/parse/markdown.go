// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

// MarkdownParser handles documents converted by text-based backends. It
// renders the Markdown to HTML with goldmark and reuses the HTML walker,
// so image syntax and any embedded img tags are inventoried the same way.
type MarkdownParser struct{}

func (p *MarkdownParser) Name() string { return "markdown" }

// md keeps raw HTML blocks: converter output embeds img tags directly.
var md = goldmark.New(
	goldmark.WithRendererOptions(ghtml.WithUnsafe()),
)

// Parse builds the figure inventory for one Markdown document.
func (p *MarkdownParser) Parse(docID string, r io.Reader) (types.ParseResult, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return types.ParseResult{}, fmt.Errorf("reading markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return types.ParseResult{}, fmt.Errorf("rendering markdown: %w", err)
	}

	return (&HTMLParser{}).Parse(docID, &buf)
}

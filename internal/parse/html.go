// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

// partNumberRe matches transistor-style part numbers: JEDEC 2N/1N series
// ("2N7002"), Pro Electron ("BC547B"), and vendor prefixes ("TIP120",
// "IRF540N", "MMBT3904").
var partNumberRe = regexp.MustCompile(`\b(?:[12]N[0-9]{3,5}|[A-Z]{2,4}[0-9]{2,5})[A-Z]{0,2}\b`)

// pageCommentRe matches page markers carried through conversion as HTML
// comments: <!-- page 3 -->.
var pageCommentRe = regexp.MustCompile(`^\s*page\s+(\d+)\s*$`)

// HTMLParser walks converted HTML and collects img, figure, and object
// references with their captions and surrounding context.
type HTMLParser struct{}

func (p *HTMLParser) Name() string { return "html" }

// blockAtoms are the elements that advance the block counter used for
// candidate pairing distance.
var blockAtoms = map[atom.Atom]bool{
	atom.P:      true,
	atom.H1:     true,
	atom.H2:     true,
	atom.H3:     true,
	atom.H4:     true,
	atom.H5:     true,
	atom.H6:     true,
	atom.Table:  true,
	atom.Ul:     true,
	atom.Ol:     true,
	atom.Pre:    true,
	atom.Figure: true,
}

// htmlWalk carries traversal state through the document tree.
type htmlWalk struct {
	docID   string
	section string
	page    int
	block   int
	result  types.ParseResult
}

// Parse builds the figure inventory for one HTML document.
func (p *HTMLParser) Parse(docID string, r io.Reader) (types.ParseResult, error) {
	root, err := html.Parse(r)
	if err != nil {
		return types.ParseResult{}, fmt.Errorf("parsing HTML: %w", err)
	}

	w := &htmlWalk{docID: docID, result: types.ParseResult{DocID: docID}}
	w.visit(root)
	return w.result, nil
}

func (w *htmlWalk) visit(n *html.Node) {
	switch n.Type {
	case html.CommentNode:
		if m := pageCommentRe.FindStringSubmatch(n.Data); m != nil {
			w.page, _ = strconv.Atoi(m[1])
		}
		return

	case html.ElementNode:
		if blockAtoms[n.DataAtom] {
			w.block++
		}

		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3:
			w.section = strings.TrimSpace(textContent(n))

		case atom.Script, atom.Style:
			return

		case atom.Figure:
			w.addFigure(figureImage(n), figureCaption(n))
			// Caption text still gets the part scan below.

		case atom.Img:
			if !insideFigure(n) {
				w.addFigure(n, "")
			}
			return

		case atom.Object:
			if data := attrVal(n, "data"); data != "" {
				w.result.Figures = append(w.result.Figures, types.Figure{
					DocID:   w.docID,
					Index:   len(w.result.Figures),
					Source:  data,
					Section: w.section,
					Page:    w.page,
					Block:   w.block,
				})
			}
			return
		}

	case html.TextNode:
		w.scanParts(n.Data)
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}
}

// addFigure records an image element as a Figure. img may be nil for a
// figure element without an image child, in which case only a caption-only
// entry with an empty source would result and it is dropped.
func (w *htmlWalk) addFigure(img *html.Node, caption string) {
	fig := types.Figure{
		DocID:   w.docID,
		Index:   len(w.result.Figures),
		Caption: caption,
		Section: w.section,
		Page:    w.page,
		Block:   w.block,
	}
	if img != nil {
		fig.Source = attrVal(img, "src")
		if fig.Caption == "" {
			fig.Caption = attrVal(img, "alt")
		}
		fig.Width = intAttr(img, "width")
		fig.Height = intAttr(img, "height")
	}
	if fig.Source == "" && fig.Caption == "" {
		return
	}
	w.result.Figures = append(w.result.Figures, fig)
}

// scanParts records part-number occurrences in visible text, one entry
// per distinct part per block.
func (w *htmlWalk) scanParts(text string) {
	for _, m := range partNumberRe.FindAllString(text, -1) {
		dup := false
		for i := len(w.result.Parts) - 1; i >= 0; i-- {
			prev := w.result.Parts[i]
			if prev.Block != w.block {
				break
			}
			if prev.Text == m {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		w.result.Parts = append(w.result.Parts, types.PartOccurrence{
			Text:    m,
			Section: w.section,
			Page:    w.page,
			Block:   w.block,
		})
	}
}

// figureImage returns the first img descendant of a figure element.
func figureImage(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Img {
			return c
		}
		if found := figureImage(c); found != nil {
			return found
		}
	}
	return nil
}

// figureCaption returns the text of the first figcaption descendant.
func figureCaption(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Figcaption {
			return strings.TrimSpace(textContent(c))
		}
		if cap := figureCaption(c); cap != "" {
			return cap
		}
	}
	return ""
}

// insideFigure reports whether an img node has a figure ancestor; those
// are handled by the figure branch so captions attach correctly.
func insideFigure(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Figure {
			return true
		}
	}
	return false
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// attrVal returns the value of the named attribute, or "".
func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// intAttr returns the named attribute parsed as an int, or 0.
func intAttr(n *html.Node, name string) int {
	v, err := strconv.Atoi(strings.TrimSuffix(attrVal(n, name), "px"))
	if err != nil {
		return 0
	}
	return v
}

package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/amrrdev/officetext/internal/types"
)

// blockSelector lists the elements whose text becomes one fragment each.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td, th, dt, dd, caption, figcaption, " +
	"div, section, article, header, footer, main, aside, nav, address, figure"

// HTMLParser sanitises markup and emits its text in document order, one
// fragment per block. HTML has no pages.
type HTMLParser struct {
	policy   *bluemonday.Policy
	resource *lazyResource
}

func NewHTMLParser() *HTMLParser {
	p := &HTMLParser{}
	p.resource = newLazyResource(func(ctx context.Context) error {
		p.policy = bluemonday.UGCPolicy()
		return nil
	})
	return p
}

func (p *HTMLParser) Extract(ctx context.Context, path string) ([]types.Fragment, error) {
	if err := p.resource.Acquire(ctx); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open html file: %w", err)
	}
	defer f.Close()

	return p.extractReader(f, 0)
}

// extractReader is shared with the Tika path, which hands back XHTML.
// A page of zero means the fragments carry no page number.
func (p *HTMLParser) extractReader(r io.Reader, page int) ([]types.Fragment, error) {
	sanitized := p.policy.SanitizeReader(r)

	doc, err := goquery.NewDocumentFromReader(sanitized)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	return blockFragments(doc.Selection, page), nil
}

func (p *HTMLParser) Capability() types.Capability {
	return types.CapabilityHTML
}

func (p *HTMLParser) Warm(ctx context.Context) error {
	return p.resource.Acquire(ctx)
}

func (p *HTMLParser) Ready() bool {
	return p.resource.Ready()
}

// blockFragments walks root's content in document order. Each block
// element is one fragment; a run of text or inline elements between blocks
// is one fragment of its own.
func blockFragments(root *goquery.Selection, page int) []types.Fragment {
	if body := root.Find("body"); body.Length() > 0 {
		root = body
	}

	w := &blockWalker{page: page}
	w.walk(root)
	w.flush()
	return w.fragments
}

type blockWalker struct {
	page      int
	inline    strings.Builder
	fragments []types.Fragment
}

func (w *blockWalker) walk(parent *goquery.Selection) {
	parent.Contents().Each(func(_ int, s *goquery.Selection) {
		switch name := goquery.NodeName(s); {
		case name == "#text":
			w.inline.WriteString(s.Text())
		case strings.HasPrefix(name, "#"):
			// comments
		case name == "br":
			w.inline.WriteString(" ")
		case s.Find(blockSelector).Length() > 0:
			if s.Is(blockSelector) {
				w.flush()
				w.walk(s)
				w.flush()
				return
			}
			w.walk(s)
		case s.Is(blockSelector):
			w.flush()
			w.emit(s.Text())
		default:
			w.inline.WriteString(s.Text())
		}
	})
}

// flush turns the pending inline run into a fragment.
func (w *blockWalker) flush() {
	w.emit(w.inline.String())
	w.inline.Reset()
}

func (w *blockWalker) emit(text string) {
	if text = collapseSpace(text); text != "" {
		w.fragments = append(w.fragments, types.Fragment{Page: w.page, Text: text})
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

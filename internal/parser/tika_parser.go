package parser

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-tika/tika"

	"github.com/amrrdev/officetext/internal/types"
)

// TikaParser extracts legacy binary office formats (.doc, .ppt, .xls)
// through an Apache Tika server. Tika returns XHTML; slides and pages come
// back as div.slide-content / div.page and keep their page number.
type TikaParser struct {
	client   *tika.Client
	html     *HTMLParser
	resource *lazyResource
}

// NewTikaParser returns nil when url is empty so callers can treat the
// legacy formats as unavailable.
func NewTikaParser(url string, httpClient *http.Client, html *HTMLParser) *TikaParser {
	if strings.TrimSpace(url) == "" {
		return nil
	}

	p := &TikaParser{
		client: tika.NewClient(httpClient, url),
		html:   html,
	}
	p.resource = newLazyResource(func(ctx context.Context) error {
		if _, err := p.client.Version(ctx); err != nil {
			return fmt.Errorf("tika server not reachable: %w", err)
		}
		return nil
	})
	return p
}

func (p *TikaParser) Extract(ctx context.Context, path string) ([]types.Fragment, error) {
	if err := p.resource.Acquire(ctx); err != nil {
		return nil, err
	}
	if err := p.html.Warm(ctx); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	xhtml, err := p.client.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("tika parse failed: %w", err)
	}

	return p.fromXHTML(xhtml)
}

func (p *TikaParser) fromXHTML(xhtml string) ([]types.Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(xhtml))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tika output: %w", err)
	}

	pages := doc.Find("div.page, div.slide-content")
	if pages.Length() == 0 {
		return p.html.extractReader(strings.NewReader(xhtml), 0)
	}

	var fragments []types.Fragment
	pages.Each(func(i int, s *goquery.Selection) {
		fragments = append(fragments, blockFragments(s, i+1)...)
	})
	return fragments, nil
}

func (p *TikaParser) Warm(ctx context.Context) error {
	return p.resource.Acquire(ctx)
}

func (p *TikaParser) Ready() bool {
	return p.resource.Ready()
}

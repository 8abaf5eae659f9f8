package parser

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/amrrdev/officetext/internal/types"
)

// DOCXParser emits one fragment per paragraph. Hard page breaks
// (<w:br w:type="page"/>) advance the page number.
type DOCXParser struct {
	legacy *TikaParser
}

func NewDOCXParser(legacy *TikaParser) *DOCXParser {
	return &DOCXParser{legacy: legacy}
}

func (p *DOCXParser) Extract(ctx context.Context, path string) ([]types.Fragment, error) {
	ok, err := isZip(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !ok {
		return extractLegacy(ctx, p.legacy, path, "word document")
	}

	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read docx: %w", err)
	}
	defer doc.Close()

	return wordFragments(doc.Editable().GetContent())
}

func (p *DOCXParser) Capability() types.Capability {
	return types.CapabilityWordDocument
}

// wordFragments keeps one builder per open <w:p>, so a paragraph nested in
// a text box (<w:txbxContent>) does not clobber the paragraph around it.
func wordFragments(documentXML string) ([]types.Fragment, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		fragments []types.Fragment
		open      []*strings.Builder
		page      = 1
		inText    bool
		runs      int
	)

	current := func() *strings.Builder {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}
	write := func(s string) {
		if b := current(); b != nil {
			b.WriteString(s)
		}
	}
	flush := func(b *strings.Builder) {
		fragments = append(fragments, types.Fragment{Page: page, Text: b.String()})
		b.Reset()
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "r":
				runs++
			case "t":
				inText = true
			case "tab":
				// <w:tabs> in paragraph properties also holds <w:tab> stops
				if runs > 0 {
					write("\t")
				}
			case "br", "cr":
				if attr(t, "type") == "page" {
					if b := current(); b != nil && b.Len() > 0 {
						flush(b)
					}
					page++
				} else if runs > 0 {
					write("\n")
				}
			}
		case xml.CharData:
			if inText {
				write(string(t))
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				runs--
			case "p":
				if b := current(); b != nil {
					flush(b)
					open = open[:len(open)-1]
				}
			}
		}
	}

	return fragments, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func extractLegacy(ctx context.Context, tika *TikaParser, path, kind string) ([]types.Fragment, error) {
	if tika == nil {
		return nil, fmt.Errorf("%s is not an OOXML archive and no Tika server is configured", kind)
	}
	return tika.Extract(ctx, path)
}

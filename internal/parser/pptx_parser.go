package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/amrrdev/officetext/internal/types"
)

var slideEntry = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type pptxPresentation struct {
	Slides []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

// PPTXParser emits one fragment per text paragraph. Slides are taken in
// presentation order; the Nth slide shown is page N.
type PPTXParser struct {
	legacy *TikaParser
}

func NewPPTXParser(legacy *TikaParser) *PPTXParser {
	return &PPTXParser{legacy: legacy}
}

func (p *PPTXParser) Extract(ctx context.Context, path string) ([]types.Fragment, error) {
	ok, err := isZip(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !ok {
		return extractLegacy(ctx, p.legacy, path, "slide deck")
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pptx: %w", err)
	}
	defer zr.Close()

	slides, err := slideOrder(zr)
	if err != nil {
		return nil, err
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides found in pptx")
	}

	var fragments []types.Fragment
	for i, name := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := readZipEntry(zr, name)
		if err != nil {
			return nil, err
		}

		paragraphs, err := slideParagraphs(data)
		if err != nil {
			return nil, fmt.Errorf("malformed %s: %w", name, err)
		}
		for _, text := range paragraphs {
			fragments = append(fragments, types.Fragment{Page: i + 1, Text: text})
		}
	}

	return fragments, nil
}

func (p *PPTXParser) Capability() types.Capability {
	return types.CapabilitySlideDeck
}

// slideOrder resolves slide entries through presentation.xml's sldIdLst and
// its relationships, falling back to numeric order of slideN.xml.
func slideOrder(zr *zip.ReadCloser) ([]string, error) {
	data, err := readZipEntry(zr, "ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return numberedEntries(zr, slideEntry), nil
	}

	var pres pptxPresentation
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("malformed presentation.xml: %w", err)
	}

	ids := make([]string, len(pres.Slides))
	for i, s := range pres.Slides {
		ids[i] = s.RID
	}

	names, err := resolveParts(zr, "ppt", "ppt/_rels/presentation.xml.rels", ids)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return numberedEntries(zr, slideEntry), nil
	}
	return names, nil
}

// slideParagraphs collects the <a:t> runs of each <a:p> in drawing order.
func slideParagraphs(data []byte) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var (
		paragraphs []string
		text       strings.Builder
		inText     bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				text.Reset()
			case "t":
				inText = true
			case "br":
				text.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, text.String())
			}
		}
	}

	return paragraphs, nil
}

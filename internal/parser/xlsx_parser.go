package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/amrrdev/officetext/internal/types"
)

var worksheetEntry = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

type xlsxRichText struct {
	Text string `xml:"t"`
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

func (rt xlsxRichText) String() string {
	if len(rt.Runs) == 0 {
		return rt.Text
	}
	var b strings.Builder
	for _, r := range rt.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type xlsxSharedStrings struct {
	Items []xlsxRichText `xml:"si"`
}

type xlsxWorksheet struct {
	Rows []struct {
		Cells []struct {
			Type   string       `xml:"t,attr"`
			Value  string       `xml:"v"`
			Inline xlsxRichText `xml:"is"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

type xlsxWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

// XLSXParser emits one fragment per non-empty row, cells separated by a
// space. Sheets are taken in workbook order; sheet N is page N.
type XLSXParser struct {
	legacy *TikaParser
}

func NewXLSXParser(legacy *TikaParser) *XLSXParser {
	return &XLSXParser{legacy: legacy}
}

func (p *XLSXParser) Extract(ctx context.Context, path string) ([]types.Fragment, error) {
	ok, err := isZip(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !ok {
		return extractLegacy(ctx, p.legacy, path, "spreadsheet")
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer zr.Close()

	shared, err := sharedStrings(zr)
	if err != nil {
		return nil, err
	}

	sheets, err := sheetOrder(zr)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheets found in xlsx")
	}

	var fragments []types.Fragment
	for i, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := readZipEntry(zr, name)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, fmt.Errorf("worksheet %s missing from archive", name)
		}

		var ws xlsxWorksheet
		if err := xml.Unmarshal(data, &ws); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", name, err)
		}

		for _, row := range ws.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, c := range row.Cells {
				if v := cellValue(c.Type, c.Value, c.Inline, shared); v != "" {
					cells = append(cells, v)
				}
			}
			if len(cells) > 0 {
				fragments = append(fragments, types.Fragment{Page: i + 1, Text: strings.Join(cells, " ")})
			}
		}
	}

	return fragments, nil
}

func (p *XLSXParser) Capability() types.Capability {
	return types.CapabilitySpreadsheet
}

func cellValue(cellType, value string, inline xlsxRichText, shared []string) string {
	switch cellType {
	case "s":
		var idx int
		if _, err := fmt.Sscanf(value, "%d", &idx); err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return inline.String()
	case "b":
		if value == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return value
	}
}

func sharedStrings(zr *zip.ReadCloser) ([]string, error) {
	data, err := readZipEntry(zr, "xl/sharedStrings.xml")
	if err != nil || data == nil {
		return nil, err
	}

	var sst xlsxSharedStrings
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, fmt.Errorf("malformed sharedStrings.xml: %w", err)
	}

	out := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		out[i] = item.String()
	}
	return out, nil
}

// sheetOrder resolves worksheet entries through workbook.xml and its
// relationships, falling back to numeric order of sheetN.xml.
func sheetOrder(zr *zip.ReadCloser) ([]string, error) {
	wbData, err := readZipEntry(zr, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	if wbData == nil {
		return numberedEntries(zr, worksheetEntry), nil
	}

	var wb xlsxWorkbook
	if err := xml.Unmarshal(wbData, &wb); err != nil {
		return nil, fmt.Errorf("malformed workbook.xml: %w", err)
	}

	ids := make([]string, len(wb.Sheets))
	for i, sheet := range wb.Sheets {
		ids[i] = sheet.RID
	}

	names, err := resolveParts(zr, "xl", "xl/_rels/workbook.xml.rels", ids)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return numberedEntries(zr, worksheetEntry), nil
	}
	return names, nil
}

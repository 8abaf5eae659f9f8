package parser

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/amrrdev/officetext/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func writeZip(t *testing.T, name string, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	zw := zip.NewWriter(f)
	for entry, body := range entries {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("zip entry %s: %v", entry, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", entry, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return p
}

func assertFragments(t *testing.T, got, want []types.Fragment) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fragments:\n got %#v\nwant %#v", got, want)
	}
}

func TestTextParser(t *testing.T) {
	p := writeFile(t, "notes.md", "# Title\n\nsome body\n")
	got, err := NewTextParser().Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{{Text: "# Title\n\nsome body\n"}})
}

func TestTextParserRejectsBinary(t *testing.T) {
	p := writeFile(t, "bad.txt", "\xff\xfe\x00garbage")
	if _, err := NewTextParser().Extract(context.Background(), p); err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
}

func TestCSVParser(t *testing.T) {
	p := writeFile(t, "table.csv", "name,qty\n\"Widget, large\",3\nshort\n")
	got, err := NewCSVParser().Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{{Text: "name qty\nWidget, large 3\nshort"}})
}

func TestHTMLParser(t *testing.T) {
	html := `<html><head><title>ignored</title><style>p{color:red}</style></head>
<body>
<h1>Heading</h1>
<script>alert("x")</script>
<p>First   paragraph &amp; more</p>
<ul><li><p>nested item</p></li></ul>
<table><tr><td>cell</td></tr></table>
</body></html>`
	p := writeFile(t, "page.html", html)

	parser := NewHTMLParser()
	if parser.Ready() {
		t.Fatal("policy should be lazily initialised")
	}

	got, err := parser.Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{
		{Text: "Heading"},
		{Text: "First paragraph & more"},
		{Text: "nested item"},
		{Text: "cell"},
	})
	if !parser.Ready() {
		t.Fatal("expected parser ready after first use")
	}
}

func TestHTMLParserWithoutBlocks(t *testing.T) {
	p := writeFile(t, "bare.htm", "just <b>bold</b> text")
	got, err := NewHTMLParser().Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{{Text: "just bold text"}})
}

func TestHTMLParserMixedContent(t *testing.T) {
	html := `<html><body>
<div>Alpha section</div>Loose <b>bold</b> intro<p>Beta</p><span>Gamma</span>
<section>Lead<p>Inner</p>tail</section>
<!-- note -->
</body></html>`
	p := writeFile(t, "mixed.html", html)

	got, err := NewHTMLParser().Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{
		{Text: "Alpha section"},
		{Text: "Loose bold intro"},
		{Text: "Beta"},
		{Text: "Gamma"},
		{Text: "Lead"},
		{Text: "Inner"},
		{Text: "tail"},
	})
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func TestDOCXParser(t *testing.T) {
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wordNS + `><w:body>
<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Second </w:t></w:r><w:r><w:t>para</w:t></w:r></w:p>
<w:p><w:r><w:br w:type="page"/></w:r></w:p>
<w:p><w:r><w:t>Body</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p>
</w:body></w:document>`

	p := writeZip(t, "report.docx", map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":            document,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`,
	})

	got, err := NewDOCXParser(nil).Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{
		{Page: 1, Text: "Intro"},
		{Page: 1, Text: "Second para"},
		{Page: 2, Text: ""},
		{Page: 2, Text: "Body\ttabbed"},
	})
}

func TestWordFragmentsBreakMidParagraph(t *testing.T) {
	document := `<w:document ` + wordNS + `><w:body>
<w:p><w:r><w:t>before</w:t><w:br w:type="page"/><w:t>after</w:t><w:br/><w:t>line</w:t></w:r></w:p>
</w:body></w:document>`

	got, err := wordFragments(document)
	if err != nil {
		t.Fatalf("wordFragments: %v", err)
	}
	assertFragments(t, got, []types.Fragment{
		{Page: 1, Text: "before"},
		{Page: 2, Text: "after\nline"},
	})
}

func TestWordFragmentsTextBox(t *testing.T) {
	document := `<w:document ` + wordNS + `><w:body>
<w:p><w:r><w:t xml:space="preserve">Before box</w:t></w:r><w:r><w:pict><w:txbxContent>` +
		`<w:p><w:r><w:t>Inside</w:t></w:r></w:p>` +
		`</w:txbxContent></w:pict><w:tab/></w:r><w:r><w:t>after</w:t></w:r></w:p>
</w:body></w:document>`

	got, err := wordFragments(document)
	if err != nil {
		t.Fatalf("wordFragments: %v", err)
	}
	assertFragments(t, got, []types.Fragment{
		{Page: 1, Text: "Inside"},
		{Page: 1, Text: "Before box\tafter"},
	})
}

func TestLegacyFormatWithoutTika(t *testing.T) {
	p := writeFile(t, "old.doc", "\xd0\xcf\x11\xe0 not a zip")

	for _, e := range []Extractor{NewDOCXParser(nil), NewPPTXParser(nil), NewXLSXParser(nil)} {
		_, err := e.Extract(context.Background(), p)
		if err == nil || !strings.Contains(err.Error(), "no Tika server") {
			t.Errorf("%s: expected missing tika error, got %v", e.Capability(), err)
		}
	}
}

const drawingNS = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

func slideXML(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<p:sld ` + drawingNS + `><p:cSld><p:spTree><p:sp><p:txBody>`)
	for _, para := range paragraphs {
		b.WriteString(`<a:p>`)
		for _, run := range strings.Split(para, "|") {
			b.WriteString(`<a:r><a:t>` + run + `</a:t></a:r>`)
		}
		b.WriteString(`</a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	return b.String()
}

func TestPPTXParser(t *testing.T) {
	p := writeZip(t, "deck.pptx", map[string]string{
		"ppt/presentation.xml":             `<p:presentation ` + drawingNS + `/>`,
		"ppt/slides/slide1.xml":            slideXML("Title", "Point |one"),
		"ppt/slides/slide2.xml":            slideXML("Second"),
		"ppt/slides/slide10.xml":           slideXML("Tenth"),
		"ppt/slides/_rels/slide1.xml.rels": `<Relationships/>`,
	})

	got, err := NewPPTXParser(nil).Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{
		{Page: 1, Text: "Title"},
		{Page: 1, Text: "Point one"},
		{Page: 2, Text: "Second"},
		{Page: 3, Text: "Tenth"},
	})
}

func TestPPTXParserPresentationOrder(t *testing.T) {
	presentation := `<p:presentation ` + drawingNS + ` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<p:sldIdLst><p:sldId id="257" r:id="rId3"/><p:sldId id="256" r:id="rId2"/></p:sldIdLst></p:presentation>`
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Target="slideMasters/slideMaster1.xml"/>` +
		`<Relationship Id="rId2" Target="slides/slide1.xml"/>` +
		`<Relationship Id="rId3" Target="/ppt/slides/slide2.xml"/>` +
		`</Relationships>`

	p := writeZip(t, "reordered.pptx", map[string]string{
		"ppt/presentation.xml":            presentation,
		"ppt/_rels/presentation.xml.rels": rels,
		"ppt/slides/slide1.xml":           slideXML("Created first, shown second"),
		"ppt/slides/slide2.xml":           slideXML("Created second, shown first"),
	})

	got, err := NewPPTXParser(nil).Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{
		{Page: 1, Text: "Created second, shown first"},
		{Page: 2, Text: "Created first, shown second"},
	})
}

func TestPPTXParserWithoutSlides(t *testing.T) {
	p := writeZip(t, "empty.pptx", map[string]string{"ppt/presentation.xml": `<p:presentation ` + drawingNS + `/>`})
	if _, err := NewPPTXParser(nil).Extract(context.Background(), p); err == nil {
		t.Fatal("expected error for deck without slides")
	}
}

func TestXLSXParser(t *testing.T) {
	const sheetNS = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

	p := writeZip(t, "book.xlsx", map[string]string{
		"xl/workbook.xml": `<workbook ` + sheetNS + `><sheets>` +
			`<sheet name="Summary" sheetId="2" r:id="rId2"/>` +
			`<sheet name="Data" sheetId="1" r:id="rId1"/>` +
			`</sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Target="worksheets/sheet1.xml"/>` +
			`<Relationship Id="rId2" Target="/xl/worksheets/sheet2.xml"/>` +
			`</Relationships>`,
		"xl/sharedStrings.xml": `<sst ` + sheetNS + `><si><t>Name</t></si><si><r><t>Ali</t></r><r><t>ce</t></r></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet ` + sheetNS + `><sheetData>` +
			`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="inlineStr"><is><t>Active</t></is></c></row>` +
			`<row r="2"><c r="A2" t="s"><v>1</v></c><c r="B2" t="b"><v>1</v></c></row>` +
			`<row r="3"></row>` +
			`</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<worksheet ` + sheetNS + `><sheetData>` +
			`<row r="1"><c r="A1"><v>42</v></c></row>` +
			`</sheetData></worksheet>`,
	})

	got, err := NewXLSXParser(nil).Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{
		{Page: 1, Text: "42"},
		{Page: 2, Text: "Name Active"},
		{Page: 2, Text: "Alice TRUE"},
	})
}

func TestXLSXParserFallsBackToSheetNumbers(t *testing.T) {
	p := writeZip(t, "bare.xlsx", map[string]string{
		"xl/worksheets/sheet2.xml": `<worksheet><sheetData><row><c><v>2</v></c></row></sheetData></worksheet>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row><c><v>1</v></c></row></sheetData></worksheet>`,
	})

	got, err := NewXLSXParser(nil).Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFragments(t, got, []types.Fragment{{Page: 1, Text: "1"}, {Page: 2, Text: "2"}})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{})

	for _, capability := range types.Capabilities() {
		e, err := r.Get(capability)
		if err != nil {
			t.Fatalf("Get(%s): %v", capability, err)
		}
		if e.Capability() != capability {
			t.Errorf("Get(%s) returned %s extractor", capability, e.Capability())
		}
	}

	if _, err := r.Get(types.CapabilityUnknown); err == nil {
		t.Error("expected error for unknown capability")
	}

	if r.Ready() {
		t.Error("registry should not be ready before warm-up")
	}
	if err := r.Warm(context.Background()); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if !r.Ready() {
		t.Error("registry should be ready after warm-up")
	}
}

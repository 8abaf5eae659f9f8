package types

import "fmt"

// Capability is the extraction strategy selected from a file extension.
type Capability int

const (
	CapabilityUnknown Capability = iota
	CapabilitySlideDeck
	CapabilityWordDocument
	CapabilitySpreadsheet
	CapabilityHTML
	CapabilityCSV
	CapabilityPlainText
)

var capabilityNames = map[Capability]string{
	CapabilityUnknown:      "unknown",
	CapabilitySlideDeck:    "slide-deck",
	CapabilityWordDocument: "word-document",
	CapabilitySpreadsheet:  "spreadsheet",
	CapabilityHTML:         "html",
	CapabilityCSV:          "csv",
	CapabilityPlainText:    "plain-text",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// Capabilities lists every routable capability in a stable order.
func Capabilities() []Capability {
	return []Capability{
		CapabilitySlideDeck,
		CapabilityWordDocument,
		CapabilitySpreadsheet,
		CapabilityHTML,
		CapabilityCSV,
		CapabilityPlainText,
	}
}

// Fragment is one unit of extracted content. Page is zero when the
// extractor has no page information for it.
type Fragment struct {
	Page int
	Text string
}

// HasPage reports whether the fragment declares a page number.
func (f Fragment) HasPage() bool {
	return f.Page > 0
}

package assembler

import (
	"fmt"
	"strings"

	"github.com/amrrdev/officetext/internal/types"
)

// Marker is the line written at every page boundary.
func Marker(page int) string {
	return fmt.Sprintf("[page %d]\n", page)
}

// Assembler folds fragments into one page-annotated text. It is not safe
// for concurrent use; marker placement depends on fragment order.
type Assembler struct {
	b    strings.Builder
	page int
}

func New() *Assembler {
	a := &Assembler{page: 1}
	a.b.WriteString(Marker(1))
	return a
}

// Add appends one fragment. A marker is written only when the fragment's
// page moves forward; repeated or lower page numbers are ignored.
func (a *Assembler) Add(f types.Fragment) {
	if f.HasPage() && f.Page > a.page {
		a.page = f.Page
		a.b.WriteString(Marker(a.page))
	}

	if strings.TrimSpace(f.Text) != "" {
		a.b.WriteString(f.Text)
		a.b.WriteString("\n")
	}
}

func (a *Assembler) Page() int {
	return a.page
}

func (a *Assembler) String() string {
	return a.b.String()
}

// Assemble runs a fresh fold over fragments.
func Assemble(fragments []types.Fragment) string {
	a := New()
	for _, f := range fragments {
		a.Add(f)
	}
	return a.String()
}

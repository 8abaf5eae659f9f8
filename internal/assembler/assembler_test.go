package assembler

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/amrrdev/officetext/internal/types"
)

var markerRE = regexp.MustCompile(`(?m)^\[page (\d+)\]$`)

func markers(t *testing.T, text string) []int {
	t.Helper()
	var pages []int
	for _, m := range markerRE.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			t.Fatalf("bad marker %q", m[0])
		}
		pages = append(pages, n)
	}
	return pages
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name      string
		fragments []types.Fragment
		want      string
	}{
		{
			name: "empty input still starts on page one",
			want: "[page 1]\n",
		},
		{
			name: "two pages with trailing blank",
			fragments: []types.Fragment{
				{Page: 1, Text: "Intro"},
				{Page: 2, Text: "Body"},
				{Page: 2, Text: ""},
			},
			want: "[page 1]\nIntro\n[page 2]\nBody\n",
		},
		{
			name: "fragments without pages stay on current page",
			fragments: []types.Fragment{
				{Text: "one"},
				{Text: "two"},
			},
			want: "[page 1]\none\ntwo\n",
		},
		{
			name: "regressing page is ignored",
			fragments: []types.Fragment{
				{Page: 3, Text: "c"},
				{Page: 2, Text: "b"},
				{Page: 4, Text: "d"},
			},
			want: "[page 1]\n[page 3]\nc\nb\n[page 4]\nd\n",
		},
		{
			name: "raw text is kept untrimmed",
			fragments: []types.Fragment{
				{Page: 1, Text: "  indented\t"},
			},
			want: "[page 1]\n  indented\t\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Assemble(tt.fragments); got != tt.want {
				t.Fatalf("Assemble = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkersOnlyMoveForward(t *testing.T) {
	var fragments []types.Fragment
	for _, p := range []int{1, 1, 2, 2, 5} {
		fragments = append(fragments, types.Fragment{Page: p, Text: "x"})
	}

	got := markers(t, Assemble(fragments))
	want := []int{1, 2, 5}
	if len(got) != len(want) {
		t.Fatalf("markers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("markers = %v, want %v", got, want)
		}
	}
}

func TestBlankFragmentStillAdvancesPage(t *testing.T) {
	got := Assemble([]types.Fragment{
		{Page: 1, Text: "first"},
		{Page: 2, Text: "   "},
		{Page: 3, Text: "third"},
	})
	want := "[page 1]\nfirst\n[page 2]\n[page 3]\nthird\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIncrementalMatchesBatch(t *testing.T) {
	fragments := []types.Fragment{{Page: 1, Text: "a"}, {Text: "\n"}, {Page: 7, Text: "b"}}

	a := New()
	for _, f := range fragments {
		a.Add(f)
	}
	if a.String() != Assemble(fragments) {
		t.Fatalf("incremental %q != batch %q", a.String(), Assemble(fragments))
	}
	if a.Page() != 7 {
		t.Fatalf("Page = %d, want 7", a.Page())
	}
}

package parser

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/amrrdev/officetext/internal/types"
)

// TextParser loads markdown and plain text files verbatim as one fragment.
type TextParser struct{}

func NewTextParser() *TextParser {
	return &TextParser{}
}

func (p *TextParser) Extract(ctx context.Context, path string) ([]types.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("text file is not valid UTF-8")
	}

	return []types.Fragment{{Text: string(data)}}, nil
}

func (p *TextParser) Capability() types.Capability {
	return types.CapabilityPlainText
}

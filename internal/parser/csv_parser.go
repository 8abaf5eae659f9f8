package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amrrdev/officetext/internal/types"
)

// CSVParser renders the whole table as a single fragment: one line per
// record, cells separated by a space.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Extract(ctx context.Context, path string) ([]types.Fragment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var lines []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lines = append(lines, strings.Join(record, " "))
	}

	return []types.Fragment{{Text: strings.Join(lines, "\n")}}, nil
}

func (p *CSVParser) Capability() types.Capability {
	return types.CapabilityCSV
}

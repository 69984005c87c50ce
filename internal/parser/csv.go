package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvBatchSize is the number of data rows per block.
const csvBatchSize = 20

// CSVParser renders rows as "header: value" lines, in batches.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	rows := records[1:]
	for i := 0; i < len(rows); i += csvBatchSize {
		batch := rows[i:min(i+csvBatchSize, len(rows))]

		var sb strings.Builder
		for _, row := range batch {
			cells := make([]string, 0, len(row))
			for j, cell := range row {
				if j < len(headers) && headers[j] != "" {
					cells = append(cells, headers[j]+": "+cell)
				} else {
					cells = append(cells, cell)
				}
			}
			sb.WriteString(strings.Join(cells, ", "))
			sb.WriteString(".\n")
		}
		doc.appendBlock(sb.String())
	}
	return doc, nil
}

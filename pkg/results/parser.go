// Package results extracts document records from archive result listings.
package results

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ads-harvest/pkg/domain"
	"ads-harvest/pkg/query"
)

// Parser turns one fetched result page into document records.
type Parser struct {
	schema  RowSchema
	baseURL string
}

// NewParser creates a parser using the default row schema. baseURL is used
// to derive each record's download URL; empty selects query.DefaultBaseURL.
func NewParser(baseURL string) *Parser {
	return NewParserWithSchema(baseURL, DefaultRowSchema())
}

// NewParserWithSchema creates a parser for a custom listing layout.
func NewParserWithSchema(baseURL string, schema RowSchema) *Parser {
	if baseURL == "" {
		baseURL = query.DefaultBaseURL
	}
	return &Parser{schema: schema, baseURL: baseURL}
}

// Parse extracts one record per qualifying result row, in document order.
func (p *Parser) Parse(html string) ([]domain.DocumentRecord, error) {
	return p.ParseReader(strings.NewReader(html))
}

// ParseReader is like Parse but reads the markup from r.
func (p *Parser) ParseReader(r io.Reader) ([]domain.DocumentRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var records []domain.DocumentRecord
	doc.Find(p.schema.RowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find(p.schema.CellSelector)
		if cells.Length() != p.schema.CellCount {
			return
		}
		records = append(records, p.recordFromCells(cells))
	})

	return records, nil
}

// recordFromCells reads the mapped columns out of an already selected cell list.
func (p *Parser) recordFromCells(cells *goquery.Selection) domain.DocumentRecord {
	var rec domain.DocumentRecord
	for _, col := range p.schema.Columns {
		text := strings.TrimSpace(cells.Eq(col.Index).Text())
		setField(&rec, col.Field, domain.Optional(text))
	}

	if rec.ID != nil {
		rec.URL = domain.Optional(query.DocumentURL(p.baseURL, *rec.ID))
	}
	return rec
}

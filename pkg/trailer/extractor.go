// Package trailer reads bibliographic metadata from the text of a document's
// last PDF page, where the archive prints a label/value block.
package trailer

import (
	"sort"

	"ads-harvest/pkg/domain"
)

// Extractor turns the last-page lines of a PDF into document metadata.
type Extractor interface {
	Extract(pageCount int, lines []string) domain.DocumentMetadata
}

// Layout describes the trailer block: how many leading lines never carry
// metadata, how far below its label a value is printed, and which label
// text maps to which metadata key.
type Layout struct {
	SkipLines   int
	ValueOffset int
	Labels      map[string]string
}

// DefaultLayout returns the trailer layout of the archive's PDFs.
func DefaultLayout() Layout {
	return Layout{
		SkipLines:   7,
		ValueOffset: 2,
		Labels: map[string]string{
			"In":              domain.KeyInWork,
			"Datum":           domain.KeyDate,
			"Teilbestand BAR": domain.KeyRecordGroup,
			"Ablieferung BAR": domain.KeyDelivery,
			"Session":         domain.KeySession,
			"Sitzung":         domain.KeySitting,
			"Signatur":        domain.KeySignature,
			"Dokumentennr.":   domain.KeyDocumentNo,
		},
	}
}

// Keys returns the metadata keys of the layout in sorted order.
func (l Layout) Keys() []string {
	keys := make([]string, 0, len(l.Labels))
	for _, k := range l.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LayoutExtractor implements Extractor for a fixed Layout.
type LayoutExtractor struct {
	layout Layout
}

// New returns an extractor for the default layout.
func New() *LayoutExtractor {
	return NewWithLayout(DefaultLayout())
}

// NewWithLayout returns an extractor for a custom layout.
func NewWithLayout(layout Layout) *LayoutExtractor {
	return &LayoutExtractor{layout: layout}
}

// Extract scans lines from SkipLines on. A line that exactly equals a known
// label takes its value from the line ValueOffset below it. Only the first
// occurrence of a label is used; labels that never appear stay absent.
func (e *LayoutExtractor) Extract(pageCount int, lines []string) domain.DocumentMetadata {
	md := domain.NewDocumentMetadata(pageCount, e.layout.Keys()...)

	for i := e.layout.SkipLines; i < len(lines); i++ {
		key, ok := e.layout.Labels[lines[i]]
		if !ok || md.Fields[key] != nil {
			continue
		}
		j := i + e.layout.ValueOffset
		if j >= len(lines) {
			continue
		}
		value := lines[j]
		md.Fields[key] = &value
	}

	return md
}

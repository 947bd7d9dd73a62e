// Package query builds archive search URLs from search criteria and date intervals.
package query

import "slices"

// Query modes understood by the archive.
const (
	QueryTypeBoolean = "boolean" // exact match
	QueryTypePattern = "pattern" // fuzzy match
)

// Title weighting values.
const (
	TitleWeightOff = "false"
	TitleWeightOn  = "on"
)

// SearchCriteria holds the filter fields of an advanced archive search.
// Empty fields are unconstrained.
type SearchCriteria struct {
	SearchString string   // free-text term
	QueryType    string   // QueryTypeBoolean or QueryTypePattern
	TitleWeight  string   // TitleWeightOff or TitleWeightOn
	TitleString  string   // term that must appear in the title
	VolumeNo     string   // Bandnummer
	BookletNo    string   // Heft-/Dokumentennummer
	DocTypes     []string // top-level publication types, e.g. "BBL", "AB"
	Category     string   // document category code, e.g. "BBL_BO"
	Council      string   // e.g. "Nationalrat", "Ständerat"
	FileNo       string   // Geschäftsnummer
	Author       string
	RefNo        string // Referenznummer
	Lang         string // language selector, e.g. "D", "F", "I"
}

// DefaultCriteria returns a new criteria value with the archive defaults.
// Each call returns an independent value.
func DefaultCriteria() SearchCriteria {
	return SearchCriteria{
		QueryType:   QueryTypeBoolean,
		TitleWeight: TitleWeightOff,
	}
}

// Clone returns a copy of c that shares no slices with it.
func (c SearchCriteria) Clone() SearchCriteria {
	c.DocTypes = slices.Clone(c.DocTypes)
	return c
}

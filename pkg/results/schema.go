package results

import "ads-harvest/pkg/domain"

// Field names a DocumentRecord column filled from a result cell.
type Field string

const (
	FieldTitle    Field = "titel"
	FieldDocType  Field = "doktyp"
	FieldYear     Field = "jahr"
	FieldVolume   Field = "band"
	FieldPageFrom Field = "seitevon"
	FieldPageTo   Field = "seitebis"
	FieldPeriod   Field = "zeitraum"
	FieldBooklet  Field = "heft"
	FieldCategory Field = "kategorie"
	FieldCouncil  Field = "rat"
	FieldFileNo   Field = "geschaeftsnr"
	FieldAuthor   Field = "autor"
	FieldID       Field = "id"
	FieldLanguage Field = "sprache"
)

// Column maps a cell position to a record field.
type Column struct {
	Index int
	Field Field
}

// RowSchema describes how result rows are laid out in the listing. Rows
// whose cell count differs from CellCount are not data rows and are skipped.
type RowSchema struct {
	RowSelector  string
	CellSelector string
	CellCount    int
	Columns      []Column
}

// DefaultRowSchema returns the layout of the archive's export listing.
func DefaultRowSchema() RowSchema {
	return RowSchema{
		RowSelector:  "tr.docsRow",
		CellSelector: "td",
		CellCount:    17,
		Columns: []Column{
			{Index: 0, Field: FieldTitle},
			{Index: 1, Field: FieldDocType},
			{Index: 2, Field: FieldYear},
			{Index: 3, Field: FieldVolume},
			{Index: 4, Field: FieldPageFrom},
			{Index: 5, Field: FieldPageTo},
			{Index: 6, Field: FieldPeriod},
			{Index: 7, Field: FieldBooklet},
			{Index: 8, Field: FieldCategory},
			{Index: 9, Field: FieldCouncil},
			{Index: 10, Field: FieldFileNo},
			{Index: 11, Field: FieldAuthor},
			{Index: 12, Field: FieldID},
			{Index: 13, Field: FieldLanguage},
		},
	}
}

func setField(rec *domain.DocumentRecord, f Field, v *string) {
	switch f {
	case FieldTitle:
		rec.Title = v
	case FieldDocType:
		rec.DocType = v
	case FieldYear:
		rec.Year = v
	case FieldVolume:
		rec.Volume = v
	case FieldPageFrom:
		rec.PageFrom = v
	case FieldPageTo:
		rec.PageTo = v
	case FieldPeriod:
		rec.Period = v
	case FieldBooklet:
		rec.Booklet = v
	case FieldCategory:
		rec.Category = v
	case FieldCouncil:
		rec.Council = v
	case FieldFileNo:
		rec.FileNo = v
	case FieldAuthor:
		rec.Author = v
	case FieldID:
		rec.ID = v
	case FieldLanguage:
		rec.Language = v
	}
}

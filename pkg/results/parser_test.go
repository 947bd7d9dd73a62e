package results

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ads-harvest/pkg/domain"
)

// row renders a docsRow with the given cell texts.
func row(cells ...string) string {
	var sb strings.Builder
	sb.WriteString(`<tr class="docsRow">`)
	for _, c := range cells {
		fmt.Fprintf(&sb, "<td>%s</td>", c)
	}
	sb.WriteString("</tr>")
	return sb.String()
}

// fullRow returns 17 cell texts with a recognisable value per column.
func fullRow(id string) []string {
	return []string{
		"Botschaft des Bundesrates", "Bundesblatt", "1887", "II", "101", "115",
		"1887-1888", "12", "Botschaft", "Nationalrat", "87.001", "Bundesrat",
		id, "D", "", "", "",
	}
}

func page(rows ...string) string {
	return `<html><body><table id="resultlist">` +
		`<tr class="docsHeader"><th>Titel</th></tr>` +
		strings.Join(rows, "") +
		`</table></body></html>`
}

func TestParse_FullRow(t *testing.T) {
	records, err := NewParser("http://archive.test/").Parse(page(row(fullRow("10034567")...)))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "10034567", domain.Deref(rec.ID))
	assert.Equal(t, "http://archive.test/viewOrigDoc.do?id=10034567&action=download", domain.Deref(rec.URL))
	assert.Equal(t, "Botschaft des Bundesrates", domain.Deref(rec.Title))
	assert.Equal(t, "Bundesblatt", domain.Deref(rec.DocType))
	assert.Equal(t, "1887", domain.Deref(rec.Year))
	assert.Equal(t, "II", domain.Deref(rec.Volume))
	assert.Equal(t, "101", domain.Deref(rec.PageFrom))
	assert.Equal(t, "115", domain.Deref(rec.PageTo))
	assert.Equal(t, "1887-1888", domain.Deref(rec.Period))
	assert.Equal(t, "12", domain.Deref(rec.Booklet))
	assert.Equal(t, "Botschaft", domain.Deref(rec.Category))
	assert.Equal(t, "Nationalrat", domain.Deref(rec.Council))
	assert.Equal(t, "87.001", domain.Deref(rec.FileNo))
	assert.Equal(t, "Bundesrat", domain.Deref(rec.Author))
	assert.Equal(t, "D", domain.Deref(rec.Language))
}

func TestParse_SkipsRowsWithWrongCellCount(t *testing.T) {
	short := fullRow("1")[:16]
	long := append(fullRow("3"), "extra")

	records, err := NewParser("").Parse(page(row(short...), row(fullRow("2")...), row(long...)))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2", domain.Deref(records[0].ID))
}

func TestParse_EmptyCellIsAbsent(t *testing.T) {
	cells := fullRow("77")
	cells[4] = "   "
	cells[11] = ""

	records, err := NewParser("").Parse(page(row(cells...)))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Nil(t, records[0].PageFrom, "blank seitevon must be absent, not empty")
	assert.Nil(t, records[0].Author)
	assert.NotNil(t, records[0].PageTo)
}

func TestParse_MissingIDHasNoURL(t *testing.T) {
	cells := fullRow("")

	records, err := NewParser("").Parse(page(row(cells...)))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].ID)
	assert.Nil(t, records[0].URL)
}

func TestParse_TrimsCellText(t *testing.T) {
	cells := fullRow("\n  555 \t")
	cells[0] = "<a href=\"#\"> Bericht über <b>Zölle</b> </a>"

	records, err := NewParser("").Parse(page(row(cells...)))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "555", domain.Deref(records[0].ID))
	assert.Equal(t, "Bericht über Zölle", domain.Deref(records[0].Title))
}

func TestParse_IgnoresRowsWithoutResultClass(t *testing.T) {
	plain := strings.Replace(row(fullRow("9")...), `class="docsRow"`, `class="other"`, 1)

	records, err := NewParser("").Parse(page(plain))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_PreservesDocumentOrder(t *testing.T) {
	records, err := NewParser("").Parse(page(row(fullRow("a")...), row(fullRow("b")...), row(fullRow("c")...)))
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, records[i].Key())
	}
}

func TestParseWithSchema_CustomLayout(t *testing.T) {
	schema := RowSchema{
		RowSelector:  "tr.hit",
		CellSelector: "td",
		CellCount:    2,
		Columns: []Column{
			{Index: 0, Field: FieldID},
			{Index: 1, Field: FieldTitle},
		},
	}
	html := `<table><tr class="hit"><td>5</td><td>Protokoll</td></tr></table>`

	records, err := NewParserWithSchema("http://archive.test", schema).Parse(html)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Protokoll", domain.Deref(records[0].Title))
	assert.Equal(t, "http://archive.test/viewOrigDoc.do?id=5&action=download", domain.Deref(records[0].URL))
}

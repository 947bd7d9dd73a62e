package content

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Glyphs whose baselines differ by less than this share of the font size are
// on the same row.
const rowTolerance = 0.5

// A baseline gap larger than this many font sizes, and larger than
// pitchGap times the page's tightest line pitch, starts a new text block.
// Blocks are separated by an empty line.
const (
	blockGap = 1.8
	pitchGap = 1.5
)

// A horizontal gap wider than this share of the font size becomes a space.
const wordGap = 0.2

type row struct {
	y      float64
	size   float64
	glyphs []pdf.Text
}

// textLines arranges positioned glyphs into lines, top of the page first.
// Glyphs on one row are ordered left to right; glyphs with equal x keep
// their content stream order. Text blocks are separated by one empty line,
// the way pdftotext prints paragraph breaks.
func textLines(glyphs []pdf.Text) []string {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows []*row
	for _, g := range sorted {
		if g.S == "" {
			continue
		}
		size := math.Max(g.FontSize, 1)
		if n := len(rows); n > 0 && math.Abs(rows[n-1].y-g.Y) < rowTolerance*size {
			r := rows[n-1]
			r.glyphs = append(r.glyphs, g)
			r.size = math.Max(r.size, size)
			continue
		}
		rows = append(rows, &row{y: g.Y, size: size, glyphs: []pdf.Text{g}})
	}

	pitch := math.Inf(1)
	for i := 1; i < len(rows); i++ {
		pitch = math.Min(pitch, rows[i-1].y-rows[i].y)
	}

	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		if i > 0 {
			prev := rows[i-1]
			gap := prev.y - r.y
			if gap > blockGap*math.Max(prev.size, r.size) && gap > pitchGap*pitch {
				lines = append(lines, "")
			}
		}
		lines = append(lines, r.text())
	}
	return lines
}

func (r *row) text() string {
	sort.SliceStable(r.glyphs, func(i, j int) bool { return r.glyphs[i].X < r.glyphs[j].X })

	var sb strings.Builder
	for i, g := range r.glyphs {
		if i > 0 {
			prev := r.glyphs[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > wordGap*r.size && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(g.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
	}
	return strings.TrimRight(sb.String(), " ")
}

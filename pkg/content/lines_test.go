package content

import (
	"reflect"
	"testing"

	"github.com/ledongthuc/pdf"
)

// word returns one glyph per rune starting at x, each w wide.
func word(x, y, w float64, s string) []pdf.Text {
	var out []pdf.Text
	for _, r := range s {
		out = append(out, pdf.Text{FontSize: 10, X: x, Y: y, W: w, S: string(r)})
		x += w
	}
	return out
}

func concat(parts ...[]pdf.Text) []pdf.Text {
	var out []pdf.Text
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestTextLines(t *testing.T) {
	tests := []struct {
		name   string
		glyphs []pdf.Text
		want   []string
	}{
		{
			name:   "empty page",
			glyphs: nil,
			want:   nil,
		},
		{
			name:   "rows ordered top to bottom",
			glyphs: concat(word(72, 500, 5, "unten"), word(72, 512, 5, "oben")),
			want:   []string{"oben", "unten"},
		},
		{
			name:   "blank line between blocks",
			glyphs: concat(word(72, 612, 5, "Metadaten"), word(72, 600, 5, "Datum"), word(72, 576, 5, "12.05.1987")),
			want:   []string{"Metadaten", "Datum", "", "12.05.1987"},
		},
		{
			name:   "evenly spaced rows form one block",
			glyphs: concat(word(72, 660, 5, "a"), word(72, 630, 5, "Datum"), word(72, 600, 5, "x"), word(72, 570, 5, "12.05.1987")),
			want:   []string{"a", "Datum", "x", "12.05.1987"},
		},
		{
			name:   "same row joined left to right with a space",
			glyphs: concat(word(300, 600, 5, "Bundesarchiv"), word(72, 600.4, 5, "Schweizerisches")),
			want:   []string{"Schweizerisches Bundesarchiv"},
		},
		{
			name:   "adjacent glyphs stay one word",
			glyphs: word(72, 600, 5, "Signatur"),
			want:   []string{"Signatur"},
		},
		{
			name: "zero width glyphs keep stream order",
			glyphs: []pdf.Text{
				{FontSize: 10, X: 72, Y: 600, S: "A"},
				{FontSize: 10, X: 72, Y: 600, S: "B"},
				{FontSize: 10, X: 72, Y: 600, S: "C"},
			},
			want: []string{"ABC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textLines(tt.glyphs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("textLines() = %q, want %q", got, tt.want)
			}
		})
	}
}
